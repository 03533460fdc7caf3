package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/mediacms-timeline/chapters"
	"github.com/user/mediacms-timeline/config"
	"github.com/user/mediacms-timeline/db"
	"github.com/user/mediacms-timeline/segment"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newTestServerWith(t, config.Default().Server)
}

func newTestServerWith(t *testing.T, cfg config.ServerConfig) *httptest.Server {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	s := New(cfg, zerolog.Nop(), database)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestChaptersRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	c := chapters.NewClient(ts.URL, zerolog.Nop())
	ctx := context.Background()

	segs, err := c.Fetch(ctx, "m1")
	require.NoError(t, err)
	assert.Empty(t, segs)

	err = c.Save(ctx, "m1", []segment.Segment{
		{ID: 2, Title: "Second half", StartTime: 60, EndTime: 120},
		{ID: 1, Title: "Chapter 1", StartTime: 0, EndTime: 60},
	}, 120)
	require.NoError(t, err)

	segs, err = c.Fetch(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, "Chapter 1", segs[0].Title)
	assert.Equal(t, "Second half", segs[1].Title)
	assert.Equal(t, 120.0, segs[1].EndTime)

	// a full-span chapter clears the list
	require.NoError(t, c.Save(ctx, "m1", []segment.Segment{{ID: 1, StartTime: 0, EndTime: 120}}, 120))
	segs, err = c.Fetch(ctx, "m1")
	require.NoError(t, err)
	assert.Empty(t, segs)
}

func TestSaveRejectsBadPayloads(t *testing.T) {
	ts := newTestServer(t)
	for name, body := range map[string]string{
		"not json":   `{`,
		"missing":    `{}`,
		"bad time":   `{"chapters":[{"startTime":"x","endTime":"00:00:10.000","chapterTitle":"a"}]}`,
		"overlapped": `{"chapters":[{"startTime":"00:00:00.000","endTime":"00:00:10.000"},{"startTime":"00:00:05.000","endTime":"00:00:20.000"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/v1/media/m1/chapters", "application/json", strings.NewReader(body))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestCSRFEnforcedWhenCookiePresent(t *testing.T) {
	ts := newTestServer(t)
	post := func(cookie, header string) int {
		req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/media/m1/chapters", strings.NewReader(`{"chapters":[]}`))
		require.NoError(t, err)
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: chapters.CSRFCookie, Value: cookie})
		}
		if header != "" {
			req.Header.Set(chapters.CSRFHeader, header)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusForbidden, post("forged", ""))
	assert.Equal(t, http.StatusForbidden, post("forged", "forged"))
	assert.Equal(t, http.StatusOK, post("", ""))

	resp, err := http.Get(ts.URL + "/api/v1/media/m1/chapters")
	require.NoError(t, err)
	resp.Body.Close()
	var token string
	for _, ck := range resp.Cookies() {
		if ck.Name == chapters.CSRFCookie {
			token = ck.Value
		}
	}
	require.NotEmpty(t, token)
	assert.Equal(t, http.StatusOK, post(token, token))
}

func TestListMediaAndCORS(t *testing.T) {
	cfg := config.Default().Server
	cfg.AllowedOrigins = []string{"http://localhost:3000/"}
	ts := newTestServerWith(t, cfg)
	c := chapters.NewClient(ts.URL, zerolog.Nop())
	require.NoError(t, c.Save(context.Background(), "m2", []segment.Segment{{StartTime: 0, EndTime: 10}}, 100))

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/media/m2/chapters", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))

	req.Header.Set("Origin", "http://evil.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Credentials"))

	get, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/health", nil)
	require.NoError(t, err)
	get.Header.Set("Origin", "http://evil.example")
	resp, err = http.DefaultClient.Do(get)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))

	resp, err = http.Get(ts.URL + "/api/v1/media")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
