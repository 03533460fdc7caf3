// Package chapters talks to the MediaCMS chapters endpoint.
package chapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/user/mediacms-timeline/pkg/timeutil"
	"github.com/user/mediacms-timeline/segment"
)

// FullSpanTolerance is how close a lone chapter must be to both media edges
// to count as covering the whole video.
const FullSpanTolerance = 0.1

// CSRFCookie and CSRFHeader carry the Django-style CSRF token.
const (
	CSRFCookie = "csrftoken"
	CSRFHeader = "X-CSRFToken"
)

var (
	ErrNoMedia = errors.New("chapters: media id is required")
	ErrOverlap = errors.New("chapters overlap")
)

// Chapter is one entry of the wire payload.
type Chapter struct {
	StartTime    string `json:"startTime" yaml:"startTime"`
	EndTime      string `json:"endTime" yaml:"endTime"`
	ChapterTitle string `json:"chapterTitle" yaml:"chapterTitle"`
}

// Payload is the request and response body of the chapters endpoint.
type Payload struct {
	Chapters []Chapter `json:"chapters" yaml:"chapters"`
}

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Path returns the endpoint path for a media item.
func Path(mediaID string) string {
	return "/api/v1/media/" + url.PathEscape(mediaID) + "/chapters"
}

// BuildPayload converts segments into the wire format, sorted by start time.
// A single chapter spanning the whole media is sent as an empty list, which
// the backend treats as "no chapters".
func BuildPayload(segs []segment.Segment, duration float64) Payload {
	if len(segs) == 1 && segs[0].StartTime <= FullSpanTolerance &&
		math.Abs(segs[0].EndTime-duration) <= FullSpanTolerance {
		return Payload{Chapters: []Chapter{}}
	}
	return Encode(segs)
}

// Encode converts segments into the wire format, sorted by start time.
func Encode(segs []segment.Segment) Payload {
	sorted := segment.SortByStart(segs)
	out := make([]Chapter, 0, len(sorted))
	for _, s := range sorted {
		out = append(out, chapterFromTimes(s.StartTime, s.EndTime, s.Title))
	}
	return Payload{Chapters: out}
}

func chapterFromTimes(start, end float64, title string) Chapter {
	return Chapter{
		StartTime:    timeutil.FormatTimestamp(start),
		EndTime:      timeutil.FormatTimestamp(end),
		ChapterTitle: title,
	}
}

// Segments decodes a payload into chapter segments with fresh ids. Entries
// with unparseable or inverted times are skipped.
func (p Payload) Segments(ids *segment.IDs) ([]segment.Segment, error) {
	out := make([]segment.Segment, 0, len(p.Chapters))
	var errs []error
	for i, c := range p.Chapters {
		start, err := timeutil.ParseTimestamp(c.StartTime)
		if err != nil {
			errs = append(errs, fmt.Errorf("chapter %d start: %w", i, err))
			continue
		}
		end, err := timeutil.ParseTimestamp(c.EndTime)
		if err != nil {
			errs = append(errs, fmt.Errorf("chapter %d end: %w", i, err))
			continue
		}
		if end <= start {
			errs = append(errs, fmt.Errorf("chapter %d: end %s is not after start %s", i, c.EndTime, c.StartTime))
			continue
		}
		out = append(out, segment.Segment{ID: ids.Next(), Title: c.ChapterTitle, StartTime: start, EndTime: end})
	}
	return segment.Renumber(out, segment.Chapters), errors.Join(errs...)
}

// Client is the persistence adapter for one MediaCMS instance. It makes a
// single attempt per call.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  zerolog.Logger

	ids segment.IDs
}

// NewClient returns a client with a cookie jar so a CSRF cookie issued by a
// GET is replayed on later requests.
func NewClient(baseURL string, logger zerolog.Logger) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Jar: jar, Timeout: 30 * time.Second},
		Logger:  logger.With().Str("component", "chapters").Logger(),
	}
}

// Save posts the segment list for mediaID. It satisfies editor.Saver.
func (c *Client) Save(ctx context.Context, mediaID string, segs []segment.Segment, duration float64) error {
	if mediaID == "" {
		return ErrNoMedia
	}
	body, err := json.Marshal(BuildPayload(segs, duration))
	if err != nil {
		return fmt.Errorf("encode chapters: %w", err)
	}

	endpoint := c.BaseURL + Path(mediaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.csrfToken(req.URL); token != "" {
		req.Header.Set(CSRFHeader, token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("save chapters: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}

	c.Logger.Info().Str("media_id", mediaID).Int("chapters", len(segs)).Msg("chapters saved")
	return nil
}

// Fetch loads the stored chapters for mediaID.
func (c *Client) Fetch(ctx context.Context, mediaID string) ([]segment.Segment, error) {
	if mediaID == "" {
		return nil, ErrNoMedia
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+Path(mediaID), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch chapters: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var p Payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode chapters: %w", err)
	}
	segs, err := p.Segments(&c.ids)
	if err != nil {
		c.Logger.Warn().Err(err).Str("media_id", mediaID).Msg("skipped malformed chapters")
	}
	return segs, nil
}

func (c *Client) csrfToken(u *url.URL) string {
	if c.HTTP == nil || c.HTTP.Jar == nil {
		return ""
	}
	for _, ck := range c.HTTP.Jar.Cookies(u) {
		if ck.Name == CSRFCookie {
			return ck.Value
		}
	}
	return ""
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	var buf bytes.Buffer
	buf.ReadFrom(io.LimitReader(resp.Body, 512))
	return &StatusError{
		Method: resp.Request.Method,
		URL:    resp.Request.URL.String(),
		Code:   resp.StatusCode,
		Body:   strings.TrimSpace(buf.String()),
	}
}
