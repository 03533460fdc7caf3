package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/mediacms-timeline/chapters"
	"github.com/user/mediacms-timeline/config"
	"github.com/user/mediacms-timeline/db"
	"github.com/user/mediacms-timeline/segment"
)

func TestResolveVideo(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "match.mp4")
	require.NoError(t, os.WriteFile(video, []byte("x"), 0644))

	got, err := resolveVideo(video)
	require.NoError(t, err)
	assert.Equal(t, video, got)

	_, err = resolveVideo(filepath.Join(dir, "missing.mp4"))
	assert.ErrorContains(t, err, "not found")
	_, err = resolveVideo(dir)
	assert.ErrorContains(t, err, "directory")
}

func TestSegmentsEnd(t *testing.T) {
	assert.Zero(t, segmentsEnd(nil))
	assert.Equal(t, 90.0, segmentsEnd([]segment.Segment{{EndTime: 90}, {StartTime: 10, EndTime: 40}}))
}

func TestUpdatedAgo(t *testing.T) {
	assert.Equal(t, "not a time", updatedAgo("not a time"))
	assert.Contains(t, updatedAgo("2001-02-03 04:05:06"), "ago")
}

func TestSetupLogger(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })
	var buf bytes.Buffer
	logger := setupLogger(config.LoggingConfig{Level: "warn"}, &buf)
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)
}

func TestDraftWriterFinishesBeforeClose(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	store := &chapters.Store{DB: database, Logger: zerolog.Nop()}
	d := &draftWriter{store: store, key: "file:/videos/match.mp4", duration: 100, logger: zerolog.Nop()}

	ctx, cancel := context.WithCancel(context.Background())
	d.save(ctx, []segment.Segment{{ID: 1, Title: "Chapter 1", StartTime: 0, EndTime: 100}})
	d.save(ctx, []segment.Segment{
		{ID: 1, Title: "Chapter 1", StartTime: 0, EndTime: 40},
		{ID: 2, Title: "Chapter 2", StartTime: 40, EndTime: 100},
	})
	cancel()
	d.Wait()

	got, err := store.Load(context.Background(), chapters.DraftKey("file:/videos/match.mp4"))
	require.NoError(t, err)
	require.NoError(t, database.Close())
	assert.Len(t, got, 2)
}
