package clip

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/user/mediacms-timeline/segment"
)

// ThumbnailWidth is the rendered preview width in pixels.
const ThumbnailWidth = 320

// Thumbnailer renders one preview frame per segment start. Results are kept
// in an LRU keyed by start time so undo and redo reuse earlier frames.
type Thumbnailer struct {
	videoPath string
	outputDir string
	logger    zerolog.Logger
	cache     *lru.Cache[string, string]
}

// NewThumbnailer writes frames of videoPath into outputDir and remembers up to size of them.
func NewThumbnailer(videoPath, outputDir string, size int, logger zerolog.Logger) (*Thumbnailer, error) {
	if size <= 0 {
		size = 128
	}
	cache, err := lru.NewWithEvict[string, string](size, func(_ string, path string) {
		os.Remove(path)
	})
	if err != nil {
		return nil, fmt.Errorf("thumbnail cache: %w", err)
	}
	return &Thumbnailer{
		videoPath: videoPath,
		outputDir: outputDir,
		logger:    logger.With().Str("component", "thumbnails").Logger(),
		cache:     cache,
	}, nil
}

func (t *Thumbnailer) key(start float64) string {
	return strconv.FormatFloat(start, 'f', 3, 64)
}

// Thumbnail returns the frame at seg's start, rendering it on a cache miss.
func (t *Thumbnailer) Thumbnail(ctx context.Context, seg segment.Segment) (string, error) {
	key := t.key(seg.StartTime)
	if path, ok := t.cache.Get(key); ok {
		return path, nil
	}

	name := Slug(filepath.Base(t.videoPath)) + "-" + key + ".jpg"
	path := filepath.Join(t.outputDir, name)
	if err := Frame(ctx, t.videoPath, seg.StartTime, ThumbnailWidth, path); err != nil {
		return "", err
	}
	t.cache.Add(key, path)
	t.logger.Debug().Str("thumbnail", path).Float64("start", seg.StartTime).Msg("thumbnail generated")
	return path, nil
}

// Len is the number of cached thumbnails.
func (t *Thumbnailer) Len() int {
	return t.cache.Len()
}

// Purge drops every cached thumbnail and its file.
func (t *Thumbnailer) Purge() {
	t.cache.Purge()
}
