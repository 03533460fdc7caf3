package clip

import (
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/user/mediacms-timeline/segment"
)

// unsafeChars matches characters not safe for filenames: / \ : * ? < > | " and whitespace
var unsafeChars = regexp.MustCompile(`[/\\:*?<>|"\s]+`)

// Slug lowercases s and replaces unsafe filename characters with underscores.
func Slug(s string) string {
	s = strings.Trim(unsafeChars.ReplaceAllString(strings.TrimSpace(s), "_"), "_")
	if s == "" {
		return "untitled"
	}
	return strings.ToLower(s)
}

// OutputDir returns the export folder for a video. An empty base puts it
// next to the video: "/path/to/match.mp4" exports into "/path/to/match-segments".
func OutputDir(videoPath, base string) string {
	name := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	if base == "" {
		base = filepath.Dir(videoPath)
	}
	return filepath.Join(base, name+"-segments")
}

// ExportPaths computes the output folder and filename for the n-th (1-based)
// segment of a video.
// Filename format: {NN}-{HHMMSS}-{title}{ext}, keeping the source container.
func ExportPaths(videoPath, base string, n int, seg segment.Segment) (folder, filename string) {
	folder = OutputDir(videoPath, base)

	total := int(math.Floor(math.Max(seg.StartTime, 0)))
	hhmmss := fmt.Sprintf("%02d%02d%02d", total/3600, (total%3600)/60, total%60)

	ext := filepath.Ext(videoPath)
	if ext == "" {
		ext = ".mp4"
	}
	filename = fmt.Sprintf("%02d-%s-%s%s", n, hhmmss, Slug(seg.Title), ext)
	return folder, filename
}
