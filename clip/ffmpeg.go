package clip

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/user/mediacms-timeline/deps"
)

// checkFfmpeg and runFfmpeg are swapped in tests.
var checkFfmpeg = deps.CheckFfmpeg

var runFfmpeg = func(ctx context.Context, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, "ffmpeg", args...).CombinedOutput()
}

// Cut copies [start, end) of videoPath into outputPath without re-encoding.
// Cuts snap to the nearest keyframes before start.
func Cut(ctx context.Context, videoPath string, start, end float64, outputPath string) error {
	if end <= start {
		return fmt.Errorf("empty range %.3f-%.3f", start, end)
	}
	if err := checkFfmpeg(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	args := []string{
		"-y",
		"-ss", fmt.Sprintf("%.3f", start),
		"-i", videoPath,
		"-t", fmt.Sprintf("%.3f", end-start),
		"-c", "copy",
		"-avoid_negative_ts", "make_zero",
		outputPath,
	}
	if output, err := runFfmpeg(ctx, args...); err != nil {
		return fmt.Errorf("ffmpeg failed: %w\n%s", err, string(output))
	}
	return nil
}

// Frame writes a single scaled JPEG frame at t into outputPath.
func Frame(ctx context.Context, videoPath string, t float64, width int, outputPath string) error {
	if err := checkFfmpeg(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	// -ss before -i seeks on keyframes, which is fast and close enough for a preview
	args := []string{
		"-y",
		"-ss", fmt.Sprintf("%.3f", t),
		"-i", videoPath,
		"-frames:v", "1",
		"-vf", fmt.Sprintf("scale=%d:-1", width),
		"-q:v", "4",
		outputPath,
	}
	if output, err := runFfmpeg(ctx, args...); err != nil {
		return fmt.Errorf("ffmpeg failed: %w\n%s", err, string(output))
	}
	return nil
}
