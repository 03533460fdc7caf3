package tui

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/user/mediacms-timeline/clip"
	"github.com/user/mediacms-timeline/db"
	"github.com/user/mediacms-timeline/deps"
	"github.com/user/mediacms-timeline/segment"
	"github.com/user/mediacms-timeline/tui/components"
)

// exportPollInterval is how often the job table is re-read for progress.
const exportPollInterval = 250 * time.Millisecond

// exportProgressMsg carries a progress snapshot from the export goroutine.
type exportProgressMsg struct {
	state components.ExportProgressState
}

// exportCompleteMsg is sent once every queued job finished or failed.
type exportCompleteMsg struct {
	state     components.ExportProgressState
	outputDir string
}

// exportErrorMsg is sent when the export could not run.
type exportErrorMsg struct {
	err error
}

// ExportConfig is what the TUI needs to queue and cut segments.
type ExportConfig struct {
	DB        *sql.DB
	VideoPath string
	OutputDir string
	Logger    zerolog.Logger
}

// waitForExportMsg returns a tea.Cmd that waits for the next message on the channel.
func waitForExportMsg(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// startExport queues one job per segment and drains the queue in a
// background goroutine. Progress is read back from the job table and sent
// on the returned channel, which closes after the final message.
func startExport(ctx context.Context, cfg ExportConfig, duration float64, segs []segment.Segment) (<-chan tea.Msg, error) {
	if cfg.DB == nil || cfg.VideoPath == "" {
		return nil, errors.New("export needs a local video and database")
	}
	if err := deps.CheckFfmpeg(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(cfg.VideoPath); err != nil {
		return nil, fmt.Errorf("video file: %w", err)
	}
	if len(segs) == 0 {
		return nil, errors.New("no segments to export")
	}

	ids, err := clip.Queue(cfg.DB, cfg.VideoPath, cfg.OutputDir, duration, segs)
	if err != nil {
		return nil, fmt.Errorf("queue export: %w", err)
	}
	videoID, err := db.EnsureVideo(cfg.DB, cfg.VideoPath, 0)
	if err != nil {
		return nil, err
	}

	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	progress := func() components.ExportProgressState {
		jobs, err := db.SelectExportJobsByVideo(cfg.DB, videoID)
		if err != nil {
			cfg.Logger.Warn().Err(err).Msg("read export progress")
			return components.ExportProgressState{Active: true, Total: len(ids)}
		}
		mine := jobs[:0]
		for _, j := range jobs {
			if wanted[j.ID] {
				mine = append(mine, j)
			}
		}
		return components.ExportProgressFromJobs(mine)
	}

	p := &clip.Processor{DB: cfg.DB, Logger: cfg.Logger}
	ch := make(chan tea.Msg)
	go func() {
		defer close(ch)
		send := func(msg tea.Msg) {
			select {
			case ch <- msg:
			case <-ctx.Done():
			}
		}
		done := make(chan error, 1)
		go func() { done <- p.Drain(ctx) }()

		ticker := time.NewTicker(exportPollInterval)
		defer ticker.Stop()
		for {
			select {
			case err := <-done:
				if err != nil {
					send(exportErrorMsg{err})
					return
				}
				send(exportCompleteMsg{state: progress(), outputDir: clip.OutputDir(cfg.VideoPath, cfg.OutputDir)})
				return
			case <-ticker.C:
				send(exportProgressMsg{state: progress()})
			}
		}
	}()

	return ch, nil
}
