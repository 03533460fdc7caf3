// Package clip exports trimmer segments to files with ffmpeg and renders
// segment thumbnails.
package clip

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/user/mediacms-timeline/db"
	"github.com/user/mediacms-timeline/segment"
)

const DefaultPollInterval = 2 * time.Second

// Queue records one pending export job per segment, in chronological order,
// and returns the job IDs.
func Queue(database *sql.DB, videoPath, outputDir string, duration float64, segs []segment.Segment) ([]int64, error) {
	videoID, err := db.EnsureVideo(database, videoPath, duration)
	if err != nil {
		return nil, err
	}

	var ids []int64
	for i, s := range segment.SortByStart(segs) {
		folder, filename := ExportPaths(videoPath, outputDir, i+1, s)
		id, err := db.InsertExportJob(database, db.ExportJob{
			VideoID:   videoID,
			SegmentID: s.ID,
			Title:     s.Title,
			Start:     s.StartTime,
			End:       s.EndTime,
			Folder:    folder,
			Filename:  filename,
		})
		if err != nil {
			return ids, fmt.Errorf("queue segment %d: %w", s.ID, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Processor manages the background segment export worker.
type Processor struct {
	DB           *sql.DB
	Logger       zerolog.Logger
	PollInterval time.Duration
}

// Start launches a goroutine that continuously polls for pending exports and processes them.
// Jobs left in processing by an earlier run are re-queued first.
// The returned channel is closed when the goroutine exits after ctx is cancelled.
func (p *Processor) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if n, err := db.ResetStaleExports(p.DB); err != nil {
		p.Logger.Warn().Err(err).Msg("could not reset stale exports")
	} else if n > 0 {
		p.Logger.Info().Int64("jobs", n).Msg("re-queued stale exports")
	}

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			worked, err := p.ProcessNext(ctx)
			if err != nil {
				p.Logger.Warn().Err(err).Msg("export queue poll failed")
			}
			if worked {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.interval()):
			}
		}
	}()
	return done
}

// Drain processes pending jobs until the queue is empty.
func (p *Processor) Drain(ctx context.Context) error {
	for {
		worked, err := p.ProcessNext(ctx)
		if err != nil {
			return err
		}
		if !worked {
			return nil
		}
	}
}

// ProcessNext exports the oldest pending job. It reports whether a job was
// taken; a failed export is recorded on the job, not returned.
func (p *Processor) ProcessNext(ctx context.Context) (bool, error) {
	job, err := db.SelectNextPendingExport(p.DB)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}
	p.process(ctx, job)
	return true, nil
}

func (p *Processor) interval() time.Duration {
	if p.PollInterval > 0 {
		return p.PollInterval
	}
	return DefaultPollInterval
}

// process handles the full lifecycle of exporting a single segment.
func (p *Processor) process(ctx context.Context, j *db.ExportJob) {
	logger := p.Logger.With().Int64("job", j.ID).Str("file", j.Filename).Logger()

	if err := db.MarkExportProcessing(p.DB, j.ID, time.Now()); err != nil {
		logger.Error().Err(err).Msg("mark processing failed")
		return
	}

	fail := func(msg string) {
		logger.Warn().Str("log", msg).Msg("export failed")
		if err := db.MarkExportError(p.DB, j.ID, time.Now(), msg); err != nil {
			logger.Error().Err(err).Msg("mark error failed")
		}
	}

	outPath := filepath.Join(j.Folder, j.Filename)
	if err := Cut(ctx, j.VideoPath, j.Start, j.End, outPath); err != nil {
		fail(err.Error())
		return
	}

	info, err := os.Stat(outPath)
	if err != nil {
		fail(fmt.Sprintf("stat output: %v", err))
		return
	}

	if err := db.MarkExportComplete(p.DB, j.ID, time.Now(), info.Size()); err != nil {
		logger.Error().Err(err).Msg("mark complete failed")
		return
	}
	logger.Info().Int64("bytes", info.Size()).Msg("segment exported")
}
