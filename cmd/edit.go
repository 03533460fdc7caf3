package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/user/mediacms-timeline/chapters"
	"github.com/user/mediacms-timeline/clip"
	"github.com/user/mediacms-timeline/deps"
	"github.com/user/mediacms-timeline/editor"
	"github.com/user/mediacms-timeline/mpv"
	"github.com/user/mediacms-timeline/segment"
	"github.com/user/mediacms-timeline/tui"
)

// draftWriter stores autosave drafts off the UI goroutine. Writes are
// serialized and a draft older than the last one written is dropped.
type draftWriter struct {
	store    *chapters.Store
	key      string
	duration float64
	logger   zerolog.Logger

	wg      sync.WaitGroup
	mu      sync.Mutex
	seq     uint64
	written uint64
}

func (d *draftWriter) save(ctx context.Context, segs []segment.Segment) {
	d.mu.Lock()
	d.seq++
	seq := d.seq
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.mu.Lock()
		defer d.mu.Unlock()
		if seq < d.written {
			return
		}
		if err := d.store.Save(context.WithoutCancel(ctx), chapters.DraftKey(d.key), segs, d.duration); err != nil {
			d.logger.Warn().Err(err).Msg("autosave failed")
			return
		}
		d.written = seq
	}()
}

// Wait blocks until every queued draft has been written or dropped.
func (d *draftWriter) Wait() {
	d.wg.Wait()
}

// mpvConnectTimeout bounds the wait for mpv to create its IPC socket.
const mpvConnectTimeout = 5 * time.Second

var editCmd = &cobra.Command{
	Use:   "edit <video-file>",
	Short: "Open a video in mpv and edit its timeline",
	Long: `Open a video in mpv and start the timeline editor.

With --media-id the chapters are loaded from and saved to the MediaCMS
instance at api.base_url. Without it they are kept in the local database,
keyed by the video path.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		absPath, err := resolveVideo(args[0])
		if err != nil {
			return err
		}

		variantName, _ := cmd.Flags().GetString("variant")
		if variantName == "" {
			variantName = cfg.Editor.Variant
		}
		variant, err := segment.ParseVariant(variantName)
		if err != nil {
			return err
		}
		mediaID, _ := cmd.Flags().GetString("media-id")
		if mediaID == "" {
			mediaID = cfg.API.MediaID
		}
		autosave, _ := cmd.Flags().GetBool("autosave")

		logFile, logger, err := openEditLog()
		if err != nil {
			return err
		}
		defer logFile.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		database, err := openDB()
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer database.Close()

		fmt.Printf("Opening video: %s\n", filepath.Base(absPath))
		process, err := mpv.LaunchMpv(absPath, cfg.Mpv.SocketPath)
		if err != nil {
			return fmt.Errorf("failed to launch mpv: %w", err)
		}
		defer func() {
			if process.Process != nil {
				process.Process.Kill()
				process.Wait()
			}
		}()

		client := mpv.NewClient(cfg.Mpv.SocketPath)
		connectCtx, cancel := context.WithTimeout(ctx, mpvConnectTimeout)
		err = client.ConnectWithRetry(connectCtx, 100*time.Millisecond)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to mpv: %w", err)
		}
		defer client.Close()

		duration, err := waitForDuration(ctx, client)
		if err != nil {
			return err
		}

		store := &chapters.Store{DB: database, Logger: logger}
		var saver editor.Saver = store
		key := chapters.LocalKey(absPath)
		var initial []segment.Segment
		if mediaID != "" {
			remote := chapters.NewClient(cfg.API.BaseURL, logger)
			saver, key = remote, mediaID
			initial, err = remote.Fetch(ctx, mediaID)
		} else {
			initial, err = store.Load(ctx, key)
		}
		if err != nil {
			logger.Warn().Err(err).Str("media_id", key).Msg("could not load existing chapters")
		}

		opts := editor.Options{
			Variant:  variant,
			MediaID:  key,
			Duration: duration,
			Player:   client,
			Initial:  initial,
			Logger:   logger,
			Saver:    saver,
		}
		if variant.Thumbnails() && deps.CheckFfmpeg() == nil {
			thumbs, err := clip.NewThumbnailer(absPath, cfg.Export.ThumbnailDir, cfg.Export.ThumbnailSize, logger)
			if err != nil {
				logger.Warn().Err(err).Msg("thumbnails disabled")
			} else {
				defer thumbs.Purge()
				opts.Thumbnailer = thumbs
			}
		}

		var ed *editor.Editor
		if autosave {
			drafts := &draftWriter{store: store, key: key, duration: duration, logger: logger}
			// runs before the deferred database.Close
			defer drafts.Wait()
			opts.OnAutosave = func() {
				drafts.save(ctx, ed.Segments())
			}
		}

		ed, err = editor.New(opts)
		if err != nil {
			return err
		}
		defer ed.Close()

		return tui.Run(ctx, ed, tui.Options{
			Variant:      variant,
			MediaID:      key,
			TickInterval: cfg.Editor.TickInterval,
			Logger:       logger,
			Export: &tui.ExportConfig{
				DB:        database,
				VideoPath: absPath,
				OutputDir: cfg.Export.OutputDir,
				Logger:    logger,
			},
		})
	},
}

// resolveVideo returns the absolute path of an existing video file.
func resolveVideo(videoPath string) (string, error) {
	absPath, err := filepath.Abs(videoPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	info, err := os.Stat(absPath)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("video file not found: %s", absPath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to access video file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a video file: %s", absPath)
	}
	return absPath, nil
}

// waitForDuration polls mpv until the file is loaded and reports a duration.
func waitForDuration(ctx context.Context, client *mpv.Client) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, mpvConnectTimeout)
	defer cancel()
	for {
		if d, err := client.Duration(); err == nil && d > 0 {
			return d, nil
		}
		select {
		case <-ctx.Done():
			return 0, errors.New("mpv did not report a media duration")
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// openEditLog sends logs to a file next to the database while the TUI owns
// the terminal.
func openEditLog() (*os.File, zerolog.Logger, error) {
	dir := filepath.Dir(cfg.Database.Path)
	if cfg.Database.Path == "" {
		p, err := defaultDataDir()
		if err != nil {
			return nil, zerolog.Nop(), err
		}
		dir = p
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "editor.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("open log file: %w", err)
	}
	lc := cfg.Logging
	lc.Pretty = false
	return f, setupLogger(lc, f), nil
}

func init() {
	editCmd.Flags().StringP("variant", "v", "", "editor variant: chapters or trimmer (default from config)")
	editCmd.Flags().StringP("media-id", "m", "", "MediaCMS media id to load and save chapters for")
	editCmd.Flags().Bool("autosave", false, "keep a local draft after every undo and redo")

	rootCmd.AddCommand(editCmd)
}
