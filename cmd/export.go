package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/user/mediacms-timeline/chapters"
	"github.com/user/mediacms-timeline/clip"
	"github.com/user/mediacms-timeline/db"
	"github.com/user/mediacms-timeline/deps"
	"github.com/user/mediacms-timeline/segment"
)

var exportCmd = &cobra.Command{
	Use:   "export <video-file>",
	Short: "Cut the saved segments of a video into separate files",
	Long: `Cut every saved segment of a video into its own file with ffmpeg.

Segments come from the MediaCMS media given by --media-id, or from the local
database when it is omitted. Files are written to export.output_dir, or next
to the video when that is empty.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := deps.CheckFfmpeg(); err != nil {
			return err
		}
		absPath, err := resolveVideo(args[0])
		if err != nil {
			return err
		}
		mediaID, _ := cmd.Flags().GetString("media-id")
		outputDir, _ := cmd.Flags().GetString("output")
		if outputDir == "" {
			outputDir = cfg.Export.OutputDir
		}
		logger := setupLogger(cfg.Logging, os.Stderr)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		database, err := openDB()
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer database.Close()

		var segs []segment.Segment
		if mediaID != "" {
			segs, err = chapters.NewClient(cfg.API.BaseURL, logger).Fetch(ctx, mediaID)
		} else {
			segs, err = (&chapters.Store{DB: database, Logger: logger}).Load(ctx, chapters.LocalKey(absPath))
		}
		if err != nil {
			return err
		}
		if len(segs) == 0 {
			return fmt.Errorf("no segments saved for %s", filepath.Base(absPath))
		}

		if _, err := clip.Queue(database, absPath, outputDir, segmentsEnd(segs), segs); err != nil {
			return err
		}
		fmt.Printf("Exporting %d segments to %s\n", len(segs), clip.OutputDir(absPath, outputDir))

		p := &clip.Processor{DB: database, Logger: logger, PollInterval: cfg.Export.PollInterval}
		if err := p.Drain(ctx); err != nil {
			return err
		}
		return printExportJobs(ctx, absPath)
	},
}

func printExportJobs(ctx context.Context, videoPath string) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	videoID, err := db.EnsureVideo(database, videoPath, 0)
	if err != nil {
		return err
	}
	jobs, err := db.SelectExportJobsByVideo(database, videoID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tSTATUS\tSIZE")
	fmt.Fprintln(w, "----\t------\t----")
	var failed int
	for _, j := range jobs {
		size := "-"
		if j.Status == db.StatusComplete {
			size = humanize.Bytes(uint64(j.Filesize))
		}
		if j.Status == db.StatusError {
			failed++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", j.Filename, j.Status, size)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d exports failed", failed)
	}
	return ctx.Err()
}

func init() {
	exportCmd.Flags().StringP("media-id", "m", "", "MediaCMS media id to read segments from")
	exportCmd.Flags().StringP("output", "o", "", "output directory (default from config, or next to the video)")

	rootCmd.AddCommand(exportCmd)
}
