package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/user/mediacms-timeline/chapters"
	"github.com/user/mediacms-timeline/db"
	"github.com/user/mediacms-timeline/pkg/timeutil"
	"github.com/user/mediacms-timeline/segment"
	"gopkg.in/yaml.v3"
)

var chaptersCmd = &cobra.Command{
	Use:   "chapters",
	Short: "Fetch, push and list chapters without opening the editor",
}

var chaptersFetchCmd = &cobra.Command{
	Use:   "fetch <media-id>",
	Short: "Print the chapters stored for a media item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		logger := setupLogger(cfg.Logging, os.Stderr)

		client := chapters.NewClient(cfg.API.BaseURL, logger)
		segs, err := client.Fetch(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		switch format {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(chapters.Encode(segs))
		case "yaml":
			return yaml.NewEncoder(os.Stdout).Encode(chapters.Encode(segs))
		case "table", "":
			printSegments(segs)
			return nil
		}
		return fmt.Errorf("unknown format %q (json, yaml, table)", format)
	},
}

var chaptersPushCmd = &cobra.Command{
	Use:   "push <media-id> <file>",
	Short: "Replace the chapters of a media item from a YAML or JSON file",
	Long: `Replace the chapters of a media item from a file shaped like the API
payload:

  chapters:
    - startTime: "00:00:00.000"
      endTime: "00:12:30.000"
      chapterTitle: Intro

JSON files use the same keys.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		duration, _ := cmd.Flags().GetFloat64("duration")
		logger := setupLogger(cfg.Logging, os.Stderr)

		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		var p chapters.Payload
		if err := yaml.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("parse %s: %w", args[1], err)
		}
		var ids segment.IDs
		segs, err := p.Segments(&ids)
		if err != nil {
			return fmt.Errorf("invalid chapters in %s: %w", args[1], err)
		}
		if segment.Overlapping(segs) {
			return chapters.ErrOverlap
		}
		if duration <= 0 {
			duration = segmentsEnd(segs)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		client := chapters.NewClient(cfg.API.BaseURL, logger)
		// prime the CSRF cookie
		if _, err := client.Fetch(ctx, args[0]); err != nil {
			logger.Debug().Err(err).Msg("pre-save fetch failed")
		}
		if err := client.Save(ctx, args[0], segs, duration); err != nil {
			return err
		}
		fmt.Printf("Saved %d chapters for %s\n", len(segs), args[0])
		return nil
	},
}

var chaptersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List media with chapters in the local database",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		media, err := db.SelectChapterMedia(database)
		if err != nil {
			return err
		}
		if len(media) == 0 {
			fmt.Println("No chapters stored.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "MEDIA\tCHAPTERS\tUPDATED")
		fmt.Fprintln(w, "-----\t--------\t-------")
		for _, m := range media {
			fmt.Fprintf(w, "%s\t%d\t%s\n", m.MediaID, m.Chapters, updatedAgo(m.UpdatedAt))
		}
		return w.Flush()
	},
}

func printSegments(segs []segment.Segment) {
	if len(segs) == 0 {
		fmt.Println("No chapters.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSTART\tEND\tTITLE")
	fmt.Fprintln(w, "-\t-----\t---\t-----")
	for i, s := range segment.SortByStart(segs) {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, timeutil.FormatTimestamp(s.StartTime), timeutil.FormatTimestamp(s.EndTime), s.Title)
	}
	w.Flush()
}

// segmentsEnd is the latest end time, used when the media duration is unknown.
func segmentsEnd(segs []segment.Segment) float64 {
	var end float64
	for _, s := range segs {
		if s.EndTime > end {
			end = s.EndTime
		}
	}
	return end
}

// updatedAgo renders a SQLite timestamp relative to now.
func updatedAgo(ts string) string {
	for _, layout := range []string{time.DateTime, time.RFC3339, "2006-01-02T15:04:05Z"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return humanize.Time(t)
		}
	}
	return ts
}

func init() {
	chaptersFetchCmd.Flags().StringP("format", "f", "table", "output format: table, json or yaml")
	chaptersPushCmd.Flags().Float64("duration", 0, "media duration in seconds (defaults to the last chapter end)")

	chaptersCmd.AddCommand(chaptersFetchCmd)
	chaptersCmd.AddCommand(chaptersPushCmd)
	chaptersCmd.AddCommand(chaptersListCmd)
	rootCmd.AddCommand(chaptersCmd)
}
