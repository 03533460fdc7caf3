package cmd

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/user/mediacms-timeline/config"
	"github.com/user/mediacms-timeline/db"
	"github.com/user/mediacms-timeline/deps"
)

var Version = "0.1.0"

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "mediacms-timeline",
	Short: "Edit MediaCMS chapters and trim segments from the terminal",
	Long: `mediacms-timeline plays a video in mpv and edits its timeline from a
terminal UI: trim the playable range, split it into titled segments, undo and
redo every change, and save the result as MediaCMS chapters.

Features:
  - Chapter editor and video trimmer variants
  - Full undo/redo history with save checkpoints
  - Sync chapters with a MediaCMS instance or the bundled local server
  - Export trimmed segments with ffmpeg`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if logLevel != "" {
			loaded.Logging.Level = logLevel
		}
		cfg = loaded
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mediacms-timeline version %s\n", Version)
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system dependencies",
	Long:  `Check that the external programs the editor shells out to (mpv, ffmpeg) are installed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Checking dependencies...")
		fmt.Println()

		missing := 0
		for _, d := range deps.Known {
			if err := deps.Check(d); err != nil {
				fmt.Printf("✗ %s: NOT FOUND (%s)\n", d.Name, d.Purpose)
				fmt.Printf("  Install from: %s\n", d.InstallURL)
				missing++
				continue
			}
			fmt.Printf("✓ %s: OK\n", d.Name)
		}

		fmt.Println()
		if missing > 0 {
			return fmt.Errorf("%d dependencies missing", missing)
		}
		fmt.Println("All dependencies are installed!")
		return nil
	},
}

// setupLogger builds the process logger from the logging config. The TUI
// owns the terminal, so edit sessions pass a file as out.
func setupLogger(lc config.LoggingConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(lc.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if lc.Pretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}).
			With().
			Timestamp().
			Logger()
	}
	return zerolog.New(out).
		With().
		Timestamp().
		Logger()
}

// openDB opens the configured database, falling back to the per-user default.
func openDB() (*sql.DB, error) {
	return db.Open(cfg.Database.Path)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(doctorCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultDataDir() (string, error) {
	p, err := db.DefaultPath()
	if err != nil {
		return "", err
	}
	return filepath.Dir(p), nil
}
