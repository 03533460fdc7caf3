package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/user/mediacms-timeline/clip"
	"github.com/user/mediacms-timeline/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local chapters API compatible with MediaCMS",
	Long: `Serve /api/v1/media/{id}/chapters backed by the local database, so the
editor can be used without a MediaCMS instance. Queued exports are processed
in the background while the server runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.Server.Port = port
		}
		logger := setupLogger(cfg.Logging, os.Stdout)

		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		processor := &clip.Processor{DB: database, Logger: logger, PollInterval: cfg.Export.PollInterval}
		processorDone := processor.Start(ctx)

		srv := server.New(cfg.Server, logger, database)
		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case err = <-errCh:
		case <-sigCh:
			logger.Info().Msg("received shutdown signal")
			err = srv.Shutdown(context.Background())
		}

		cancel()
		<-processorDone
		return err
	},
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "listen port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
