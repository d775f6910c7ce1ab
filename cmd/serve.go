package cmd

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/RubachokBoss/submission-report/internal/app"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			application, err := app.New(cfg, log)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			errCh := make(chan error, 1)
			go func() {
				if err := application.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return err
				}
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := application.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown gracefully")
			}

			log.Info().Msg("Submission report service stopped")
			return nil
		},
	}
}
