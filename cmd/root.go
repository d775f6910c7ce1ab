// Package cmd implements the submission-report command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/RubachokBoss/submission-report/internal/config"
	"github.com/RubachokBoss/submission-report/pkg/logger"
)

var (
	configFile string
	logLevel   string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "submission-report",
		Short:         "Assignment submission reports",
		Long:          `submission-report collects a group's assignment submissions from the learning platform and renders them as a printable HTML or PDF report.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default ./config/config.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(previewCmd())

	return rootCmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, logger.NewWithConfig(cfg.Logging.Level, cfg.Logging.Pretty, cfg.Logging.NoColor), nil
}

// selectionFlags are shared by commands that run the pipeline once.
type selectionFlags struct {
	group     string
	structure string
	pageURL   string
}

func (s *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.group, "group", "", "Group serial (overrides context.group_serial)")
	cmd.Flags().StringVar(&s.structure, "structure", "", "Assignment structure serial (overrides context.structure_serial)")
	cmd.Flags().StringVar(&s.pageURL, "page-url", "", "Assignment page URL to detect serials from")
}
