package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/mealbook/internal/app"
	"github.com/samvad-hq/mealbook/internal/config"
	"github.com/samvad-hq/mealbook/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "harvester failed: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var (
		once     bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:           "harvester",
		Short:         "Mirror the meals API into the local store and publish change events",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), once, interval)
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run a single sync pass and exit")
	cmd.Flags().DurationVar(&interval, "interval", 0, "override the configured sync interval")
	return cmd
}

func run(ctx context.Context, once bool, interval time.Duration) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if interval > 0 {
		cfg.SyncInterval = interval
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("harvester starting", "config", cfg.Summary())

	harvester, err := app.NewHarvester(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize harvester", "error", err.Error())
		return err
	}

	if once {
		defer harvester.Close()
		if _, err := harvester.SyncOnce(ctx); err != nil {
			return fmt.Errorf("sync: %w", err)
		}
		return nil
	}

	if err := harvester.Run(ctx); err != nil {
		return fmt.Errorf("harvester run: %w", err)
	}
	return nil
}
