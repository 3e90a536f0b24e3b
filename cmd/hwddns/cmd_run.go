package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gitlab.bluewillows.net/root/hwddns/internal/health"
)

func newCmdRun(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Update the configured domains every interval until stopped",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			if err := cfg.RequireDomains(); err != nil {
				return err
			}

			release, err := acquireLock(cfg.LockFile, logger)
			if err != nil {
				return err
			}
			defer release()

			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return a.daemon(ctx)
		},
	}
}

// daemon runs a cycle immediately and then every interval until ctx ends.
func (a *app) daemon(ctx context.Context) error {
	tracker := health.NewCycleTracker(nil)

	var healthServer *health.Server
	if a.cfg.HealthPort > 0 {
		healthServer = health.New(a.cfg.HealthPort,
			health.WithLogger(a.logger),
			health.WithStatus(tracker.StatusFunc()),
		)
		// Probes reuse the last ping for one interval so an idle daemon stays quiet.
		healthServer.RegisterChecker("api", health.CachedChecker(a.client.Ping, a.cfg.Interval, nil))
		// Allow one missed cycle before reporting not ready.
		healthServer.RegisterChecker("cycles", tracker.Checker(2*a.cfg.Interval+a.cfg.Timeout))
		healthServer.RegisterDegradedChecker("cycles", tracker.Degraded())
		if err := healthServer.Start(); err != nil {
			return fmt.Errorf("starting health server: %w", err)
		}
	}

	a.logger.Info("hwddns starting",
		slog.String("version", Version),
		slog.String("build_date", BuildDate),
		slog.Any("domains", a.cfg.DomainNames()),
		slog.Duration("interval", a.cfg.Interval),
		slog.Bool("dry_run", a.cfg.DryRun),
		slog.Int("health_port", a.cfg.HealthPort),
	)

	runCycle := func() {
		report, err := a.cycle(ctx, a.cfg.Domains)
		tracker.Record(report)
		if err != nil {
			a.logger.Error("update cycle failed",
				slog.String("run_id", report.RunID),
				slog.String("error", err.Error()),
			)
		}
	}

	runCycle()

	ticker := time.NewTicker(a.cfg.Interval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			runCycle()
		}
	}

	a.logger.Info("shutting down...")
	if healthServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := healthServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("health server shutdown error", slog.String("error", err.Error()))
		}
	}
	a.logger.Info("hwddns shutdown complete")
	return nil
}
