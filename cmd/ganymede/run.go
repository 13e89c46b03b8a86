package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/telemetry/metrics"

	"mercator-hq/ganymede/pkg/evidence/retention"
)

const shutdownTimeout = 5 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the retention daemon",
	Long: `Run ganymede as a long-lived daemon.

The daemon prunes the evidence store on the configured cron schedule,
reloads retention budgets when the config file changes, and optionally
exposes Prometheus metrics over HTTP. It exits cleanly on SIGINT or
SIGTERM.

Examples:
  ganymede run --config /etc/ganymede/ganymede.yaml`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}
	logger := slog.Default().With("component", "daemon")

	ctx := cli.SetupSignalHandler()

	var m *metrics.StoreMetrics
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		m = metrics.New(metrics.Config{
			Namespace: cfg.Metrics.Namespace,
			Subsystem: cfg.Metrics.Subsystem,
		}, nil)

		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, m.Handler())
		metricsSrv = &http.Server{
			Addr:    cfg.Metrics.ListenAddress,
			Handler: mux,
		}
		go func() {
			logger.Info("metrics endpoint listening",
				"address", cfg.Metrics.ListenAddress,
				"path", cfg.Metrics.Path,
			)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics endpoint failed", "error", err)
			}
		}()
	}

	st := newStore(cfg, m)
	pruner := retention.NewPruner(st, retentionConfig(cfg), retention.WithMetrics(m))

	if cfg.Retention.PruneSchedule != "" {
		if err := pruner.Start(ctx); err != nil {
			return cli.NewCommandError("run", err)
		}
		defer pruner.Stop()
		if next := pruner.NextPruning(); next != nil {
			logger.Info("pruning scheduled",
				"schedule", cfg.Retention.PruneSchedule,
				"next_run", next.Format(time.RFC3339),
			)
		}
	} else {
		logger.Info("prune schedule empty, automatic pruning disabled")
	}

	// Hot-reload retention budgets; the store picks them up on the
	// next save or sweep.
	if cfgFile != "" {
		watcher, err := config.NewWatcher(cfgFile)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		go func() {
			if err := watcher.Watch(ctx, func(reloaded *config.Config) {
				st.SetConfig(reloaded.Evidence.StoreConfig())
			}); err != nil {
				logger.Warn("config watcher stopped", "error", err)
			}
		}()
	}

	// Converge to the budgets once at startup rather than waiting for
	// the first scheduled run.
	pruner.Prune(ctx)

	logger.Info("ganymede running", "root", cfg.Evidence.Root)
	<-ctx.Done()
	logger.Info("shutting down")

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics endpoint shutdown failed", "error", err)
		}
	}
	return nil
}
