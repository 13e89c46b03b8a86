package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/evidence/retention"
	"mercator-hq/ganymede/pkg/evidence/store"
	"mercator-hq/ganymede/pkg/telemetry/logging"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ganymede",
	Short: "Ganymede - shared evidence retention store",
	Long: `Ganymede is a durable retention store for evidence bundles produced by
automation pipelines: code reviews, test results, diffs, approvals, and
operator notes.

Records live as individual JSON files in a shared directory, written
atomically and coordinated across processes with an advisory lock, so
several agents can save evidence concurrently without corrupting each
other. Retention budgets (maximum age and maximum count) are enforced
by an on-demand or cron-scheduled pruner.

For more information, visit: https://github.com/mercator-hq/ganymede`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when omitted)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the configuration honoring the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// setupLogging installs the configured logger as the process default.
func setupLogging(cfg *config.Config) error {
	_, err := logging.Setup(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	return err
}

// newStore creates the evidence store described by the configuration.
// The archiver is attached when archive-before-delete is enabled so
// pruning preserves records before unlinking them.
func newStore(cfg *config.Config, m *metrics.StoreMetrics) *store.Store {
	opts := []store.Option{}
	if m != nil {
		opts = append(opts, store.WithMetrics(m))
	}
	if cfg.Retention.ArchiveBeforeDelete {
		opts = append(opts, store.WithArchiver(retention.NewFileArchiver(cfg.Retention.ArchivePath)))
	}
	return store.New(cfg.Evidence.Root, cfg.Evidence.StoreConfig(), opts...)
}

// retentionConfig converts the file-level retention section into the
// pruner's config. Rerun bounds keep their built-in defaults.
func retentionConfig(cfg *config.Config) *retention.Config {
	return &retention.Config{
		PruneSchedule:       cfg.Retention.PruneSchedule,
		ArchiveBeforeDelete: cfg.Retention.ArchiveBeforeDelete,
		ArchivePath:         cfg.Retention.ArchivePath,
	}
}
