package config

import (
	"fmt"

	"mercator-hq/ganymede/pkg/evidence"
)

// Default values for configuration fields.
const (
	DefaultEvidenceRoot       = "evidence"
	DefaultEvidenceEnabled    = true
	DefaultEvidenceMaxAgeDays = 14
	DefaultEvidenceMaxBundles = 500

	DefaultRetentionSchedule    = "0 3 * * *"
	DefaultRetentionArchivePath = "archives/"

	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "text"

	DefaultMetricsEnabled       = false
	DefaultMetricsListenAddress = "127.0.0.1:9464"
	DefaultMetricsPath          = "/metrics"
	DefaultMetricsNamespace     = "ganymede"
	DefaultMetricsSubsystem     = "evidence"
)

// Config is the root configuration for ganymede.
type Config struct {
	// Evidence contains the store location and retention budgets.
	Evidence EvidenceConfig `yaml:"evidence"`

	// Retention contains scheduling and archiving settings for
	// automatic pruning.
	Retention RetentionConfig `yaml:"retention"`

	// Logging contains structured logging settings.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus endpoint settings for the run
	// command.
	Metrics MetricsConfig `yaml:"metrics"`
}

// EvidenceConfig locates the store and carries the retention budgets
// consumed by it.
type EvidenceConfig struct {
	// Root is the evidence directory.
	// Default: "evidence"
	Root string `yaml:"root"`

	// Enabled controls whether saves persist anything.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// MaxAgeDays is the age budget for pruning. Must be >= 1.
	// Default: 14
	MaxAgeDays int `yaml:"max_age_days"`

	// MaxBundles is the count budget for pruning. Must be >= 1.
	// Default: 500
	MaxBundles int `yaml:"max_bundles"`

	// AutoArchive is reserved for future use and currently inert.
	AutoArchive bool `yaml:"auto_archive"`
}

// StoreConfig converts the section into the store's config type.
func (c EvidenceConfig) StoreConfig() evidence.Config {
	return evidence.Config{
		Enabled:     c.Enabled,
		MaxAgeDays:  c.MaxAgeDays,
		MaxBundles:  c.MaxBundles,
		AutoArchive: c.AutoArchive,
	}
}

// RetentionConfig contains automatic pruning settings.
type RetentionConfig struct {
	// PruneSchedule is a cron expression for automatic pruning.
	// Empty disables the scheduler. Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`

	// ArchiveBeforeDelete preserves records in a JSON archive before
	// pruning deletes them.
	ArchiveBeforeDelete bool `yaml:"archive_before_delete"`

	// ArchivePath is the directory archives are written to.
	// Default: "archives/"
	ArchivePath string `yaml:"archive_path"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `yaml:"level"`

	// Format is the output format ("text", "json").
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus endpoint settings.
type MetricsConfig struct {
	// Enabled exposes the metrics endpoint in run mode.
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the HTTP listen address for the endpoint.
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path the metrics are served on.
	Path string `yaml:"path"`

	// Namespace is the metric namespace prefix.
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem prefix.
	Subsystem string `yaml:"subsystem"`
}

// DefaultConfig returns a fully defaulted configuration. LoadConfig
// unmarshals YAML over this, so omitted fields keep their defaults and
// explicit zero values in the file are respected.
func DefaultConfig() *Config {
	return &Config{
		Evidence: EvidenceConfig{
			Root:       DefaultEvidenceRoot,
			Enabled:    DefaultEvidenceEnabled,
			MaxAgeDays: DefaultEvidenceMaxAgeDays,
			MaxBundles: DefaultEvidenceMaxBundles,
		},
		Retention: RetentionConfig{
			PruneSchedule: DefaultRetentionSchedule,
			ArchivePath:   DefaultRetentionArchivePath,
		},
		Logging: LoggingConfig{
			Level:  DefaultLoggingLevel,
			Format: DefaultLoggingFormat,
		},
		Metrics: MetricsConfig{
			Enabled:       DefaultMetricsEnabled,
			ListenAddress: DefaultMetricsListenAddress,
			Path:          DefaultMetricsPath,
			Namespace:     DefaultMetricsNamespace,
			Subsystem:     DefaultMetricsSubsystem,
		},
	}
}

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Evidence.Root == "" {
		return fmt.Errorf("evidence.root must not be empty")
	}
	if cfg.Evidence.MaxAgeDays < 1 {
		return fmt.Errorf("evidence.max_age_days must be >= 1, got %d", cfg.Evidence.MaxAgeDays)
	}
	if cfg.Evidence.MaxBundles < 1 {
		return fmt.Errorf("evidence.max_bundles must be >= 1, got %d", cfg.Evidence.MaxBundles)
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be one of text, json; got %q", cfg.Logging.Format)
	}

	if cfg.Retention.ArchiveBeforeDelete && cfg.Retention.ArchivePath == "" {
		return fmt.Errorf("retention.archive_path must not be empty when archive_before_delete is set")
	}

	if cfg.Metrics.Enabled && cfg.Metrics.ListenAddress == "" {
		return fmt.Errorf("metrics.listen_address must not be empty when metrics are enabled")
	}

	return nil
}
