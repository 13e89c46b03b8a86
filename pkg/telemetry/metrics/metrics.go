package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/ganymede/pkg/evidence"
)

// Config contains configuration for store metrics.
type Config struct {
	// Namespace is the metric namespace prefix. Default: "ganymede".
	Namespace string

	// Subsystem is the metric subsystem prefix. Default: "evidence".
	Subsystem string
}

// StoreMetrics tracks Prometheus metrics for the evidence store and the
// retention pruner.
//
// Metrics:
//   - ganymede_evidence_saves_total: saves by outcome
//   - ganymede_evidence_save_duration_seconds: save latency
//   - ganymede_evidence_lock_wait_seconds: directory lock wait time
//   - ganymede_evidence_lock_timeouts_total: lock acquisitions abandoned
//   - ganymede_evidence_prune_runs_total: prune cycles by outcome
//   - ganymede_evidence_pruned_records_total: deletions by reason
//   - ganymede_evidence_records_last_scan: records seen by the last sweep
//
// A nil *StoreMetrics is valid; every method is a no-op on a nil
// receiver so instrumentation stays optional.
type StoreMetrics struct {
	savesTotal        *prometheus.CounterVec
	saveDuration      prometheus.Histogram
	lockWaitSeconds   prometheus.Histogram
	lockTimeoutsTotal prometheus.Counter
	pruneRunsTotal    *prometheus.CounterVec
	prunedTotal       *prometheus.CounterVec
	recordsLastScan   prometheus.Gauge

	registry *prometheus.Registry
}

// New creates and registers store metrics with the provided registry.
// If registry is nil, a fresh registry is created.
func New(cfg Config, registry *prometheus.Registry) *StoreMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "ganymede"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "evidence"
	}

	m := &StoreMetrics{
		registry: registry,

		savesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "saves_total",
				Help:      "Total number of evidence save operations by outcome",
			},
			[]string{"outcome"},
		),

		saveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "save_duration_seconds",
				Help:      "Duration of evidence save operations in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
		),

		lockWaitSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "lock_wait_seconds",
				Help:      "Time spent waiting for the evidence directory lock",
				Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
		),

		lockTimeoutsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "lock_timeouts_total",
				Help:      "Lock acquisitions abandoned after the wall-clock budget",
			},
		),

		pruneRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "prune_runs_total",
				Help:      "Total number of prune cycles by outcome",
			},
			[]string{"outcome"},
		),

		prunedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "pruned_records_total",
				Help:      "Total number of records deleted by pruning, by reason",
			},
			[]string{"reason"},
		),

		recordsLastScan: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "records_last_scan",
				Help:      "Number of entries seen by the most recent prune sweep",
			},
		),
	}

	registry.MustRegister(
		m.savesTotal,
		m.saveDuration,
		m.lockWaitSeconds,
		m.lockTimeoutsTotal,
		m.pruneRunsTotal,
		m.prunedTotal,
		m.recordsLastScan,
	)

	return m
}

// Registry returns the registry the metrics are registered with.
func (m *StoreMetrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveSave records the outcome and duration of a save operation.
// Outcome is one of "success", "error", "invalid", "lock_timeout".
func (m *StoreMetrics) ObserveSave(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.savesTotal.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		m.saveDuration.Observe(duration.Seconds())
	}
}

// ObserveLockWait records time spent waiting for the directory lock.
func (m *StoreMetrics) ObserveLockWait(duration time.Duration) {
	if m == nil {
		return
	}
	m.lockWaitSeconds.Observe(duration.Seconds())
}

// RecordLockTimeout counts a lock acquisition abandoned on budget.
func (m *StoreMetrics) RecordLockTimeout() {
	if m == nil {
		return
	}
	m.lockTimeoutsTotal.Inc()
}

// RecordPruned counts one pruned record. Reason is one of "corrupt",
// "age", "count".
func (m *StoreMetrics) RecordPruned(reason string) {
	if m == nil {
		return
	}
	m.prunedTotal.WithLabelValues(reason).Inc()
}

// RecordPruneRun records the outcome of a full prune cycle and the
// sweep statistics when the cycle succeeded.
func (m *StoreMetrics) RecordPruneRun(outcome string, result *evidence.SweepResult) {
	if m == nil {
		return
	}
	m.pruneRunsTotal.WithLabelValues(outcome).Inc()
	if result != nil {
		m.recordsLastScan.Set(float64(result.Scanned))
	}
}
