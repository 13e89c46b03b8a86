package retention

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/ganymede/pkg/evidence"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
)

// Sweeper executes one prune cycle under the evidence directory lock.
// *store.Store satisfies this.
type Sweeper interface {
	Sweep(ctx context.Context) (*evidence.SweepResult, error)
}

// Config contains configuration for the retention pruner.
type Config struct {
	// PruneSchedule is a cron expression for automatic pruning.
	// Example: "0 3 * * *" (daily at 3 AM). Empty disables the
	// scheduler; on-demand pruning still works.
	PruneSchedule string

	// ArchiveBeforeDelete enables archiving records before deletion.
	ArchiveBeforeDelete bool

	// ArchivePath is the directory to store archived records.
	ArchivePath string

	// RerunCap bounds how many times a cycle reruns for requests that
	// arrived while it was in flight. Default: 3.
	RerunCap int

	// MinRunSpacing is the minimum interval between the starts of two
	// consecutive runs in one cycle. Default: 1s.
	MinRunSpacing time.Duration
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		PruneSchedule:       "0 3 * * *",
		ArchiveBeforeDelete: false,
		ArchivePath:         "archives/",
		RerunCap:            3,
		MinRunSpacing:       time.Second,
	}
}

// Pruner coalesces prune requests into single-flight cycles. A request
// arriving while a cycle is running only marks it pending; when the run
// finishes the cycle reruns, bounded by the rerun cap and spaced by the
// minimum inter-run interval so bursty traffic cannot produce a tight
// prune loop.
type Pruner struct {
	store     Sweeper
	config    *Config
	logger    *slog.Logger
	metrics   *metrics.StoreMetrics
	scheduler *Scheduler

	mu      sync.Mutex
	running bool
	pending bool
	reruns  int
}

// Option customizes a Pruner.
type Option func(*Pruner)

// WithMetrics attaches Prometheus instrumentation to the pruner.
func WithMetrics(m *metrics.StoreMetrics) Option {
	return func(p *Pruner) {
		p.metrics = m
	}
}

// NewPruner creates a new retention pruner.
func NewPruner(store Sweeper, config *Config, opts ...Option) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}
	if config.RerunCap <= 0 {
		config.RerunCap = DefaultConfig().RerunCap
	}
	if config.MinRunSpacing <= 0 {
		config.MinRunSpacing = DefaultConfig().MinRunSpacing
	}

	p := &Pruner{
		store:  store,
		config: config,
		logger: slog.Default().With("component", "evidence.retention"),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.scheduler = NewScheduler(p)
	return p
}

// Prune requests a prune cycle and returns immediately. If a cycle is
// already running, the request is coalesced into a pending rerun. It
// never raises: failures are logged and counted, not surfaced.
func (p *Pruner) Prune(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.pending = true
		p.mu.Unlock()
		return
	}
	p.running = true
	p.reruns = 0
	p.mu.Unlock()

	go p.cycle(ctx)
}

// cycle runs the prune state machine: run once, then keep rerunning
// while requests arrived mid-run, up to the rerun cap.
func (p *Pruner) cycle(ctx context.Context) {
	for {
		start := time.Now()
		p.runOnce(ctx)

		p.mu.Lock()
		if !p.pending {
			p.running = false
			p.mu.Unlock()
			return
		}
		if p.reruns >= p.config.RerunCap {
			p.pending = false
			p.running = false
			p.mu.Unlock()
			p.logger.Warn("prune rerun cap reached, dropping pending request",
				"cap", p.config.RerunCap,
			)
			return
		}
		p.pending = false
		p.reruns++
		p.mu.Unlock()

		// Sleep out the remainder of the minimum inter-run spacing.
		if rest := p.config.MinRunSpacing - time.Since(start); rest > 0 {
			select {
			case <-ctx.Done():
				p.mu.Lock()
				p.running = false
				p.pending = false
				p.mu.Unlock()
				return
			case <-time.After(rest):
			}
		}
	}
}

// runOnce executes a single sweep and records its outcome.
func (p *Pruner) runOnce(ctx context.Context) {
	result, err := p.store.Sweep(ctx)
	if err != nil {
		p.metrics.RecordPruneRun("error", nil)
		p.logger.Error("prune cycle failed", "error", err)
		return
	}

	p.metrics.RecordPruneRun("success", result)
	if result.Deleted > 0 || result.Failed > 0 {
		p.logger.Info("prune cycle completed",
			"scanned", result.Scanned,
			"deleted", result.Deleted,
			"failed", result.Failed,
		)
	} else {
		p.logger.Debug("prune cycle completed, nothing deleted",
			"scanned", result.Scanned,
		)
	}
}

// RunOnce executes a single synchronous sweep, bypassing the
// single-flight machinery. Intended for one-shot CLI use.
func (p *Pruner) RunOnce(ctx context.Context) (*evidence.SweepResult, error) {
	result, err := p.store.Sweep(ctx)
	if err != nil {
		p.metrics.RecordPruneRun("error", nil)
		return nil, err
	}
	p.metrics.RecordPruneRun("success", result)
	return result, nil
}

// Running reports whether a prune cycle is currently in flight.
func (p *Pruner) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Start starts the automatic pruning scheduler.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the automatic pruning scheduler.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
