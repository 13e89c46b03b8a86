package retention

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mercator-hq/ganymede/pkg/evidence"
)

// fakeSweeper counts sweeps and can fail, delay, or re-request pruning
// from inside a sweep to exercise the single-flight machinery.
type fakeSweeper struct {
	mu     sync.Mutex
	calls  int
	delay  time.Duration
	err    error
	pruner *Pruner
}

func (f *fakeSweeper) Sweep(ctx context.Context) (*evidence.SweepResult, error) {
	f.mu.Lock()
	f.calls++
	pruner := f.pruner
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	// A request arriving mid-sweep must coalesce into a rerun.
	if pruner != nil {
		pruner.Prune(ctx)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &evidence.SweepResult{Scanned: 1}, nil
}

func (f *fakeSweeper) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// waitForIdle polls until no prune cycle is in flight.
func waitForIdle(t *testing.T, p *Pruner) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if !p.Running() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("pruner never went idle")
}

// TestPruner_RunOnce tests the synchronous one-shot path.
func TestPruner_RunOnce(t *testing.T) {
	sweeper := &fakeSweeper{}
	pruner := NewPruner(sweeper, DefaultConfig())

	result, err := pruner.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() failed: %v", err)
	}
	if result.Scanned != 1 {
		t.Errorf("Unexpected result: %+v", result)
	}
	if sweeper.callCount() != 1 {
		t.Errorf("Expected 1 sweep, got %d", sweeper.callCount())
	}
}

// TestPruner_RunOnceError tests error propagation on the one-shot path.
func TestPruner_RunOnceError(t *testing.T) {
	sweeper := &fakeSweeper{err: errors.New("lock timeout")}
	pruner := NewPruner(sweeper, DefaultConfig())

	if _, err := pruner.RunOnce(context.Background()); err == nil {
		t.Fatal("RunOnce() succeeded, want error")
	}
}

// TestPruner_CoalescesConcurrentRequests tests that a burst of prune
// requests during one run collapses into at most one rerun.
func TestPruner_CoalescesConcurrentRequests(t *testing.T) {
	sweeper := &fakeSweeper{delay: 50 * time.Millisecond}
	config := DefaultConfig()
	config.MinRunSpacing = time.Millisecond
	pruner := NewPruner(sweeper, config)
	ctx := context.Background()

	pruner.Prune(ctx)
	for i := 0; i < 5; i++ {
		pruner.Prune(ctx)
	}
	waitForIdle(t, pruner)

	// One initial run plus at most one rerun for the coalesced burst.
	calls := sweeper.callCount()
	if calls < 1 || calls > 2 {
		t.Errorf("Expected 1-2 sweeps for a coalesced burst, got %d", calls)
	}
}

// TestPruner_RerunCap tests that a sweep which keeps re-requesting
// pruning is cut off at the rerun cap.
func TestPruner_RerunCap(t *testing.T) {
	sweeper := &fakeSweeper{}
	config := DefaultConfig()
	config.RerunCap = 2
	config.MinRunSpacing = time.Millisecond
	pruner := NewPruner(sweeper, config)
	sweeper.pruner = pruner

	pruner.Prune(context.Background())
	waitForIdle(t, pruner)

	// Initial run plus RerunCap reruns, then the pending request is
	// dropped.
	if calls := sweeper.callCount(); calls != 3 {
		t.Errorf("Expected 3 sweeps (1 + cap of 2), got %d", calls)
	}
}

// TestPruner_DefaultsApplied tests that zero-valued rerun bounds are
// replaced by defaults.
func TestPruner_DefaultsApplied(t *testing.T) {
	pruner := NewPruner(&fakeSweeper{}, &Config{PruneSchedule: ""})

	if pruner.config.RerunCap != DefaultConfig().RerunCap {
		t.Errorf("RerunCap = %d, want default %d", pruner.config.RerunCap, DefaultConfig().RerunCap)
	}
	if pruner.config.MinRunSpacing != DefaultConfig().MinRunSpacing {
		t.Errorf("MinRunSpacing = %v, want default %v", pruner.config.MinRunSpacing, DefaultConfig().MinRunSpacing)
	}
}
