package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"mercator-hq/ganymede/pkg/evidence"
)

const (
	// defaultLockStaleAfter is how old a lock marker must be, by
	// modification time, before it is presumed abandoned by a crashed
	// holder.
	defaultLockStaleAfter = 5 * time.Second

	// defaultLockWaitBudget is the wall-clock budget for acquiring the
	// lock, independent of the backoff schedule.
	defaultLockWaitBudget = 10 * time.Second
)

// defaultLockBackoff is the delay schedule between acquisition attempts,
// capped at the last value.
var defaultLockBackoff = []time.Duration{
	10 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	200 * time.Millisecond,
	500 * time.Millisecond,
}

// lockMarker is the JSON body of the lock file. It is informational
// only; the existence of the file is what means "held".
type lockMarker struct {
	PID       int    `json:"pid"`
	CreatedAt string `json:"createdAt"`
}

// lockManager provides cross-process advisory mutual exclusion over the
// evidence directory via an exclusive-create lock file.
//
// The staleness heuristic only detects a crashed process on the same
// host. Sharing the evidence directory across hosts (for example over a
// network filesystem) requires a real distributed lock.
type lockManager struct {
	path       string
	staleAfter time.Duration
	waitBudget time.Duration
	backoff    []time.Duration
	logger     *slog.Logger
}

func newLockManager(path string, logger *slog.Logger) *lockManager {
	return &lockManager{
		path:       path,
		staleAfter: defaultLockStaleAfter,
		waitBudget: defaultLockWaitBudget,
		backoff:    defaultLockBackoff,
		logger:     logger,
	}
}

// lockHandle represents a held lock. release must be called exactly once.
type lockHandle struct {
	path string
	file *os.File
}

// acquire obtains the lock or fails with a LockTimeoutError once the
// total elapsed wait exceeds the wall-clock budget. A stale lock is
// reclaimed after a second stat confirms it is still the same file that
// was first observed, to avoid racing a lock that was released and
// re-acquired between the two checks.
func (m *lockManager) acquire(ctx context.Context) (*lockHandle, error) {
	start := time.Now()
	attempt := 0

	for {
		f, err := os.OpenFile(m.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			marker, _ := json.Marshal(lockMarker{
				PID:       os.Getpid(),
				CreatedAt: evidence.FormatTime(time.Now()),
			})
			_, _ = f.Write(marker)
			return &lockHandle{path: m.path, file: f}, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, evidence.NewStoreError("lock", m.path, err)
		}

		if m.reclaimStale() {
			// Retry the exclusive create immediately.
			continue
		}

		if time.Since(start) >= m.waitBudget {
			return nil, evidence.NewLockTimeoutError(m.path, time.Since(start))
		}

		delay := m.backoff[len(m.backoff)-1]
		if attempt < len(m.backoff) {
			delay = m.backoff[attempt]
		}
		attempt++

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// reclaimStale deletes the lock file if it has outlived the staleness
// window. It returns true when the caller should retry the exclusive
// create without backing off, either because the lock was reclaimed or
// because it vanished on its own.
func (m *lockManager) reclaimStale() bool {
	first, err := os.Stat(m.path)
	if err != nil {
		// Holder released between our create attempt and this stat.
		return true
	}
	age := time.Since(first.ModTime())
	if age < m.staleAfter {
		return false
	}

	second, err := os.Stat(m.path)
	if err != nil {
		return true
	}
	if !os.SameFile(first, second) {
		// Replaced between the two observations; not ours to reclaim.
		return false
	}

	if err := os.Remove(m.path); err != nil {
		return false
	}
	m.logger.Warn("reclaimed stale evidence lock",
		"path", m.path,
		"age", age,
	)
	return true
}

// release closes the handle and deletes the lock file. Errors are
// swallowed; cleanup is best-effort.
func (h *lockHandle) release() {
	if h == nil {
		return
	}
	if h.file != nil {
		_ = h.file.Close()
	}
	_ = os.Remove(h.path)
}
