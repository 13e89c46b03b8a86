package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/ganymede/pkg/evidence"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
)

const (
	// recordSuffix is the extension of persisted record files.
	recordSuffix = ".json"

	// lockFileName is the ephemeral lock marker under the evidence root.
	lockFileName = ".lock"

	dirPerm = 0o755
)

// Store is the composition root of the evidence retention store. It
// owns directory initialization and serializes every mutating operation
// (save, sweep) under a cross-process advisory file lock. Listing is
// lock-free.
//
// Construct one Store per evidence directory and pass it by reference
// to whatever orchestration code needs it.
type Store struct {
	root     string
	tmpDir   string
	lock     *lockManager
	writer   *atomicWriter
	logger   *slog.Logger
	metrics  *metrics.StoreMetrics
	archiver Archiver

	cfgMu sync.RWMutex
	cfg   evidence.Config

	initOnce sync.Once
	initErr  error
}

// Option customizes a Store.
type Option func(*Store)

// WithMetrics attaches Prometheus instrumentation to the store.
func WithMetrics(m *metrics.StoreMetrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithArchiver attaches an archiver that receives the parsed records a
// sweep is about to delete, before any file is unlinked.
func WithArchiver(a Archiver) Option {
	return func(s *Store) {
		s.archiver = a
	}
}

// New creates a store rooted at the given evidence directory. The
// directory is created lazily on first use, not here.
func New(root string, cfg evidence.Config, opts ...Option) *Store {
	logger := slog.Default().With("component", "evidence.store")

	s := &Store{
		root:   root,
		tmpDir: filepath.Join(root, tempDirName),
		lock:   newLockManager(filepath.Join(root, lockFileName), logger),
		writer: newAtomicWriter(logger),
		logger: logger,
		cfg:    cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the evidence directory the store operates on.
func (s *Store) Root() string {
	return s.root
}

// Config returns the current retention budgets.
func (s *Store) Config() evidence.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// SetConfig replaces the retention budgets. Used by config hot-reload;
// in-flight operations keep the budgets they started with.
func (s *Store) SetConfig(cfg evidence.Config) {
	s.cfgMu.Lock()
	s.cfg = cfg
	s.cfgMu.Unlock()

	s.logger.Info("evidence config updated",
		"enabled", cfg.Enabled,
		"max_age_days", cfg.MaxAgeDays,
		"max_bundles", cfg.MaxBundles,
	)
}

// init resolves the directory layout exactly once per process lifetime:
// it creates the evidence root and staging directory, then removes any
// temp files left behind by a crashed writer.
func (s *Store) init() error {
	s.initOnce.Do(func() {
		if err := os.MkdirAll(s.tmpDir, dirPerm); err != nil {
			s.initErr = evidence.NewStoreError("mkdir", s.tmpDir, err)
			return
		}
		sweepTempDir(s.tmpDir, tempSweepLimit, s.logger)
	})
	return s.initErr
}

// Save persists a bundle as an immutable record under the directory
// lock. It is a no-op when persistence is disabled. The record's
// created_at defaults to now, and the write is atomic: on any failure
// the staging file is cleaned up before the error is returned, and no
// partial record appears under the evidence root.
func (s *Store) Save(ctx context.Context, bundle *evidence.Bundle) (*evidence.Record, error) {
	cfg := s.Config()
	if !cfg.Enabled {
		s.logger.Debug("evidence persistence disabled, dropping bundle", "id", bundle.ID)
		return nil, nil
	}
	if err := s.init(); err != nil {
		return nil, err
	}

	start := time.Now()

	id, err := evidence.NormalizeID(bundle.ID)
	if err != nil {
		s.metrics.ObserveSave("invalid", 0)
		return nil, err
	}
	if !bundle.Type.Valid() {
		s.metrics.ObserveSave("invalid", 0)
		return nil, evidence.NewValidationError("type", string(bundle.Type),
			"type must be one of review, test, diff, approval, note")
	}

	createdAt := bundle.CreatedAt
	if createdAt == "" {
		createdAt = evidence.FormatTime(time.Now())
	}

	record := &evidence.Record{
		ID:        id,
		Type:      bundle.Type,
		Payload:   bundle.Payload,
		CreatedAt: createdAt,
		Filename:  id + recordSuffix,
	}

	content, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		s.metrics.ObserveSave("invalid", 0)
		return nil, evidence.NewStoreError("encode", record.Filename, err)
	}

	target := filepath.Join(s.root, record.Filename)
	temp := filepath.Join(s.tmpDir, fmt.Sprintf("%s.%s.json.tmp", id, uuid.NewString()[:8]))

	lockStart := time.Now()
	handle, err := s.lock.acquire(ctx)
	s.metrics.ObserveLockWait(time.Since(lockStart))
	if err != nil {
		var timeout *evidence.LockTimeoutError
		if errors.As(err, &timeout) {
			s.metrics.RecordLockTimeout()
			s.metrics.ObserveSave("lock_timeout", 0)
		} else {
			s.metrics.ObserveSave("error", 0)
		}
		return nil, err
	}
	defer handle.release()

	if err := s.writer.write(ctx, temp, target, content); err != nil {
		s.metrics.ObserveSave("error", 0)
		return nil, err
	}

	s.metrics.ObserveSave("success", time.Since(start))
	s.logger.Info("evidence saved",
		"id", record.ID,
		"type", record.Type,
		"filename", record.Filename,
	)
	return record, nil
}
