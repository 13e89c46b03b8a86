package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sort"
	"sync"
	"time"

	"mercator-hq/ganymede/pkg/evidence"
)

// Archiver receives the parsed records a sweep is about to delete,
// before any file is unlinked. Unparsable entries cannot be archived
// and are not passed through.
type Archiver interface {
	Archive(ctx context.Context, records []*evidence.Record) error
}

// Deletion reasons, also used as metric labels.
const (
	reasonCorrupt = "corrupt"
	reasonAge     = "age"
	reasonCount   = "count"
)

type victim struct {
	entry  scanEntry
	reason string
}

// Sweep executes one prune cycle under the directory lock:
//
//  1. Unparsable entries are unconditionally marked for deletion.
//  2. Records older than the age budget are marked for deletion. A
//     record's effective timestamp is its created_at, falling back to
//     file modification time when created_at does not parse.
//  3. Of the records surviving the age rule, only the newest MaxBundles
//     are kept.
//
// Deletions are issued concurrently as individual best-effort unlinks;
// failures are counted, never fatal. Pruning is advisory cleanup, not a
// correctness guarantee.
func (s *Store) Sweep(ctx context.Context) (*evidence.SweepResult, error) {
	if err := s.init(); err != nil {
		return nil, err
	}
	cfg := s.Config()

	lockStart := time.Now()
	handle, err := s.lock.acquire(ctx)
	s.metrics.ObserveLockWait(time.Since(lockStart))
	if err != nil {
		var timeout *evidence.LockTimeoutError
		if errors.As(err, &timeout) {
			s.metrics.RecordLockTimeout()
		}
		return nil, err
	}
	defer handle.release()

	entries, err := s.scan()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := &evidence.SweepResult{Scanned: len(entries)}
	maxAge := time.Duration(cfg.MaxAgeDays) * 24 * time.Hour

	var victims []victim
	type survivor struct {
		entry scanEntry
		ts    time.Time
	}
	var survivors []survivor

	for _, e := range entries {
		if e.record == nil {
			victims = append(victims, victim{entry: e, reason: reasonCorrupt})
			result.Corrupt++
			continue
		}
		ts := effectiveTimestamp(e)
		if cfg.MaxAgeDays > 0 && now.Sub(ts) > maxAge {
			victims = append(victims, victim{entry: e, reason: reasonAge})
			result.ExpiredByAge++
			continue
		}
		survivors = append(survivors, survivor{entry: e, ts: ts})
	}

	if cfg.MaxBundles > 0 && len(survivors) > cfg.MaxBundles {
		sort.Slice(survivors, func(i, j int) bool {
			return survivors[i].ts.After(survivors[j].ts)
		})
		for _, sv := range survivors[cfg.MaxBundles:] {
			victims = append(victims, victim{entry: sv.entry, reason: reasonCount})
			result.EvictedByCount++
		}
	}

	if len(victims) == 0 {
		s.logger.Debug("prune sweep found nothing to delete", "scanned", result.Scanned)
		return result, nil
	}

	if s.archiver != nil {
		archivable := make([]*evidence.Record, 0, len(victims))
		for _, v := range victims {
			if v.entry.record != nil {
				archivable = append(archivable, v.entry.record)
			}
		}
		if len(archivable) > 0 {
			if err := s.archiver.Archive(ctx, archivable); err != nil {
				return nil, evidence.NewStoreError("archive", s.root, err)
			}
		}
	}

	var (
		mu      sync.Mutex
		deleted int
		failed  int
		wg      sync.WaitGroup
	)
	for _, v := range victims {
		wg.Add(1)
		go func(v victim) {
			defer wg.Done()
			if err := os.Remove(v.entry.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				s.logger.Warn("failed to delete evidence record",
					"path", v.entry.path,
					"reason", v.reason,
					"error", err,
				)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			s.metrics.RecordPruned(v.reason)
			mu.Lock()
			deleted++
			mu.Unlock()
		}(v)
	}
	wg.Wait()

	result.Deleted = deleted
	result.Failed = failed

	s.logger.Info("prune sweep completed",
		"scanned", result.Scanned,
		"deleted", result.Deleted,
		"corrupt", result.Corrupt,
		"expired_by_age", result.ExpiredByAge,
		"evicted_by_count", result.EvictedByCount,
		"failed", result.Failed,
	)
	return result, nil
}

// effectiveTimestamp is the record's created_at when it parses, else
// the file's modification time.
func effectiveTimestamp(e scanEntry) time.Time {
	if t, err := evidence.ParseTime(e.record.CreatedAt); err == nil {
		return t
	}
	return e.info.ModTime()
}
