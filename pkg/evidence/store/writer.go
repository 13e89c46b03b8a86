package store

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"mercator-hq/ganymede/pkg/evidence"
)

const (
	// tempDirName is the staging subdirectory under the evidence root.
	// It must be empty at rest.
	tempDirName = ".tmp"

	// writeMaxAttempts bounds retries of the temp-file write on
	// transient descriptor exhaustion.
	writeMaxAttempts = 5

	// writeBackoffInitial is the first retry delay; it doubles on each
	// subsequent attempt.
	writeBackoffInitial = 50 * time.Millisecond

	// tempSweepLimit bounds the startup cleanup of leftover temp files.
	tempSweepLimit = 1000
)

// atomicWriter persists record content via temp-file-then-rename. The
// rename is atomic on a single filesystem, so a reader never observes a
// partially written record under the evidence root.
type atomicWriter struct {
	logger *slog.Logger

	// rename is swapped in tests to force the rename failure path.
	rename func(oldpath, newpath string) error
}

func newAtomicWriter(logger *slog.Logger) *atomicWriter {
	return &atomicWriter{
		logger: logger,
		rename: os.Rename,
	}
}

// isTransientFileError reports whether err is descriptor exhaustion,
// the only class of write error worth retrying.
func isTransientFileError(err error) bool {
	return errors.Is(err, syscall.EMFILE) || errors.Is(err, syscall.ENFILE)
}

// write stages content at tempPath and renames it onto targetPath. The
// temp file never survives the call: cleanup runs on success, write
// failure, and rename failure alike, and any underlying error is
// propagated only after cleanup completes.
func (w *atomicWriter) write(ctx context.Context, tempPath, targetPath string, content []byte) error {
	defer func() {
		if _, err := os.Stat(tempPath); err == nil {
			_ = os.Remove(tempPath)
		}
	}()

	delay := writeBackoffInitial
	for attempt := 1; ; attempt++ {
		err := os.WriteFile(tempPath, content, 0o644)
		if err == nil {
			break
		}
		if !isTransientFileError(err) {
			return evidence.NewStoreError("write", tempPath, err)
		}
		if attempt >= writeMaxAttempts {
			return evidence.NewTransientIOError("write", tempPath, attempt, err)
		}

		w.logger.Warn("transient write failure, backing off",
			"path", tempPath,
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	if err := w.rename(tempPath, targetPath); err != nil {
		return evidence.NewStoreError("rename", targetPath, err)
	}
	return nil
}

// sweepTempDir removes staging files left behind by a crashed writer.
// The sweep is bounded: hitting the limit logs a warning and stops
// rather than scanning unboundedly.
func sweepTempDir(dir string, limit int, logger *slog.Logger) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("unable to scan temp staging directory",
				"dir", dir,
				"error", err,
			)
		}
		return
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if removed >= limit {
			logger.Warn("temp staging cleanup stopped at scan bound",
				"dir", dir,
				"limit", limit,
			)
			return
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			logger.Warn("failed to remove leftover temp file",
				"path", path,
				"error", err,
			)
			continue
		}
		removed++
	}

	if removed > 0 {
		logger.Info("removed leftover temp files",
			"dir", dir,
			"count", removed,
		)
	}
}
