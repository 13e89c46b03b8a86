package retention

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mercator-hq/ganymede/pkg/evidence"
	"mercator-hq/ganymede/pkg/evidence/export"
)

// FileArchiver writes records to a dated JSON archive file before the
// sweep deletes them. It satisfies the store's Archiver interface.
//
// Archiving applies only to parsable records; corrupt files have
// nothing recoverable to archive.
type FileArchiver struct {
	dir    string
	logger *slog.Logger
}

// NewFileArchiver creates an archiver writing into dir.
func NewFileArchiver(dir string) *FileArchiver {
	return &FileArchiver{
		dir:    dir,
		logger: slog.Default().With("component", "evidence.archive"),
	}
}

// Archive exports records to a new archive file. An error here aborts
// the sweep before any deletion, so records are never lost to a failed
// archive.
func (a *FileArchiver) Archive(ctx context.Context, records []*evidence.Record) error {
	if len(records) == 0 {
		return nil
	}

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	name := fmt.Sprintf("evidence-%s.json", time.Now().Format("2006-01-02-150405"))
	path := filepath.Join(a.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer f.Close()

	exporter := export.NewJSONExporter(true)
	if err := exporter.Export(ctx, records, f); err != nil {
		return fmt.Errorf("failed to export records to archive: %w", err)
	}

	a.logger.Info("evidence records archived",
		"archive_file", path,
		"record_count", len(records),
	)
	return nil
}
