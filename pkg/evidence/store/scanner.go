package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mercator-hq/ganymede/pkg/evidence"
)

// scanEntry is one *.json file under the evidence root. record is nil
// when the file could not be parsed as a complete record.
type scanEntry struct {
	path   string
	info   fs.FileInfo
	record *evidence.Record
}

// scan lists all *.json files directly under the evidence root,
// non-recursively. Parse failures yield entries with a nil record
// instead of aborting; partial writes from crashed processes must not
// poison listing or pruning.
func (s *Store) scan() ([]scanEntry, error) {
	dirEntries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, evidence.NewStoreError("scan", s.root, err)
	}

	entries := make([]scanEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), recordSuffix) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// Deleted between the listing and the stat.
			continue
		}
		path := filepath.Join(s.root, de.Name())
		entries = append(entries, scanEntry{
			path:   path,
			info:   info,
			record: s.parseRecord(path),
		})
	}
	return entries, nil
}

// parseRecord reads and decodes one record file, returning nil for
// anything unreadable, unparsable, or missing a required field.
func (s *Store) parseRecord(path string) *evidence.Record {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Debug("unreadable evidence record",
			"error", evidence.NewCorruptRecordError(path, err),
		)
		return nil
	}

	var rec evidence.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Debug("corrupt evidence record",
			"error", evidence.NewCorruptRecordError(path, err),
		)
		return nil
	}
	if rec.ID == "" || rec.CreatedAt == "" {
		s.logger.Debug("incomplete evidence record",
			"error", evidence.NewCorruptRecordError(path, nil),
		)
		return nil
	}
	return &rec
}

// List returns all parsed records sorted newest first. It never fails:
// a missing directory or unreadable entries degrade to an empty or
// partial listing. Listing does not take the directory lock, so it
// gives no ordering guarantee relative to concurrent saves or prunes.
func (s *Store) List(ctx context.Context) []*evidence.Record {
	_ = ctx

	if err := s.init(); err != nil {
		s.logger.Warn("evidence listing unavailable", "error", err)
		return []*evidence.Record{}
	}

	entries, err := s.scan()
	if err != nil {
		s.logger.Warn("evidence scan failed", "error", err)
		return []*evidence.Record{}
	}

	records := make([]*evidence.Record, 0, len(entries))
	for _, e := range entries {
		if e.record != nil {
			records = append(records, e.record)
		}
	}

	// created_at is fixed width, so comparing the raw strings orders
	// chronologically without parse cost.
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt != records[j].CreatedAt {
			return records[i].CreatedAt > records[j].CreatedAt
		}
		return records[i].ID > records[j].ID
	})
	return records
}
