package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/ganymede/pkg/evidence"
)

// TestStore_SweepAgeBudget tests deletion of records past the age
// budget while newer records survive.
func TestStore_SweepAgeBudget(t *testing.T) {
	cfg := testConfig()
	cfg.MaxAgeDays = 1
	s := New(t.TempDir(), cfg)
	ctx := context.Background()

	saves := map[string]string{
		"ancient": evidence.FormatTime(time.Now().Add(-48 * time.Hour)),
		"recent":  evidence.FormatTime(time.Now()),
	}
	for id, createdAt := range saves {
		if _, err := s.Save(ctx, &evidence.Bundle{
			ID:        id,
			Type:      evidence.TypeTest,
			Payload:   map[string]any{},
			CreatedAt: createdAt,
		}); err != nil {
			t.Fatalf("Save(%q) failed: %v", id, err)
		}
	}

	result, err := s.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep() failed: %v", err)
	}
	if result.Scanned != 2 || result.ExpiredByAge != 1 || result.Deleted != 1 {
		t.Errorf("Unexpected result: %+v", result)
	}

	records := s.List(ctx)
	if len(records) != 1 || records[0].ID != "recent" {
		t.Errorf("Expected only the recent record, got %+v", records)
	}
}

// TestStore_SweepCountBudget tests that only the newest MaxBundles
// records survive.
func TestStore_SweepCountBudget(t *testing.T) {
	cfg := testConfig()
	cfg.MaxAgeDays = 3650
	cfg.MaxBundles = 2
	s := New(t.TempDir(), cfg)
	ctx := context.Background()
	now := time.Now()

	for i := 1; i <= 3; i++ {
		if _, err := s.Save(ctx, &evidence.Bundle{
			ID:        fmt.Sprintf("bundle-%d", i),
			Type:      evidence.TypeNote,
			Payload:   map[string]any{},
			CreatedAt: evidence.FormatTime(now.Add(time.Duration(i) * time.Minute)),
		}); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
	}

	result, err := s.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep() failed: %v", err)
	}
	if result.EvictedByCount != 1 || result.Deleted != 1 {
		t.Errorf("Unexpected result: %+v", result)
	}

	records := s.List(ctx)
	if len(records) != 2 {
		t.Fatalf("Expected 2 survivors, got %d", len(records))
	}
	if records[0].ID != "bundle-3" || records[1].ID != "bundle-2" {
		t.Errorf("Expected newest two to survive, got %q, %q", records[0].ID, records[1].ID)
	}
}

// TestStore_SweepDeletesCorrupt tests unconditional deletion of
// unparsable entries.
func TestStore_SweepDeletesCorrupt(t *testing.T) {
	root := t.TempDir()
	s := New(root, testConfig())
	ctx := context.Background()

	if _, err := s.Save(ctx, &evidence.Bundle{
		ID:      "intact",
		Type:    evidence.TypeApproval,
		Payload: map[string]any{},
	}); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	corrupt := filepath.Join(root, "mangled.json")
	if err := os.WriteFile(corrupt, []byte(`{"id": "man`), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	result, err := s.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep() failed: %v", err)
	}
	if result.Corrupt != 1 || result.Deleted != 1 {
		t.Errorf("Unexpected result: %+v", result)
	}
	if _, err := os.Stat(corrupt); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected corrupt file removed, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "intact.json")); err != nil {
		t.Errorf("Expected intact record to survive: %v", err)
	}
}

// TestStore_SweepModTimeFallback tests that a record whose created_at
// does not parse is aged by file modification time instead.
func TestStore_SweepModTimeFallback(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig()
	cfg.MaxAgeDays = 1
	s := New(root, cfg)
	ctx := context.Background()

	path := filepath.Join(root, "odd-clock.json")
	content := `{"id": "odd-clock", "type": "note", "payload": {}, "created_at": "whenever", "filename": "odd-clock.json"}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	old := time.Now().Add(-72 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("Chtimes() failed: %v", err)
	}

	result, err := s.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep() failed: %v", err)
	}
	if result.ExpiredByAge != 1 || result.Deleted != 1 {
		t.Errorf("Unexpected result: %+v", result)
	}
}

// captureArchiver records what a sweep hands it, optionally failing.
type captureArchiver struct {
	records []*evidence.Record
	err     error
}

func (a *captureArchiver) Archive(ctx context.Context, records []*evidence.Record) error {
	if a.err != nil {
		return a.err
	}
	a.records = append(a.records, records...)
	return nil
}

// TestStore_SweepArchivesBeforeDelete tests that parsable victims reach
// the archiver before their files are unlinked.
func TestStore_SweepArchivesBeforeDelete(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBundles = 1
	archiver := &captureArchiver{}
	s := New(t.TempDir(), cfg, WithArchiver(archiver))
	ctx := context.Background()
	now := time.Now()

	for i, id := range []string{"older", "newer"} {
		if _, err := s.Save(ctx, &evidence.Bundle{
			ID:        id,
			Type:      evidence.TypeDiff,
			Payload:   map[string]any{},
			CreatedAt: evidence.FormatTime(now.Add(time.Duration(i) * time.Minute)),
		}); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
	}

	result, err := s.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep() failed: %v", err)
	}
	if result.Deleted != 1 {
		t.Errorf("Unexpected result: %+v", result)
	}
	if len(archiver.records) != 1 || archiver.records[0].ID != "older" {
		t.Errorf("Expected the evicted record to be archived, got %+v", archiver.records)
	}
}

// TestStore_SweepAbortsOnArchiveFailure tests that an archiver failure
// aborts the sweep with nothing deleted.
func TestStore_SweepAbortsOnArchiveFailure(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBundles = 1
	archiver := &captureArchiver{err: errors.New("archive volume full")}
	s := New(t.TempDir(), cfg, WithArchiver(archiver))
	ctx := context.Background()
	now := time.Now()

	for i, id := range []string{"older", "newer"} {
		if _, err := s.Save(ctx, &evidence.Bundle{
			ID:        id,
			Type:      evidence.TypeDiff,
			Payload:   map[string]any{},
			CreatedAt: evidence.FormatTime(now.Add(time.Duration(i) * time.Minute)),
		}); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
	}

	if _, err := s.Sweep(ctx); err == nil {
		t.Fatal("Sweep() succeeded despite archive failure")
	}
	if records := s.List(ctx); len(records) != 2 {
		t.Errorf("Expected both records to survive the aborted sweep, got %d", len(records))
	}
}

// TestStore_SweepEmptyDirectory tests sweeping a store that has never
// been written to.
func TestStore_SweepEmptyDirectory(t *testing.T) {
	s := New(t.TempDir(), testConfig())

	result, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() failed: %v", err)
	}
	if result.Scanned != 0 || result.Deleted != 0 {
		t.Errorf("Unexpected result: %+v", result)
	}
}
