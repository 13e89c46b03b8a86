package retention

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/ganymede/pkg/evidence"
)

// TestFileArchiver_WritesArchive tests that archived records land as a
// parsable JSON file in the archive directory.
func TestFileArchiver_WritesArchive(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "archives")
	archiver := NewFileArchiver(dir)

	records := []*evidence.Record{
		{ID: "a", Type: evidence.TypeReview, Payload: map[string]any{"v": 1}, CreatedAt: "2026-01-01T00:00:00.000Z", Filename: "a.json"},
		{ID: "b", Type: evidence.TypeNote, Payload: map[string]any{"v": 2}, CreatedAt: "2026-01-02T00:00:00.000Z", Filename: "b.json"},
	}
	if err := archiver.Archive(context.Background(), records); err != nil {
		t.Fatalf("Archive() failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 archive file, got %d", len(entries))
	}
	if !strings.HasPrefix(entries[0].Name(), "evidence-") {
		t.Errorf("Unexpected archive name %q", entries[0].Name())
	}

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	var archived []*evidence.Record
	if err := json.Unmarshal(data, &archived); err != nil {
		t.Fatalf("Archive content is not valid JSON: %v", err)
	}
	if len(archived) != 2 {
		t.Errorf("Expected 2 archived records, got %d", len(archived))
	}
}
