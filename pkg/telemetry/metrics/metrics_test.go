package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/ganymede/pkg/evidence"
)

// TestStoreMetrics_NilReceiverSafe tests that every method is a no-op
// on a nil receiver.
func TestStoreMetrics_NilReceiverSafe(t *testing.T) {
	var m *StoreMetrics

	m.ObserveSave("success", time.Millisecond)
	m.ObserveLockWait(time.Millisecond)
	m.RecordLockTimeout()
	m.RecordPruned("age")
	m.RecordPruneRun("success", &evidence.SweepResult{Scanned: 3})
	m.RecordPruneRun("error", nil)
	if m.Registry() != nil {
		t.Error("Expected nil registry from nil receiver")
	}
}

// TestStoreMetrics_Counters tests that observations land in the right
// series.
func TestStoreMetrics_Counters(t *testing.T) {
	m := New(Config{}, prometheus.NewRegistry())

	m.ObserveSave("success", 5*time.Millisecond)
	m.ObserveSave("success", 5*time.Millisecond)
	m.ObserveSave("lock_timeout", 0)
	m.RecordLockTimeout()
	m.RecordPruned("age")
	m.RecordPruned("age")
	m.RecordPruned("corrupt")
	m.RecordPruneRun("success", &evidence.SweepResult{Scanned: 7})

	if got := testutil.ToFloat64(m.savesTotal.WithLabelValues("success")); got != 2 {
		t.Errorf("saves_total{success} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.savesTotal.WithLabelValues("lock_timeout")); got != 1 {
		t.Errorf("saves_total{lock_timeout} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.lockTimeoutsTotal); got != 1 {
		t.Errorf("lock_timeouts_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.prunedTotal.WithLabelValues("age")); got != 2 {
		t.Errorf("pruned_records_total{age} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.pruneRunsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("prune_runs_total{success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.recordsLastScan); got != 7 {
		t.Errorf("records_last_scan = %v, want 7", got)
	}
}

// TestStoreMetrics_CustomNamespace tests namespace/subsystem overrides.
func TestStoreMetrics_CustomNamespace(t *testing.T) {
	m := New(Config{Namespace: "custom", Subsystem: "store"}, prometheus.NewRegistry())
	m.ObserveSave("success", time.Millisecond)

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() failed: %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "custom_store_saves_total" {
			found = true
		}
	}
	if !found {
		t.Error("Expected custom_store_saves_total series")
	}
}

// TestStoreMetrics_Handler tests the HTTP exposition endpoint.
func TestStoreMetrics_Handler(t *testing.T) {
	m := New(Config{}, prometheus.NewRegistry())
	m.ObserveSave("success", time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("Status = %d, want 200", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll() failed: %v", err)
	}
	if !strings.Contains(string(body), "ganymede_evidence_saves_total") {
		t.Error("Exposition output missing ganymede_evidence_saves_total")
	}
}
