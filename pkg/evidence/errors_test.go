package evidence

import (
	"errors"
	"testing"
	"time"
)

// TestErrors_Unwrap tests that wrapping error types expose their cause.
func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("disk on fire")

	if !errors.Is(NewStoreError("write", "/tmp/x.json", cause), cause) {
		t.Error("StoreError did not unwrap to its cause")
	}
	if !errors.Is(NewTransientIOError("write", "/tmp/x.json", 5, cause), cause) {
		t.Error("TransientIOError did not unwrap to its cause")
	}
	if !errors.Is(NewExportError("csv", 3, cause), cause) {
		t.Error("ExportError did not unwrap to its cause")
	}
	if !errors.Is(NewCorruptRecordError("/tmp/x.json", cause), cause) {
		t.Error("CorruptRecordError did not unwrap to its cause")
	}
}

// TestLockTimeoutError_Message tests the lock timeout message carries
// the path and elapsed wait.
func TestLockTimeoutError_Message(t *testing.T) {
	err := NewLockTimeoutError("/data/.lock", 10*time.Second)

	var timeout *LockTimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("Expected *LockTimeoutError, got %T", err)
	}
	if timeout.Path != "/data/.lock" || timeout.Waited != 10*time.Second {
		t.Errorf("Unexpected fields: %+v", timeout)
	}
	if err.Error() == "" {
		t.Error("Expected non-empty message")
	}
}
