package evidence

import (
	"fmt"
	"time"
)

// ValidationError reports a malformed or forbidden bundle field, most
// commonly the identifier. Validation errors are never retried; they
// abort the save immediately.
type ValidationError struct {
	Field  string // Bundle field that failed validation ("identifier", "type")
	Value  string // Offending value
	Reason string // Why it was rejected
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid evidence %s %q: %s", e.Field, e.Value, e.Reason)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, value, reason string) *ValidationError {
	return &ValidationError{
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// LockTimeoutError reports that the directory lock could not be acquired
// within the wall-clock budget. No write is performed when this occurs.
type LockTimeoutError struct {
	Path   string        // Lock file path
	Waited time.Duration // Total elapsed wait
}

// Error implements the error interface.
func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("timed out acquiring evidence lock %s after %s", e.Path, e.Waited)
}

// NewLockTimeoutError creates a new LockTimeoutError.
func NewLockTimeoutError(path string, waited time.Duration) *LockTimeoutError {
	return &LockTimeoutError{
		Path:   path,
		Waited: waited,
	}
}

// TransientIOError reports a transient I/O failure (file descriptor
// exhaustion) that persisted through the internal retry budget.
type TransientIOError struct {
	Operation string // Operation that failed ("write")
	Path      string // File involved
	Attempts  int    // Attempts made before giving up
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *TransientIOError) Error() string {
	return fmt.Sprintf("transient i/o error [operation=%s, attempts=%d] on %s: %v",
		e.Operation, e.Attempts, e.Path, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *TransientIOError) Unwrap() error {
	return e.Cause
}

// NewTransientIOError creates a new TransientIOError.
func NewTransientIOError(operation, path string, attempts int, cause error) *TransientIOError {
	return &TransientIOError{
		Operation: operation,
		Path:      path,
		Attempts:  attempts,
		Cause:     cause,
	}
}

// StoreError reports a non-retryable storage failure (for example a
// failed rename). It is surfaced only after temp-file cleanup completes.
type StoreError struct {
	Operation string // Operation that failed ("rename", "mkdir", "scan", ...)
	Path      string // File or directory involved
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("evidence store error [operation=%s] on %s: %v", e.Operation, e.Path, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// NewStoreError creates a new StoreError.
func NewStoreError(operation, path string, cause error) *StoreError {
	return &StoreError{
		Operation: operation,
		Path:      path,
		Cause:     cause,
	}
}

// ExportError represents an error during evidence export.
type ExportError struct {
	Format      string // Export format ("json", "csv")
	RecordCount int    // Number of records being exported
	Cause       error  // Underlying error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [format=%s, record_count=%d]: %v", e.Format, e.RecordCount, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ExportError) Unwrap() error {
	return e.Cause
}

// NewExportError creates a new ExportError.
func NewExportError(format string, recordCount int, cause error) *ExportError {
	return &ExportError{
		Format:      format,
		RecordCount: recordCount,
		Cause:       cause,
	}
}

// CorruptRecordError reports an unparsable persisted file. It is never
// surfaced to callers; the scanner logs it and pruning deletes the file.
type CorruptRecordError struct {
	Path  string // File that failed to parse
	Cause error  // Underlying error, nil when a required field is missing
}

// Error implements the error interface.
func (e *CorruptRecordError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("corrupt evidence record %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("corrupt evidence record %s", e.Path)
}

// Unwrap returns the underlying cause error.
func (e *CorruptRecordError) Unwrap() error {
	return e.Cause
}

// NewCorruptRecordError creates a new CorruptRecordError.
func NewCorruptRecordError(path string, cause error) *CorruptRecordError {
	return &CorruptRecordError{
		Path:  path,
		Cause: cause,
	}
}
