package evidence

import (
	"time"
)

// BundleType classifies the kind of artifact an evidence bundle carries.
type BundleType string

const (
	TypeReview   BundleType = "review"
	TypeTest     BundleType = "test"
	TypeDiff     BundleType = "diff"
	TypeApproval BundleType = "approval"
	TypeNote     BundleType = "note"
)

// Valid reports whether t is one of the known bundle types.
func (t BundleType) Valid() bool {
	switch t {
	case TypeReview, TypeTest, TypeDiff, TypeApproval, TypeNote:
		return true
	}
	return false
}

// Bundle is the caller-supplied input to the store. The ID and CreatedAt
// fields are optional; the store assigns them when absent. The payload is
// opaque to the store and is persisted verbatim.
type Bundle struct {
	// ID is an optional caller-chosen identifier. When empty, the store
	// generates a fresh UUID.
	ID string `json:"id,omitempty"`

	// Type classifies the bundle (review, test, diff, approval, note).
	Type BundleType `json:"type"`

	// Payload is an opaque, JSON-serializable value.
	Payload any `json:"payload"`

	// CreatedAt is an optional ISO-8601 timestamp. Defaults to now.
	CreatedAt string `json:"created_at,omitempty"`
}

// Record is a persisted evidence bundle. Records are created exactly once
// by Save, are immutable thereafter, and are destroyed only by pruning.
type Record struct {
	ID        string     `json:"id"`
	Type      BundleType `json:"type"`
	Payload   any        `json:"payload"`
	CreatedAt string     `json:"created_at"`
	Filename  string     `json:"filename"`
}

// Config contains the retention budgets consumed by the store. It is
// owned by the caller; the store only reads it.
type Config struct {
	// Enabled enables evidence persistence. When false, Save is a no-op.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// MaxAgeDays is the age budget for pruning. Records older than this
	// are deleted. Must be >= 1.
	MaxAgeDays int `yaml:"max_age_days" json:"max_age_days"`

	// MaxBundles is the count budget for pruning. Only the newest
	// MaxBundles records survive a prune cycle. Must be >= 1.
	MaxBundles int `yaml:"max_bundles" json:"max_bundles"`

	// AutoArchive is reserved for future use and currently inert.
	AutoArchive bool `yaml:"auto_archive" json:"auto_archive"`
}

// SweepResult summarizes a single prune cycle.
type SweepResult struct {
	// Scanned is the number of entries examined.
	Scanned int

	// Corrupt is the number of unparsable entries marked for deletion.
	Corrupt int

	// ExpiredByAge is the number of records past the age budget.
	ExpiredByAge int

	// EvictedByCount is the number of records beyond the count budget.
	EvictedByCount int

	// Deleted is the number of files actually removed.
	Deleted int

	// Failed is the number of deletions that failed (best-effort).
	Failed int
}

// TimeLayout is the fixed-width UTC timestamp format used for the
// created_at field. Fixed width keeps lexicographic comparison
// equivalent to chronological comparison, so listing can sort on the
// raw string without parsing.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// FormatTime renders t in the canonical record timestamp format.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a record timestamp. It accepts the canonical layout
// as well as any RFC3339 variant, since callers may supply their own
// created_at values.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
