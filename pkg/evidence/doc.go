/*
Package evidence defines the core types and errors for the Ganymede
evidence retention store.

Evidence bundles are small JSON documents (review verdicts, test results,
diffs, approvals, notes) produced by orchestration workflows. The store
persists each bundle as one immutable JSON file in a shared directory,
using only the filesystem as coordination medium.

Subpackages:

  - store: the durable filesystem store (atomic writes, advisory
    locking, tolerant scanning, prune sweeps)
  - retention: single-flight prune scheduling, cron-based automatic
    pruning, and archive-before-delete
  - export: JSON and CSV exporters over persisted records

Types in this package are shared across the subpackages. Error types
follow the taxonomy the store guarantees to callers: ValidationError and
LockTimeoutError abort a save, TransientIOError is retried internally
and surfaced only after the retry budget is exhausted, StoreError is
surfaced after guaranteed temp-file cleanup, and CorruptRecordError is
internal (logged and resolved by pruning, never raised).
*/
package evidence
