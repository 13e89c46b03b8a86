/*
Package retention schedules pruning of the evidence store.

The Pruner coalesces concurrent prune requests into single-flight
cycles: a request arriving while a cycle runs marks it pending, and the
cycle reruns when the run completes, spaced by a minimum inter-run
interval and bounded by a rerun cap. The state machine is IDLE to
RUNNING on request, back to IDLE once no rerun is owed.

The Scheduler triggers cycles automatically on a cron expression, and
FileArchiver optionally preserves records in dated JSON archives before
the sweep deletes them.

Prune failures are logged and exported as metrics; they are never
surfaced to the requesting caller.
*/
package retention
