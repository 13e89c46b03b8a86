// Ganymede is a shared evidence retention store for automation
// pipelines.
//
// It persists small JSON evidence bundles (reviews, test results,
// diffs, approvals, notes) in a shared local directory with crash-safe
// writes, cross-process locking, and age/count retention pruning.
//
// Usage:
//
//	# Save a bundle from an inline payload
//	ganymede save --type review --payload '{"verdict":"approved"}'
//
//	# List persisted records, newest first
//	ganymede list
//
//	# Prune expired and excess records now
//	ganymede prune
//
//	# Export records as JSON or CSV
//	ganymede export --format csv --output evidence.csv
//
//	# Run as a daemon with scheduled pruning and metrics
//	ganymede run --config /path/to/ganymede.yaml
//
// For complete documentation, see: https://github.com/mercator-hq/ganymede
package main

func main() {
	Execute()
}
