/*
Package metrics provides Prometheus instrumentation for the evidence
store and retention pruner.

Metrics are registered against an injectable registry so tests can use
isolated registries, and every recording method accepts a nil receiver
as a no-op so library consumers can leave instrumentation off.

Example:

	m := metrics.New(metrics.Config{}, nil)
	st := store.New(root, cfg, store.WithMetrics(m))
	http.Handle("/metrics", m.Handler())
*/
package metrics
