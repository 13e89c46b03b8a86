/*
Package config loads and validates the ganymede configuration.

Configuration is YAML with GANYMEDE_* environment variable overrides:

	evidence:
	  root: evidence
	  enabled: true
	  max_age_days: 14
	  max_bundles: 500
	retention:
	  prune_schedule: "0 3 * * *"
	  archive_before_delete: false
	logging:
	  level: info
	  format: text
	metrics:
	  enabled: true
	  listen_address: 127.0.0.1:9464

The Watcher reloads the file on change (debounced) so the run command
can apply new retention budgets without a restart.
*/
package config
