/*
Package store implements the durable filesystem layer of the evidence
retention store.

Layout under the evidence root:

	evidence/<id>.json            one persisted record per bundle
	evidence/.tmp/<id>.<rand>.json.tmp   ephemeral write staging
	evidence/.lock                ephemeral lock marker {pid, createdAt}

Coordination uses only the filesystem: saves and sweeps serialize under
an exclusive-create lock file with stale-lock reclamation, writes go
through a temp-file-then-rename protocol so readers never observe a
partial record, and listing tolerates corruption from crashed writers.

All durable state lives in the directory tree. Locking assumes a single
host; see lockManager for the caveat on network filesystems.
*/
package store
