/*
Package export provides JSON and CSV exporters for persisted evidence
records.

Exporters are used by the ganymede export command and by the retention
archiver, which preserves records as JSON before pruning deletes them.

Example:

	exporter := export.NewJSONExporter(true)
	if err := exporter.Export(ctx, records, os.Stdout); err != nil {
		return err
	}
*/
package export
