package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"

	"mercator-hq/ganymede/pkg/evidence"
)

// CSVExporter exports evidence records to CSV format.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{
		IncludeHeader: includeHeader,
	}
}

// Export writes evidence records to the provided writer in CSV format.
// The opaque payload is JSON-encoded into a single column.
func (e *CSVExporter) Export(ctx context.Context, records []*evidence.Record, w io.Writer) error {
	_ = ctx

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(headerRow()); err != nil {
			return evidence.NewExportError("csv", len(records), err)
		}
	}

	for _, record := range records {
		row, err := recordToRow(record)
		if err != nil {
			return evidence.NewExportError("csv", len(records), err)
		}
		if err := writer.Write(row); err != nil {
			return evidence.NewExportError("csv", len(records), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return evidence.NewExportError("csv", len(records), err)
	}
	return nil
}

// headerRow returns the CSV header row.
func headerRow() []string {
	return []string{"id", "type", "created_at", "filename", "payload"}
}

// recordToRow converts a record to a CSV row.
func recordToRow(record *evidence.Record) ([]string, error) {
	payload, err := json.Marshal(record.Payload)
	if err != nil {
		return nil, err
	}
	return []string{
		record.ID,
		string(record.Type),
		record.CreatedAt,
		record.Filename,
		string(payload),
	}, nil
}
