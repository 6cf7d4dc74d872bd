package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Column describes one trip sheet column. Weight apportions page width in
// the PDF layout; the CSV renderer ignores it.
type Column struct {
	Header string
	Weight float64
}

// TripSheet is a render-ready schedule: one row per activity, cells aligned
// with Columns.
type TripSheet struct {
	Title   string
	Columns []Column
	Rows    [][]string
}

// CSVExporter renders trip sheets as CSV.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV bytes: a header record followed by one record per row.
func (e *CSVExporter) Render(sheet TripSheet) ([]byte, error) {
	if len(sheet.Columns) == 0 {
		return nil, fmt.Errorf("trip sheet has no columns")
	}

	headers := make([]string, len(sheet.Columns))
	for i, col := range sheet.Columns {
		headers[i] = col.Header
	}

	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range sheet.Rows {
		if len(row) != len(sheet.Columns) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(sheet.Columns))
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
