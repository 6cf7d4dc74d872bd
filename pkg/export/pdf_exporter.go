package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const pageWidth = 277.0 // A4 landscape minus margins

// PDFExporter renders trip sheets as printable PDF documents for drivers
// and dispatchers.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render lays the trip sheet out as a weighted-column table, repeating the
// header on every page.
func (e *PDFExporter) Render(sheet TripSheet) ([]byte, error) {
	if len(sheet.Columns) == 0 {
		return nil, fmt.Errorf("trip sheet has no columns")
	}

	widths := columnWidths(sheet.Columns)

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)

	writeHeader := func() {
		if sheet.Title != "" {
			pdf.SetFont("Arial", "B", 14)
			pdf.CellFormat(0, 10, sheet.Title, "", 1, "C", false, 0, "")
			pdf.Ln(3)
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for i, col := range sheet.Columns {
			pdf.CellFormat(widths[i], 8, col.Header, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}

	pdf.SetHeaderFunc(func() {})
	pdf.AddPage()
	writeHeader()

	for _, row := range sheet.Rows {
		if pdf.GetY() > 185 {
			pdf.AddPage()
			writeHeader()
		}
		for i := range sheet.Columns {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			pdf.CellFormat(widths[i], 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(cols []Column) []float64 {
	var totalWeight float64
	for _, col := range cols {
		if col.Weight > 0 {
			totalWeight += col.Weight
		} else {
			totalWeight += 1
		}
	}
	widths := make([]float64, len(cols))
	for i, col := range cols {
		weight := col.Weight
		if weight <= 0 {
			weight = 1
		}
		widths[i] = pageWidth * weight / totalWeight
	}
	return widths
}
