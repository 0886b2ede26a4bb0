package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/ICMVRD/sb1-hdboxt/internal/domain"
)

// Layout in millimetres on A4 portrait.
const (
	marginX     = 20.0
	marginTop   = 20.0
	marginBot   = 20.0
	rowHeight   = 8.0
	timeColumn  = 50.0
	nameColumn  = 120.0
	footerDepth = -15.0
)

// PDF renders rep as a paginated A4 document: a title built from the display
// settings, the generation date, then a two-column table of slot and name
// with a filled header row, alternating row shading and a "Page i of n"
// footer. The header row is repeated on every page.
func PDF(rep domain.Report) ([]byte, error) {
	return renderPDF(rep, true)
}

func renderPDF(rep domain.Report, compress bool) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetMargins(marginX, marginTop, marginX)
	pdf.SetAutoPageBreak(false, marginBot)
	pdf.AliasNbPages("")

	// The core fonts are cp1252; names with accents need translating.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(footerDepth)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, tr(rep.Settings.Title()), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, "Reservation schedule", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 6, "Generated "+rep.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	tableHeader(pdf)

	_, pageHeight := pdf.GetPageSize()
	pdf.SetFont("Helvetica", "", 10)
	for i, r := range rep.Rows {
		if pdf.GetY()+rowHeight > pageHeight-marginBot {
			closeTable(pdf)
			pdf.AddPage()
			tableHeader(pdf)
			pdf.SetFont("Helvetica", "", 10)
		}

		fill := i%2 == 1
		if fill {
			pdf.SetFillColor(245, 245, 245)
		}
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(timeColumn, rowHeight, r.Time, "LR", 0, "L", fill, 0, "")
		pdf.CellFormat(nameColumn, rowHeight, tr(r.Name), "LR", 1, "L", fill, 0, "")
	}
	closeTable(pdf)

	if len(rep.Rows) == 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, rowHeight, "No reservations.", "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report.PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func tableHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(220, 38, 38)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(timeColumn, rowHeight, "Time", "1", 0, "C", true, 0, "")
	pdf.CellFormat(nameColumn, rowHeight, "Name", "1", 1, "C", true, 0, "")
}

// closeTable draws the bottom rule under the rows on the current page.
func closeTable(pdf *fpdf.Fpdf) {
	pdf.CellFormat(timeColumn+nameColumn, 0, "", "T", 1, "", false, 0, "")
}
