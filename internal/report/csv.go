// Package report renders the reservation report as CSV or PDF and archives
// rendered reports to object storage.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/ICMVRD/sb1-hdboxt/internal/domain"
)

// Content types of the rendered formats.
const (
	ContentTypeCSV = "text/csv"
	ContentTypePDF = "application/pdf"
)

// csvHeaders defines the column names written as the first row of the CSV.
var csvHeaders = []string{"time", "name", "created_at"}

// CSV encodes rep.Rows as CSV, one reservation per line, in report order.
func CSV(rep domain.Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("report.CSV: %w", err)
	}
	for _, r := range rep.Rows {
		if err := w.Write([]string{r.Time, r.Name, r.CreatedAt.UTC().Format(time.RFC3339)}); err != nil {
			return nil, fmt.Errorf("report.CSV: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("report.CSV: %w", err)
	}
	return buf.Bytes(), nil
}
