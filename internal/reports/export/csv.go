package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"farmtrack/backend/internal/reports"
)

// renderCSV writes the title and generated-on lines, a blank separator, the
// header row and one row per record. encoding/csv handles quoting, so cells
// containing delimiters, quotes or newlines round-trip through any standard
// CSV parser.
func renderCSV(res *reports.Result) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{fmt.Sprintf("%s - %s Report", systemName, res.Kind.Title())}); err != nil {
		return nil, err
	}
	if err := w.Write([]string{fmt.Sprintf("Generated on: %s", res.GeneratedAt.Format("2006-01-02 15:04:05"))}); err != nil {
		return nil, err
	}
	if err := w.Write([]string{""}); err != nil {
		return nil, err
	}

	if err := w.Write(res.Headers); err != nil {
		return nil, err
	}
	for _, row := range res.Rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
