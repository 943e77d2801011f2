// Package export turns aggregated report results into file artifacts in a
// flat exports directory. Filenames are derived from report kind and the
// generation date; re-exporting the same kind on the same day overwrites
// the previous artifact (last writer wins).
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"farmtrack/backend/internal/reports"
)

const systemName = "FarmTrack"

// DocumentRenderer produces the printable artifact bytes for the pdf
// format. Implementations may emit styled HTML destined for a downstream
// HTML-to-PDF step, or a real fixed-layout document; swapping one for the
// other never touches the aggregators.
type DocumentRenderer interface {
	Render(res *reports.Result) ([]byte, error)
}

type Exporter struct {
	dir string
	doc DocumentRenderer
}

func NewExporter(dir string, doc DocumentRenderer) *Exporter {
	return &Exporter{dir: dir, doc: doc}
}

// Export renders the result in the requested format and persists it,
// returning the artifact's filename and path. A failed write never leaves
// a partial file behind.
func (e *Exporter) Export(res *reports.Result, format reports.Format) (string, string, error) {
	var data []byte
	var err error
	switch format {
	case reports.FormatCSV:
		data, err = renderCSV(res)
	case reports.FormatPDF:
		data, err = e.doc.Render(res)
	default:
		return "", "", reports.NewError(reports.CodeUnsupportedFormat, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return "", "", reports.WrapError(reports.CodeExportIO, "report rendering failed", err)
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", "", reports.WrapError(reports.CodeExportIO, "could not create exports directory", err)
	}

	filename := fmt.Sprintf("animal_report_%s_%s.%s", res.Kind, res.GeneratedAt.Format("2006-01-02"), format)
	path := filepath.Join(e.dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		_ = os.Remove(path)
		return "", "", reports.WrapError(reports.CodeExportIO, "could not write export file", err)
	}
	return filename, path, nil
}
