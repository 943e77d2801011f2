package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"farmtrack/backend/internal/reports"
)

func sampleResult(kind reports.Kind) *reports.Result {
	return &reports.Result{
		Kind:        kind,
		GeneratedAt: time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC),
		Headers:     reports.Headers(kind),
	}
}

func TestExport_CSVRoundTrip(t *testing.T) {
	res := sampleResult(reports.KindHealth)
	res.Rows = [][]string{
		{"COW-001", "Cow", "Friesian", "lameness", "Treatment: rest, then walk", "2026-08-20", "Dr. \"Al\" Achieng"},
	}

	e := NewExporter(t.TempDir(), HTMLRenderer{})
	filename, path, err := e.Export(res, reports.FormatCSV)
	require.NoError(t, err)
	require.Equal(t, "animal_report_health_2026-09-01.csv", filename)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	// blank separator lines are skipped by the reader
	require.Len(t, records, 4)
	require.Equal(t, []string{"FarmTrack - Health Report"}, records[0])
	require.Equal(t, []string{"Generated on: 2026-09-01 10:30:00"}, records[1])
	require.Equal(t, reports.Headers(reports.KindHealth), records[2])
	require.Equal(t, res.Rows[0], records[3])
}

func TestExport_FilenameFromKindAndDate(t *testing.T) {
	res := sampleResult(reports.KindVaccination)
	e := NewExporter(t.TempDir(), HTMLRenderer{})

	filename, path, err := e.Export(res, reports.FormatCSV)
	require.NoError(t, err)
	require.Equal(t, "animal_report_vaccination_2026-09-01.csv", filename)
	require.Equal(t, filename, filepath.Base(path))

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestExport_SameDayOverwrites(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, HTMLRenderer{})

	first := sampleResult(reports.KindDeceased)
	first.Rows = [][]string{{"COW-001", "Cow", "Friesian", "2026-08-01", "disease", ""}}
	_, firstPath, err := e.Export(first, reports.FormatCSV)
	require.NoError(t, err)

	second := sampleResult(reports.KindDeceased)
	_, secondPath, err := e.Export(second, reports.FormatCSV)
	require.NoError(t, err)
	require.Equal(t, firstPath, secondPath)

	data, err := os.ReadFile(secondPath)
	require.NoError(t, err)
	require.NotContains(t, string(data), "COW-001")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestExport_UnsupportedFormat(t *testing.T) {
	e := NewExporter(t.TempDir(), HTMLRenderer{})
	_, _, err := e.Export(sampleResult(reports.KindHealth), reports.Format("xlsx"))
	require.Error(t, err)
	require.Equal(t, reports.CodeUnsupportedFormat, reports.CodeOf(err))
}

func TestHTMLRenderer_EscapesCells(t *testing.T) {
	res := sampleResult(reports.KindHealth)
	res.Rows = [][]string{
		{"<script>alert(1)</script>", "Cow", "", "bloat", "", "2026-08-20", "Dr. O'Neil & Sons"},
	}

	data, err := HTMLRenderer{}.Render(res)
	require.NoError(t, err)

	out := string(data)
	require.NotContains(t, out, "<script>alert(1)</script>")
	require.Contains(t, out, "&lt;script&gt;alert(1)&lt;/script&gt;")
	require.Contains(t, out, "Dr. O&#39;Neil &amp; Sons")
	require.Contains(t, out, "FarmTrack - Health Report")
}

func TestHTMLRenderer_EmptyRange(t *testing.T) {
	data, err := HTMLRenderer{}.Render(sampleResult(reports.KindBreeding))
	require.NoError(t, err)
	require.Contains(t, string(data), "No records in this range.")
}

func TestPDFRenderer_DocumentStructure(t *testing.T) {
	res := sampleResult(reports.KindVaccination)
	res.Rows = [][]string{
		{"GOAT-004", "Goat", "Boer", "CDT (booster)", "2026-08-01", "2026-10-01", "Dr. Otieno"},
	}

	data, err := PDFRenderer{}.Render(res)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF-1.4")))
	require.True(t, bytes.HasSuffix(data, []byte("%%EOF")))

	out := string(data)
	require.Contains(t, out, "FarmTrack - Vaccination Report")
	require.Contains(t, out, "xref")
	require.Contains(t, out, "trailer")
	// parentheses in cell text must be escaped inside the content stream
	require.Contains(t, out, `CDT \(boos`)
}

func TestExport_PDFWritesArtifact(t *testing.T) {
	e := NewExporter(t.TempDir(), PDFRenderer{})
	filename, path, err := e.Export(sampleResult(reports.KindOverview), reports.FormatPDF)
	require.NoError(t, err)
	require.Equal(t, "animal_report_overview_2026-09-01.pdf", filename)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "%PDF-1.4"))
}
