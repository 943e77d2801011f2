package export

import (
	"bytes"
	"fmt"
	"strings"

	"farmtrack/backend/internal/reports"
)

// PDFRenderer writes a minimal single-page fixed-layout PDF (A4, built-in
// Helvetica) containing the report table. It exists so the pdf format does
// not depend on an external conversion step; HTMLRenderer remains a drop-in
// alternative behind DocumentRenderer.
type PDFRenderer struct{}

func (PDFRenderer) Render(res *reports.Result) ([]byte, error) {
	return buildTablePDF(res), nil
}

func buildTablePDF(res *reports.Result) []byte {
	var stream bytes.Buffer

	// Page background and header band.
	stream.WriteString("0.97 0.97 0.95 rg 0 0 595 842 re f\n")
	stream.WriteString("0.18 0.36 0.23 rg 0 770 595 72 re f\n")
	stream.WriteString("0.14 0.29 0.18 rg 0 758 595 12 re f\n")

	title := fmt.Sprintf("%s - %s Report", systemName, res.Kind.Title())
	stream.WriteString("1 1 1 rg BT /F2 20 Tf 48 800 Td (")
	stream.WriteString(pdfEscape(title))
	stream.WriteString(") Tj ET\n")
	stream.WriteString("0.90 0.94 0.90 rg BT /F1 10 Tf 48 782 Td (")
	stream.WriteString(pdfEscape("Generated on: " + res.GeneratedAt.Format("2006-01-02 15:04:05")))
	stream.WriteString(") Tj ET\n")

	headers := res.Headers
	if len(headers) == 0 {
		headers = []string{"Details"}
	}
	colWidth := 496 / len(headers)

	headerY := 724
	stream.WriteString(fmt.Sprintf("0.88 0.90 0.87 rg 50 %d 496 20 re f\n", headerY))
	x := 54
	for _, h := range headers {
		maxChars := maxInt(6, (colWidth-8)/5)
		stream.WriteString("0.16 0.22 0.17 rg ")
		stream.WriteString(fmt.Sprintf("BT /F2 8 Tf %d %d Td (%s) Tj ET\n", x, headerY+6, pdfEscape(shorten(h, maxChars))))
		x += colWidth
	}

	y := headerY - 18
	rowH := 16
	shown := 0
	for i, row := range res.Rows {
		if y < 60 {
			break
		}
		if i%2 == 1 {
			stream.WriteString(fmt.Sprintf("0.93 0.94 0.92 rg 50 %d 496 %d re f\n", y-4, rowH))
		}
		x = 54
		for j, cell := range row {
			if j >= len(headers) {
				break
			}
			maxChars := maxInt(6, (colWidth-8)/4)
			stream.WriteString("0.24 0.26 0.24 rg ")
			stream.WriteString(fmt.Sprintf("BT /F1 7 Tf %d %d Td (%s) Tj ET\n", x, y, pdfEscape(shorten(cell, maxChars))))
			x += colWidth
		}
		y -= rowH
		shown++
	}
	if shown == 0 {
		stream.WriteString(fmt.Sprintf("0.30 0.32 0.30 rg BT /F1 9 Tf 54 %d Td (No records in this range.) Tj ET\n", y))
	}
	if remaining := len(res.Rows) - shown; remaining > 0 {
		stream.WriteString(fmt.Sprintf("0.30 0.32 0.30 rg BT /F1 8 Tf 54 46 Td (%d additional records not shown.) Tj ET\n", remaining))
	}

	stream.WriteString("0.18 0.36 0.23 rg 0 0 595 26 re f\n")
	stream.WriteString("0.92 0.95 0.92 rg BT /F1 8 Tf 48 10 Td (Generated by FarmTrack Reports) Tj ET\n")

	streamStr := stream.String()
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Contents 4 0 R /Resources << /Font << /F1 5 0 R /F2 6 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(streamStr), streamStr),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica-Bold >>",
	}

	var body bytes.Buffer
	offsets := make([]int, len(objects)+1)
	body.WriteString("%PDF-1.4\n")
	for i, obj := range objects {
		offsets[i+1] = body.Len()
		body.WriteString(fmt.Sprintf("%d 0 obj\n%s\nendobj\n", i+1, obj))
	}

	xrefStart := body.Len()
	body.WriteString(fmt.Sprintf("xref\n0 %d\n", len(objects)+1))
	body.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		body.WriteString(fmt.Sprintf("%010d 00000 n \n", offsets[i]))
	}
	body.WriteString("trailer\n")
	body.WriteString(fmt.Sprintf("<< /Size %d /Root 1 0 R >>\n", len(objects)+1))
	body.WriteString("startxref\n")
	body.WriteString(fmt.Sprintf("%d\n", xrefStart))
	body.WriteString("%%EOF")
	return body.Bytes()
}

func pdfEscape(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "(", "\\(")
	s = strings.ReplaceAll(s, ")", "\\)")
	return s
}

func shorten(s string, max int) string {
	v := strings.TrimSpace(s)
	if max <= 3 || len(v) <= max {
		return v
	}
	return v[:max-3] + "..."
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
