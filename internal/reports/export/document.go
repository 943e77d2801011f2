package export

import (
	"fmt"
	"html"
	"strings"

	"farmtrack/backend/internal/reports"
)

// HTMLRenderer emits a self-contained styled HTML document intended for a
// downstream print dialog or headless HTML-to-PDF conversion.
type HTMLRenderer struct{}

func (HTMLRenderer) Render(res *reports.Result) ([]byte, error) {
	title := fmt.Sprintf("%s - %s Report", systemName, res.Kind.Title())

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>" + html.EscapeString(title) + "</title>\n")
	b.WriteString(`<style>
body { font-family: Arial, Helvetica, sans-serif; color: #2e2e2e; margin: 32px; }
h1 { color: #2e5d3b; border-bottom: 3px solid #2e5d3b; padding-bottom: 8px; }
.generated { color: #6b6b6b; font-size: 13px; margin-bottom: 20px; }
table { border-collapse: collapse; width: 100%; font-size: 13px; }
th { background: #2e5d3b; color: #fff; text-align: left; padding: 8px 10px; }
td { border-bottom: 1px solid #d8d8d8; padding: 7px 10px; }
tr:nth-child(even) td { background: #f4f6f4; }
@media print { body { margin: 12mm; } }
</style>
`)
	b.WriteString("</head>\n<body>\n")
	b.WriteString("<h1>" + html.EscapeString(title) + "</h1>\n")
	b.WriteString(fmt.Sprintf("<p class=\"generated\">Generated on: %s</p>\n", res.GeneratedAt.Format("2006-01-02 15:04:05")))

	b.WriteString("<table>\n<thead>\n<tr>")
	for _, h := range res.Headers {
		b.WriteString("<th>" + html.EscapeString(h) + "</th>")
	}
	b.WriteString("</tr>\n</thead>\n<tbody>\n")
	if len(res.Rows) == 0 {
		b.WriteString(fmt.Sprintf("<tr><td colspan=\"%d\">No records in this range.</td></tr>\n", len(res.Headers)))
	}
	for _, row := range res.Rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			b.WriteString("<td>" + html.EscapeString(cell) + "</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n</body>\n</html>\n")

	return []byte(b.String()), nil
}
