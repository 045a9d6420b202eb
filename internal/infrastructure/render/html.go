package render

import (
	"bytes"
	"html/template"

	"block_metrics/internal/app/port"
	"block_metrics/internal/domain/entity"
)

// Column is one report column and its legend entry.
type Column struct {
	Title       string
	Description string
}

// Columns lists the report columns in the order of entity.Metric.Fields.
var Columns = []Column{ //nolint:gochecknoglobals // static table
	{"Blockchain", "The network the block was read from."},
	{"Block Number", "Height of the most recent block."},
	{"Timestamp", "Time the block was produced, in UTC."},
	{"Gas Used", "Total gas consumed by all transactions in the block."},
	{"Transactions Count", "Number of transactions included in the block."},
	{"Block Size", "Size of the block in bytes."},
	{"Transaction Fees", "Sum of the fees paid by the block's transactions, in the native token."},
	{"Base Fee Per Gas", "Protocol base fee per unit of gas, in Wei."},
}

const htmlReport = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Blockchain Metrics</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 6px 10px; text-align: left; }
th { background: #f4f4f4; }
</style>
</head>
<body>
<h1>Blockchain Metrics</h1>
<table>
<thead>
<tr>{{range .Columns}}<th>{{.Title}}</th>{{end}}</tr>
</thead>
<tbody>
{{- range .Rows}}
<tr class="metric-row">{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
<h2>Legend</h2>
<dl class="legend">
{{- range .Columns}}
<dt>{{.Title}}</dt><dd>{{.Description}}</dd>
{{- end}}
</dl>
</body>
</html>
`

var htmlTemplate = template.Must(template.New("report").Parse(htmlReport))

// HTMLRenderer renders metrics as a standalone HTML page with one table row per network.
type HTMLRenderer struct{}

var _ port.Renderer = HTMLRenderer{}

// NewHTMLRenderer returns the HTML report renderer.
func NewHTMLRenderer() HTMLRenderer {
	return HTMLRenderer{}
}

// Render implements port.Renderer. Values are HTML-escaped.
func (HTMLRenderer) Render(metrics []entity.Metric) []byte {
	rows := make([][]string, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, m.Fields())
	}

	var buf bytes.Buffer
	// the template is static and only ranges over strings, so Execute cannot fail
	_ = htmlTemplate.Execute(&buf, struct {
		Columns []Column
		Rows    [][]string
	}{Columns: Columns, Rows: rows})
	return buf.Bytes()
}

// ContentType implements port.Renderer.
func (HTMLRenderer) ContentType() string {
	return "text/html; charset=utf-8"
}
