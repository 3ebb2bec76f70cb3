package export

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/costlocker/reports/internal/domain/entity"
	"github.com/costlocker/reports/internal/domain/repository"
)

var htmlReport = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Arial, sans-serif; color: #323232; margin: 2em; }
h1 { background: #282828; color: #fff; padding: .4em .6em; font-size: 1.4em; }
h2 { border-bottom: 1px solid #c8c8c8; font-size: 1.1em; padding-bottom: .2em; }
table { border-collapse: collapse; margin-bottom: 2em; }
th { background: #f0f0f0; text-align: left; }
th, td { padding: .3em .8em; border-bottom: 1px solid #e6e6e6; }
td.num { text-align: right; }
tr.total td { font-weight: bold; border-top: 1px solid #c8c8c8; }
footer { color: #808080; font-size: .8em; font-style: italic; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Sections}}
<h2>{{.Heading}}</h2>
<table>
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}{{if .Link}}<td><a href="{{.Link}}">{{.Text}}</a></td>{{else}}<td{{if .Numeric}} class="num"{{end}}>{{.Text}}</td>{{end}}{{end}}</tr>
{{end}}{{if .Totals}}<tr class="total">{{range .Totals}}<td{{if .Numeric}} class="num"{{end}}>{{.Text}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
{{end}}
<footer>Generated by Costlocker reports | {{.Generated}}</footer>
</body>
</html>
`))

type htmlCell struct {
	Text    string
	Link    string
	Numeric bool
}

type htmlSection struct {
	Heading string
	Headers []string
	Rows    [][]htmlCell
	Totals  []htmlCell
}

// HTMLTransformer renders all reports into one HTML page.
type HTMLTransformer struct {
	now func() time.Time
}

// NewHTMLTransformer is the transformer factory of the html format.
func NewHTMLTransformer() repository.Transformer {
	return &HTMLTransformer{now: time.Now}
}

func (h *HTMLTransformer) Extension() string {
	return "html"
}

func (h *HTMLTransformer) Render(reports []entity.Report, settings entity.RunSettings) ([]byte, error) {
	sections, err := documentSections(reports)
	if err != nil {
		return nil, err
	}

	data := struct {
		Title     string
		Generated string
		Sections  []htmlSection
	}{Title: settings.Title, Generated: h.now().Format("2006-01-02")}

	for _, s := range sections {
		section := htmlSection{Heading: s.heading}
		for _, column := range s.table.Columns {
			section.Headers = append(section.Headers, column.Header)
		}
		for _, row := range s.table.Rows {
			section.Rows = append(section.Rows, htmlCells(s.table.Columns, row))
		}
		if s.table.TotalValues != nil {
			section.Totals = htmlCells(s.table.Columns, s.table.TotalValues)
		}
		data.Sections = append(data.Sections, section)
	}

	var buf bytes.Buffer
	if err := htmlReport.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("error rendering HTML report: %w", err)
	}
	return buf.Bytes(), nil
}

func htmlCells(columns []entity.Column, row []any) []htmlCell {
	cells := make([]htmlCell, len(columns))
	for c, column := range columns {
		var value any
		if c < len(row) {
			value = row[c]
		}
		cell := htmlCell{Text: formatValue(column, value), Numeric: column.Numeric()}
		if column.Kind == entity.ColumnLink && cell.Text != "" {
			cell.Link = cell.Text
		}
		cells[c] = cell
	}
	return cells
}

type documentSection struct {
	heading string
	table   evaluatedTable
}

// documentSections evaluates every table of every report in report order.
func documentSections(reports []entity.Report) ([]documentSection, error) {
	var sections []documentSection
	for _, report := range reports {
		for _, table := range report.Tables {
			evaluated, err := evaluate(table)
			if err != nil {
				return nil, fmt.Errorf("failed to evaluate table %q: %w", table.Name, err)
			}
			heading := report.Label
			if len(report.Tables) > 1 {
				heading = fmt.Sprintf("%s: %s", report.Label, table.Name)
			}
			sections = append(sections, documentSection{heading: heading, table: evaluated})
		}
	}
	return sections, nil
}
