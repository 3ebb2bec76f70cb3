package export

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/costlocker/reports/internal/domain/entity"
	"github.com/costlocker/reports/internal/domain/repository"
)

func projectsTable() entity.Table {
	return entity.Table{
		Name: "Projects",
		Columns: []entity.Column{
			{Key: "project", Header: "Project", Kind: entity.ColumnText},
			{Key: "url", Header: "URL", Kind: entity.ColumnLink},
			{Key: "revenue", Header: "Revenue", Kind: entity.ColumnMoney},
			{Key: "expenses", Header: "Expenses", Kind: entity.ColumnMoney},
			{Key: "profit", Header: "Profit", Kind: entity.ColumnMoney, Formula: "{revenue}-{expenses}"},
		},
		Rows: [][]any{
			{"Website", "https://costlocker.test/projects/detail/1/overview", 1000.0, 200.0, nil},
			{"App", "", 1500.5, 50.0, nil},
		},
		Totals: true,
	}
}

func report(label string, tables ...entity.Table) entity.Report {
	return entity.Report{Label: label, Tables: tables}
}

func buildWorkbook(t *testing.T, precalculate bool, reports ...entity.Report) *excelize.File {
	t.Helper()

	transformer, ok := NewXLSXTransformer().(repository.SpreadsheetTransformer)
	require.True(t, ok)
	assert.Equal(t, "xlsx", transformer.Extension())

	settings := entity.RunSettings{Title: "Projects"}
	for _, r := range reports {
		require.NoError(t, transformer.AddReport(r, settings))
	}
	require.NoError(t, transformer.After(settings))

	path := filepath.Join(t.TempDir(), "nested", "projects.xlsx")
	require.NoError(t, transformer.Save(path, precalculate))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestXLSXPrecalculatedFormulas(t *testing.T) {
	f := buildWorkbook(t, true, report("February 2019", projectsTable()))

	assert.Equal(t, []string{"February 2019"}, f.GetSheetList())

	header, err := f.GetCellValue("February 2019", "E1")
	require.NoError(t, err)
	assert.Equal(t, "Profit", header)

	for cell, want := range map[string]string{"E2": "800", "E3": "1450.5", "C4": "2500.5", "E4": "2250.5", "A4": "Total"} {
		value, err := f.GetCellValue("February 2019", cell, excelize.Options{RawCellValue: true})
		require.NoError(t, err)
		assert.Equal(t, want, value, cell)

		formula, err := f.GetCellFormula("February 2019", cell)
		require.NoError(t, err)
		assert.Empty(t, formula, cell)
	}
}

func TestXLSXKeepsFormulasWithoutPrecalculation(t *testing.T) {
	f := buildWorkbook(t, false, report("February 2019", projectsTable()))

	formula, err := f.GetCellFormula("February 2019", "E2")
	require.NoError(t, err)
	assert.Equal(t, "C2-D2", formula)

	formula, err = f.GetCellFormula("February 2019", "C4")
	require.NoError(t, err)
	assert.Equal(t, "SUM(C2:C3)", formula)

	props, err := f.GetCalcProps()
	require.NoError(t, err)
	require.NotNil(t, props.FullCalcOnLoad)
	assert.True(t, *props.FullCalcOnLoad)
}

func TestXLSXSheetNames(t *testing.T) {
	f := buildWorkbook(t, true,
		report("A very long period label that exceeds the limit", projectsTable()),
		report("A very long period label that exceeds the limit", projectsTable()),
		report("Q1/2019", projectsTable(), projectsTable()),
	)

	assert.Equal(t, []string{
		"A very long period label that e",
		"A very long period label th (2)",
		"Q1-2019 Projects",
		"Q1-2019 Projects (2)",
	}, f.GetSheetList())
}

func TestXLSXWithoutReports(t *testing.T) {
	f := buildWorkbook(t, true)
	assert.Len(t, f.GetSheetList(), 1)
}

func TestXLSXUnknownFormulaColumn(t *testing.T) {
	table := projectsTable()
	table.Columns[4].Formula = "{revenue}-{costs}"

	transformer := NewXLSXTransformer().(repository.SpreadsheetTransformer)
	err := transformer.AddReport(report("February 2019", table), entity.RunSettings{})
	require.ErrorContains(t, err, `unknown column "costs"`)
}

func TestHTMLRender(t *testing.T) {
	transformer, ok := NewHTMLTransformer().(repository.DocumentTransformer)
	require.True(t, ok)
	transformer.(*HTMLTransformer).now = func() time.Time { return time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC) }

	out, err := transformer.Render(
		[]entity.Report{report("January 2019", projectsTable()), report("February <2019>", projectsTable())},
		entity.RunSettings{Title: "Projects & budgets"},
	)
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "<title>Projects &amp; budgets</title>")
	assert.Contains(t, html, "<h2>January 2019</h2>")
	assert.Contains(t, html, "<h2>February &lt;2019&gt;</h2>")
	assert.Contains(t, html, `<a href="https://costlocker.test/projects/detail/1/overview">`)
	assert.Contains(t, html, `<td class="num">800.00</td>`)
	assert.Contains(t, html, `<td class="num">1 450.50</td>`)
	assert.Contains(t, html, `<td class="num">2 250.50</td>`)
	assert.Contains(t, html, "Generated by Costlocker reports | 2019-03-01")
	assert.Less(t, strings.Index(html, "January 2019"), strings.Index(html, "February"))
}

func TestPDFRender(t *testing.T) {
	transformer, ok := NewPDFTransformer().(repository.DocumentTransformer)
	require.True(t, ok)
	assert.Equal(t, "pdf", transformer.Extension())

	out, err := transformer.Render([]entity.Report{report("January 2019", projectsTable())}, entity.RunSettings{Title: "Projects"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF-"))
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		kind  entity.ColumnKind
		value any
		want  string
	}{
		{entity.ColumnMoney, 1234567.5, "1 234 567.50"},
		{entity.ColumnMoney, -1234.0, "-1 234.00"},
		{entity.ColumnMoney, 12.0, "12.00"},
		{entity.ColumnHours, 1.5, "1.50"},
		{entity.ColumnPercent, 0.256, "25.6 %"},
		{entity.ColumnNumber, 3, "3"},
		{entity.ColumnText, "Acme", "Acme"},
		{entity.ColumnText, nil, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatValue(entity.Column{Kind: tt.kind}, tt.value))
	}
}
