package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/costlocker/reports/internal/domain/entity"
	"github.com/costlocker/reports/internal/domain/repository"
)

const maxSheetName = 31

var invalidSheetChars = regexp.MustCompile(`[\\/?*\[\]:]`)

// XLSXTransformer builds a workbook with one sheet per report table.
type XLSXTransformer struct {
	f           *excelize.File
	defaultName string
	headerStyle int
	totalsStyle int
	tables      []*sheetTable
	used        map[string]bool
}

// NewXLSXTransformer is the transformer factory of the xlsx format.
func NewXLSXTransformer() repository.Transformer {
	f := excelize.NewFile()
	return &XLSXTransformer{f: f, defaultName: f.GetSheetName(0), used: map[string]bool{}}
}

func (x *XLSXTransformer) Extension() string {
	return "xlsx"
}

// AddReport appends the tables of one report as new sheets.
func (x *XLSXTransformer) AddReport(report entity.Report, settings entity.RunSettings) error {
	if err := x.styles(); err != nil {
		return err
	}
	for _, table := range report.Tables {
		name := report.Label
		if len(report.Tables) > 1 || name == "" {
			name = strings.TrimSpace(report.Label + " " + table.Name)
		}
		sheet := x.sheetName(name)
		if _, err := x.f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
		}
		st, err := writeTable(x.f, sheet, table, x.headerStyle, x.totalsStyle)
		if err != nil {
			return fmt.Errorf("failed to write sheet %q: %w", sheet, err)
		}
		if err := x.columnWidths(sheet, table); err != nil {
			return err
		}
		x.tables = append(x.tables, st)
	}
	return nil
}

// After drops the default sheet and sets the workbook title.
func (x *XLSXTransformer) After(settings entity.RunSettings) error {
	if len(x.tables) > 0 {
		if err := x.f.DeleteSheet(x.defaultName); err != nil {
			return err
		}
		x.f.SetActiveSheet(0)
	}
	return x.f.SetDocProps(&excelize.DocProperties{
		Title:   settings.Title,
		Creator: "Costlocker reports",
	})
}

// Save writes the workbook. With precalculate the formulas are replaced by
// their values, otherwise the spreadsheet application recalculates on open.
func (x *XLSXTransformer) Save(path string, precalculate bool) error {
	defer x.f.Close()

	if precalculate {
		if err := x.bakeFormulas(); err != nil {
			return err
		}
	} else {
		fullCalc := true
		if err := x.f.SetCalcProps(&excelize.CalcPropsOptions{FullCalcOnLoad: &fullCalc}); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating output directory '%s': %w", filepath.Dir(path), err)
	}
	if err := x.f.SaveAs(path); err != nil {
		return fmt.Errorf("error writing XLSX file: %w", err)
	}
	return nil
}

func (x *XLSXTransformer) bakeFormulas() error {
	results := make([]map[string]float64, len(x.tables))
	for i, st := range x.tables {
		values, err := st.calculate(x.f)
		if err != nil {
			return err
		}
		results[i] = values
	}
	for i, st := range x.tables {
		for cell, value := range results[i] {
			if err := x.f.SetCellValue(st.sheet, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (x *XLSXTransformer) styles() error {
	if x.headerStyle > 0 {
		return nil
	}
	header, err := x.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"282828"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	totals, err := x.f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: []excelize.Border{{Type: "top", Color: "C8C8C8", Style: 1}},
	})
	if err != nil {
		return err
	}
	x.headerStyle, x.totalsStyle = header, totals
	return nil
}

func (x *XLSXTransformer) columnWidths(sheet string, table entity.Table) error {
	for c, column := range table.Columns {
		width := float64(len(column.Header)) + 2
		for _, row := range table.Rows {
			if c < len(row) {
				if s, ok := row[c].(string); ok && float64(len(s))+2 > width {
					width = float64(len(s)) + 2
				}
			}
		}
		name, _ := excelize.ColumnNumberToName(c + 1)
		if err := x.f.SetColWidth(sheet, name, name, min(width, 60)); err != nil {
			return err
		}
	}
	return nil
}

// sheetName returns a unique, valid sheet name of at most 31 characters.
func (x *XLSXTransformer) sheetName(name string) string {
	name = strings.TrimSpace(invalidSheetChars.ReplaceAllString(name, "-"))
	if name == "" {
		name = "Report"
	}
	base := truncate(name, maxSheetName)
	candidate := base
	for i := 2; x.used[strings.ToLower(candidate)] || strings.EqualFold(candidate, x.defaultName); i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		candidate = truncate(name, maxSheetName-len(suffix)) + suffix
	}
	x.used[strings.ToLower(candidate)] = true
	return candidate
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
