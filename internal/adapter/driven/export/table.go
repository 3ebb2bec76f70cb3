package export

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/costlocker/reports/internal/domain/entity"
)

var formulaPlaceholder = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// sheetTable is a table written to a sheet, remembering where the formulas
// ended up.
type sheetTable struct {
	sheet     string
	firstRow  int
	lastRow   int
	totalsRow int
	formulas  []string
}

// writeTable writes header, rows and an optional totals row starting at A1.
func writeTable(f *excelize.File, sheet string, table entity.Table, headerStyle, totalsStyle int) (*sheetTable, error) {
	st := &sheetTable{sheet: sheet, firstRow: 2, lastRow: len(table.Rows) + 1}

	for c, column := range table.Columns {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(sheet, cell, column.Header); err != nil {
			return nil, err
		}
	}
	if headerStyle > 0 && len(table.Columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(table.Columns), 1)
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return nil, err
		}
	}

	for r, row := range table.Rows {
		rowNumber := r + 2
		for c, column := range table.Columns {
			cell, _ := excelize.CoordinatesToCellName(c+1, rowNumber)
			if column.Formula != "" {
				formula, err := expandFormula(column.Formula, table, rowNumber)
				if err != nil {
					return nil, err
				}
				if err := f.SetCellFormula(sheet, cell, formula); err != nil {
					return nil, err
				}
				st.formulas = append(st.formulas, cell)
				continue
			}
			if c >= len(row) || row[c] == nil {
				continue
			}
			if err := f.SetCellValue(sheet, cell, row[c]); err != nil {
				return nil, err
			}
			if link, ok := row[c].(string); ok && column.Kind == entity.ColumnLink && link != "" {
				if err := f.SetCellHyperLink(sheet, cell, link, "External"); err != nil {
					return nil, err
				}
			}
		}
	}

	if table.Totals && len(table.Columns) > 0 {
		st.totalsRow = len(table.Rows) + 2
		first, _ := excelize.CoordinatesToCellName(1, st.totalsRow)
		if err := f.SetCellValue(sheet, first, "Total"); err != nil {
			return nil, err
		}
		for c, column := range table.Columns {
			if c == 0 || !column.Numeric() {
				continue
			}
			name, _ := excelize.ColumnNumberToName(c + 1)
			cell, _ := excelize.CoordinatesToCellName(c+1, st.totalsRow)
			formula := "0"
			if len(table.Rows) > 0 {
				formula = fmt.Sprintf("SUM(%s%d:%s%d)", name, st.firstRow, name, st.lastRow)
			}
			if err := f.SetCellFormula(sheet, cell, formula); err != nil {
				return nil, err
			}
			st.formulas = append(st.formulas, cell)
		}
		if totalsStyle > 0 {
			last, _ := excelize.CoordinatesToCellName(len(table.Columns), st.totalsRow)
			if err := f.SetCellStyle(sheet, first, last, totalsStyle); err != nil {
				return nil, err
			}
		}
	}
	return st, nil
}

// expandFormula replaces {key} placeholders with cell references of row.
func expandFormula(formula string, table entity.Table, row int) (string, error) {
	var missing string
	expanded := formulaPlaceholder.ReplaceAllStringFunc(formula, func(token string) string {
		key := formulaPlaceholder.FindStringSubmatch(token)[1]
		index := table.ColumnIndex(key)
		if index < 0 {
			missing = key
			return token
		}
		cell, _ := excelize.CoordinatesToCellName(index+1, row)
		return cell
	})
	if missing != "" {
		return "", fmt.Errorf("formula %q references unknown column %q", formula, missing)
	}
	return expanded, nil
}

// calculate evaluates every formula cell of the table.
func (st *sheetTable) calculate(f *excelize.File) (map[string]float64, error) {
	values := make(map[string]float64, len(st.formulas))
	for _, cell := range st.formulas {
		raw, err := f.CalcCellValue(st.sheet, cell, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to calculate %s!%s: %w", st.sheet, cell, err)
		}
		if raw == "" {
			values[cell] = 0
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("formula in %s!%s is not numeric: %q", st.sheet, cell, raw)
		}
		values[cell] = v
	}
	return values, nil
}

// evaluatedTable holds a table with formula and totals values filled in.
type evaluatedTable struct {
	entity.Table
	TotalValues []any
}

// evaluate computes formula columns and totals of a table in a scratch
// workbook.
func evaluate(table entity.Table) (evaluatedTable, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	st, err := writeTable(f, sheet, table, 0, 0)
	if err != nil {
		return evaluatedTable{}, err
	}
	values, err := st.calculate(f)
	if err != nil {
		return evaluatedTable{}, err
	}

	out := evaluatedTable{Table: table}
	out.Rows = make([][]any, len(table.Rows))
	for r, row := range table.Rows {
		filled := make([]any, len(table.Columns))
		copy(filled, row)
		for c, column := range table.Columns {
			if column.Formula == "" {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			filled[c] = values[cell]
		}
		out.Rows[r] = filled
	}

	if st.totalsRow > 0 {
		out.TotalValues = make([]any, len(table.Columns))
		out.TotalValues[0] = "Total"
		for c, column := range table.Columns {
			if c == 0 || !column.Numeric() {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, st.totalsRow)
			out.TotalValues[c] = values[cell]
		}
	}
	return out, nil
}
