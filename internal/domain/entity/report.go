package entity

import "time"

// ColumnKind tells transformers how to format a column.
type ColumnKind string

const (
	ColumnText    ColumnKind = "text"
	ColumnNumber  ColumnKind = "number"
	ColumnMoney   ColumnKind = "money"
	ColumnHours   ColumnKind = "hours"
	ColumnPercent ColumnKind = "percent"
	ColumnLink    ColumnKind = "link"
)

// Report is the output of one extractor invocation for one period.
type Report struct {
	Period *time.Time
	Label  string
	Tables []Table
}

// Table is a rectangular block of report data.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
	Totals  bool
}

// Column describes one table column. Formula is an optional row formula
// where {key} placeholders reference other columns of the same row, for
// example "{revenue}-{expenses}". Formula columns hold nil in Rows.
type Column struct {
	Key     string
	Header  string
	Kind    ColumnKind
	Formula string
}

// Numeric reports whether the column holds numbers.
func (c Column) Numeric() bool {
	switch c.Kind {
	case ColumnNumber, ColumnMoney, ColumnHours, ColumnPercent:
		return true
	}
	return false
}

// ColumnIndex returns the index of the column with key, or -1.
func (t Table) ColumnIndex(key string) int {
	for i, c := range t.Columns {
		if c.Key == key {
			return i
		}
	}
	return -1
}
