package entity

import "time"

// Date range modes accepted in config.dateRange.
const (
	DateRangeAllTime   = "alltime"
	DateRangeWeek      = "week"
	DateRangeLast7Days = "last7days"
	DateRangeMonths    = "months"
	DateRangeYear      = "year"
)

// DateLayout is the ISO date layout used in configs and unique report ids.
const DateLayout = "2006-01-02"

// RunSettings is the resolved, internal representation of a RunConfig.
type RunSettings struct {
	ReportType           string
	Host                 string
	Tokens               []string
	DateRange            string
	Dates                []time.Time
	Title                string
	Currency             string
	Format               string
	CustomConfig         map[string]any
	Lookups              map[string]LookupTable
	PrecalculateFormulas bool
	Export               ExportSettings

	// Date is the period currently being extracted; nil for all-time reports
	// and outside of the extraction stage.
	Date *time.Time
}

// WithDate returns a copy of the settings bound to one period.
func (s RunSettings) WithDate(date *time.Time) RunSettings {
	s.Date = date
	return s
}

// CustomBool returns a custom config value as a bool.
func (s RunSettings) CustomBool(key string) bool {
	v, _ := s.CustomConfig[key].(bool)
	return v
}

// CustomMap returns a json custom config value as an object.
func (s RunSettings) CustomMap(key string) map[string]any {
	if v, ok := s.CustomConfig[key].(map[string]any); ok {
		return v
	}
	return nil
}

// Lookup returns the named lookup table, which may be empty.
func (s RunSettings) Lookup(name string) LookupTable {
	return s.Lookups[name]
}

// PeriodEnd returns the last day of the period that starts at start.
func (s RunSettings) PeriodEnd(start time.Time) time.Time {
	switch s.DateRange {
	case DateRangeWeek, DateRangeLast7Days:
		return start.AddDate(0, 0, 6)
	default:
		return start.AddDate(0, 1, -1)
	}
}

// ExportSettings contains the resolved output destinations.
type ExportSettings struct {
	Filesystem  string
	Email       string
	GoogleDrive *GoogleDriveExport
	S3          *S3Export
	Slack       *SlackConfig
}

// GoogleDriveExport is the Drive destination paired with the id that decides
// whether an upload updates an existing file or creates a new one.
type GoogleDriveExport struct {
	FolderID       string
	Files          map[string]string
	UniqueReportID string
}

// S3Export is the S3 destination paired with the unique report id.
type S3Export struct {
	Bucket         string
	Prefix         string
	Region         string
	UniqueReportID string
}

// LookupTable is a keyed table built from a CSV custom config entry. The
// first column is the key, the remaining columns are the values.
type LookupTable map[string][]string

// Value returns the column at index (1-based, the key is column 0) for key.
func (t LookupTable) Value(key string, index int) string {
	row, ok := t[key]
	if !ok || index < 1 || index > len(row) {
		return ""
	}
	return row[index-1]
}
