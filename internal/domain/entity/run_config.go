package entity

// RunConfig is the validated input of one pipeline run, decoded from the JSON
// (or YAML/TOML) configuration document.
type RunConfig struct {
	Costlocker   CostlockerConfig    `json:"costlocker"`
	ReportType   string              `json:"reportType"`
	Config       ReportConfig        `json:"config"`
	CustomConfig []CustomConfigEntry `json:"customConfig"`
	Export       ExportConfig        `json:"export"`
}

// CostlockerConfig holds the API host and one token per tenant.
type CostlockerConfig struct {
	Host   string   `json:"host"`
	Tokens []string `json:"tokens"`
}

// ReportConfig contains the report-level options.
type ReportConfig struct {
	Title                string   `json:"title"`
	Currency             string   `json:"currency"`
	Format               string   `json:"format"`
	DateRange            string   `json:"dateRange"`
	CustomDates          []string `json:"customDates"`
	PrecalculateFormulas *bool    `json:"precalculateFormulas,omitempty"`
}

// CustomConfigEntry is a report specific key/format/value triple.
type CustomConfigEntry struct {
	Key    string `json:"key"`
	Format string `json:"format"`
	Value  any    `json:"value"`
}

// ExportConfig lists the output destinations.
type ExportConfig struct {
	Filename    string             `json:"filename"`
	Email       string             `json:"email"`
	GoogleDrive *GoogleDriveConfig `json:"googleDrive,omitempty"`
	S3          *S3Config          `json:"s3,omitempty"`
	Slack       *SlackConfig       `json:"slack,omitempty"`
}

// GoogleDriveConfig points to the target folder. Files maps unique report ids
// to already uploaded Drive file ids.
type GoogleDriveConfig struct {
	FolderID string            `json:"folderId"`
	Files    map[string]string `json:"files,omitempty"`
}

// S3Config points to the target bucket.
type S3Config struct {
	Bucket string `json:"bucket"`
	Prefix string `json:"prefix,omitempty"`
	Region string `json:"region,omitempty"`
}

// SlackConfig points to the target channel.
type SlackConfig struct {
	Channel string `json:"channel"`
}
