package settings

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/costlocker/reports/internal/application/registry"
	"github.com/costlocker/reports/internal/domain/entity"
	"github.com/costlocker/reports/internal/shared/types"
)

//go:embed schema.json
var schemaJSON string

const defaultCurrency = "CZK"

// Resolved is a run config turned into settings plus the ETL that serves it.
type Resolved struct {
	Settings entity.RunSettings
	ETL      registry.ETL
}

// Resolver validates raw run configs and resolves them into settings.
type Resolver struct {
	registry  *registry.Registry
	dates     *DateRangeResolver
	schema    *gojsonschema.Schema
	exportDir string
}

// NewResolver compiles the embedded schema.
func NewResolver(reg *registry.Registry, dates *DateRangeResolver, exportDir string) (*Resolver, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to compile config schema: %w", err)
	}
	if dates == nil {
		dates = NewDateRangeResolver(nil)
	}
	return &Resolver{registry: reg, dates: dates, schema: schema, exportDir: exportDir}, nil
}

// Validate returns every schema violation of raw.
func (r *Resolver) Validate(raw map[string]any) (types.ValidationErrors, error) {
	result, err := r.schema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	errs := make(types.ValidationErrors, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, types.ValidationError{Field: e.Field(), Description: e.Description()})
	}
	return errs, nil
}

// Resolve validates raw and builds the run settings. Schema violations are
// returned as a list, logic and lookup failures as an error.
func (r *Resolver) Resolve(raw map[string]any) (*Resolved, types.ValidationErrors, error) {
	violations, err := r.Validate(raw)
	if err != nil || len(violations) > 0 {
		return nil, violations, err
	}

	var cfg entity.RunConfig
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to decode config: %w", err)
	}

	def, err := r.registry.Definition(cfg.ReportType)
	if err != nil {
		return nil, nil, err
	}

	mode := firstNonEmpty(cfg.Config.DateRange, def.DateRange, entity.DateRangeAllTime)
	dateRange, err := r.dates.Resolve(mode, cfg.Config.CustomDates)
	if err != nil {
		return nil, nil, err
	}

	var first, last *time.Time
	if n := len(dateRange.Dates); n > 0 {
		first, last = &dateRange.Dates[0], &dateRange.Dates[n-1]
	}
	title := ExpandTitle(firstNonEmpty(cfg.Config.Title, def.Title), first, last)

	dates := dateRange.Dates
	if mode == entity.DateRangeWeek && len(dates) > 1 {
		dates = dates[:1]
	}

	customConfig, lookups, err := normalizeCustomConfig(mergeCustomConfig(def.CustomConfig, cfg.CustomConfig))
	if err != nil {
		return nil, nil, err
	}

	export := exportSettings(cfg.Export, dateRange.UniqueID)
	etl, err := r.registry.GetETL(cfg.ReportType, cfg.Config.Format, export)
	if err != nil {
		return nil, nil, err
	}
	export.Filesystem = OutputPath(r.exportDir, firstNonEmpty(cfg.Export.Filename, title), etl.Extension)

	precalculate := true
	if cfg.Config.PrecalculateFormulas != nil {
		precalculate = *cfg.Config.PrecalculateFormulas
	}

	return &Resolved{
		Settings: entity.RunSettings{
			ReportType:           cfg.ReportType,
			Host:                 cfg.Costlocker.Host,
			Tokens:               cfg.Costlocker.Tokens,
			DateRange:            dateRange.Mode,
			Dates:                dates,
			Title:                title,
			Currency:             firstNonEmpty(cfg.Config.Currency, defaultCurrency),
			Format:               etl.Format,
			CustomConfig:         customConfig,
			Lookups:              lookups,
			PrecalculateFormulas: precalculate,
			Export:               export,
		},
		ETL: etl,
	}, nil, nil
}

func exportSettings(cfg entity.ExportConfig, uniqueID string) entity.ExportSettings {
	export := entity.ExportSettings{Email: cfg.Email}
	if cfg.GoogleDrive != nil && cfg.GoogleDrive.FolderID != "" {
		export.GoogleDrive = &entity.GoogleDriveExport{
			FolderID:       cfg.GoogleDrive.FolderID,
			Files:          cfg.GoogleDrive.Files,
			UniqueReportID: uniqueID,
		}
	}
	if cfg.S3 != nil && cfg.S3.Bucket != "" {
		export.S3 = &entity.S3Export{
			Bucket:         cfg.S3.Bucket,
			Prefix:         cfg.S3.Prefix,
			Region:         cfg.S3.Region,
			UniqueReportID: uniqueID,
		}
	}
	if cfg.Slack != nil && cfg.Slack.Channel != "" {
		export.Slack = cfg.Slack
	}
	return export
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
