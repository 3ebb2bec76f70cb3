package main

import (
	"github.com/costlocker/reports/internal/adapter/driven/export"
	"github.com/costlocker/reports/internal/adapter/driven/extract"
	"github.com/costlocker/reports/internal/application/registry"
	"github.com/costlocker/reports/internal/domain/entity"
)

// documentFormats are offered by every report type, xlsx first.
func documentFormats() []registry.Format {
	return []registry.Format{
		{Name: "xlsx", Factory: export.NewXLSXTransformer},
		{Name: "html", Factory: export.NewHTMLTransformer},
		{Name: "pdf", Factory: export.NewPDFTransformer},
	}
}

func reportDefinitions() []registry.Definition {
	return []registry.Definition{
		{
			ID:        "projects",
			Title:     "Projects {YEAR}",
			DateRange: entity.DateRangeYear,
			CustomConfig: []entity.CustomConfigEntry{
				{Key: "filter", Format: "json", Value: map[string]any{"state": "running"}},
			},
			PreviewImage: "previews/projects.png",
			Extractor:    extract.NewProjectsExtractor,
			Formats:      documentFormats(),
		},
		{
			ID:        "timesheet",
			Title:     "Timesheet {FIRST(d. m. Y)} - {LAST(d. m. Y)}",
			DateRange: entity.DateRangeWeek,
			CustomConfig: []entity.CustomConfigEntry{
				{Key: "includeInactive", Format: "bool", Value: false},
				{Key: "positions", Format: "csv", Value: ""},
			},
			PreviewImage: "previews/timesheet.png",
			Extractor:    extract.NewTimesheetExtractor,
			Formats:      documentFormats(),
		},
	}
}
