package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/costlocker/reports/internal/application/registry"
	"github.com/costlocker/reports/internal/domain/entity"
	"github.com/costlocker/reports/internal/domain/repository"
	"github.com/costlocker/reports/internal/shared/types"
)

type fakeTransformer struct{ ext string }

func (f fakeTransformer) Extension() string { return f.ext }

type fakeExtractor struct{}

func (fakeExtractor) Extract(context.Context, entity.RunSettings) (entity.Report, error) {
	return entity.Report{}, nil
}

type fakeLoader struct {
	name    string
	enabled func(entity.ExportSettings) bool
}

func (l fakeLoader) Name() string                             { return l.name }
func (l fakeLoader) Enabled(export entity.ExportSettings) bool { return l.enabled(export) }
func (l fakeLoader) Load(context.Context, string, string, entity.ExportSettings) (any, error) {
	return nil, nil
}

func newTestResolver(t *testing.T, now string) *Resolver {
	t.Helper()

	reg := registry.New(
		fakeLoader{name: "email", enabled: func(e entity.ExportSettings) bool { return e.Email != "" }},
		fakeLoader{name: "googleDrive", enabled: func(e entity.ExportSettings) bool { return e.GoogleDrive != nil }},
		fakeLoader{name: "slack", enabled: func(e entity.ExportSettings) bool { return e.Slack != nil }},
	)
	reg.MustRegister(registry.Definition{
		ID:        "projects",
		Title:     "Projects {FIRST(F Y)}",
		DateRange: entity.DateRangeMonths,
		CustomConfig: []entity.CustomConfigEntry{
			{Key: "filter", Format: FormatJSON, Value: "{}"},
			{Key: "showArchived", Format: FormatBool, Value: false},
		},
		Extractor: func(repository.ExtractorDeps) repository.Extractor { return fakeExtractor{} },
		Formats: []registry.Format{
			{Name: "xlsx", Factory: func() repository.Transformer { return fakeTransformer{"xlsx"} }},
			{Name: "html", Factory: func() repository.Transformer { return fakeTransformer{"html"} }},
		},
	})

	r, err := NewResolver(reg, NewDateRangeResolver(clock(now)), "/tmp/exports")
	require.NoError(t, err)
	return r
}

func baseConfig() map[string]any {
	return map[string]any{
		"costlocker": map[string]any{
			"host":   "https://new.costlocker.com",
			"tokens": []any{"token-a"},
		},
		"reportType": "projects",
		"config": map[string]any{
			"dateRange":   "months",
			"customDates": []any{"2018-04-29", "2018-06-05"},
		},
	}
}

func TestResolverCollectsEveryViolation(t *testing.T) {
	r := newTestResolver(t, "2019-05-08")

	raw := baseConfig()
	raw["config"] = map[string]any{
		"currency":  "unknown",
		"dateRange": "invalid",
	}
	raw["customConfig"] = []any{
		map[string]any{"format": "text", "value": "x"},
	}
	raw["export"] = map[string]any{"email": "not-an-email"}

	resolved, violations, err := r.Resolve(raw)
	require.NoError(t, err)
	assert.Nil(t, resolved)
	require.Len(t, violations, 4)

	fields := []string{}
	for _, v := range violations {
		fields = append(fields, v.Field)
		assert.NotEmpty(t, v.Description)
	}
	assert.Contains(t, fields, "config.currency")
	assert.Contains(t, fields, "config.dateRange")
	assert.Contains(t, fields, "export.email")
}

func TestResolverMissingRequiredSections(t *testing.T) {
	r := newTestResolver(t, "2019-05-08")

	_, violations, err := r.Resolve(map[string]any{})
	require.NoError(t, err)
	assert.Len(t, violations, 2)
}

func TestResolverWeek(t *testing.T) {
	r := newTestResolver(t, "2020-01-01")

	raw := baseConfig()
	raw["config"] = map[string]any{
		"title":       "Weekly {FIRST(Y-m-d)} - {LAST(Y-m-d)}",
		"dateRange":   "week",
		"customDates": []any{"2019-05-01"},
	}
	raw["export"] = map[string]any{
		"email":       "boss@example.com",
		"googleDrive": map[string]any{"folderId": "folder", "files": map[string]any{"week-2019-04-22": "abc"}},
	}

	resolved, violations, err := r.Resolve(raw)
	require.NoError(t, err)
	require.Empty(t, violations)

	s := resolved.Settings
	assert.Equal(t, "Weekly 2019-04-29 - 2019-05-05", s.Title)
	assert.Equal(t, []string{"2019-04-29"}, formatDays(s.Dates))
	assert.Equal(t, "/tmp/exports/Weekly-2019-04-29-2019-05-05.xlsx", s.Export.Filesystem)
	assert.Equal(t, "CZK", s.Currency)
	assert.Equal(t, "xlsx", s.Format)
	assert.True(t, s.PrecalculateFormulas)

	require.NotNil(t, s.Export.GoogleDrive)
	assert.Equal(t, "week-2019-04-29", s.Export.GoogleDrive.UniqueReportID)
	assert.Equal(t, map[string]string{"week-2019-04-22": "abc"}, s.Export.GoogleDrive.Files)
	assert.Nil(t, s.Export.S3)

	names := []string{}
	for _, l := range resolved.ETL.Loaders {
		names = append(names, l.Name())
	}
	assert.Equal(t, []string{"email", "googleDrive"}, names)
}

func TestResolverDefaultsAndCustomConfig(t *testing.T) {
	r := newTestResolver(t, "2019-05-08")

	raw := baseConfig()
	raw["config"].(map[string]any)["format"] = "html"
	raw["config"].(map[string]any)["currency"] = "EUR"
	raw["config"].(map[string]any)["precalculateFormulas"] = false
	raw["customConfig"] = []any{
		map[string]any{"key": "filter", "format": "json", "value": `{"state": "running"}`},
		map[string]any{"key": "positions", "format": "csv", "value": "1,Developer,Senior\n2,Manager"},
		map[string]any{"key": "limit", "format": "number", "value": "12.5"},
	}
	raw["export"] = map[string]any{"filename": "Projects (all) / export"}

	resolved, violations, err := r.Resolve(raw)
	require.NoError(t, err)
	require.Empty(t, violations)

	s := resolved.Settings
	assert.Equal(t, "Projects April 2018", s.Title)
	assert.Equal(t, []string{"2018-04-01", "2018-05-01", "2018-06-01"}, formatDays(s.Dates))
	assert.Equal(t, "EUR", s.Currency)
	assert.Equal(t, "html", s.Format)
	assert.False(t, s.PrecalculateFormulas)
	assert.Equal(t, "/tmp/exports/Projects-all-export.html", s.Export.Filesystem)

	assert.Equal(t, map[string]any{"state": "running"}, s.CustomMap("filter"))
	assert.False(t, s.CustomBool("showArchived"))
	assert.Equal(t, 12.5, s.CustomConfig["limit"])
	assert.Equal(t, "Developer", s.Lookup("positions").Value("1", 1))
	assert.Equal(t, "Senior", s.Lookup("positions").Value("1", 2))
	assert.Equal(t, "Manager", s.Lookup("positions").Value("2", 1))
	assert.Empty(t, s.Lookup("positions").Value("3", 1))
	assert.Empty(t, resolved.ETL.Loaders)
}

func TestResolverYearIsRewrittenToMonths(t *testing.T) {
	r := newTestResolver(t, "2019-03-10")

	raw := baseConfig()
	raw["config"] = map[string]any{"dateRange": "year"}
	raw["export"] = map[string]any{"s3": map[string]any{"bucket": "reports"}}

	resolved, _, err := r.Resolve(raw)
	require.NoError(t, err)
	assert.Equal(t, entity.DateRangeMonths, resolved.Settings.DateRange)
	assert.Equal(t, []string{"2019-01-01", "2019-02-01"}, formatDays(resolved.Settings.Dates))
	require.NotNil(t, resolved.Settings.Export.S3)
	assert.Equal(t, "year-2019", resolved.Settings.Export.S3.UniqueReportID)
}

func TestResolverLogicErrors(t *testing.T) {
	r := newTestResolver(t, "2019-05-08")

	t.Run("months without two dates", func(t *testing.T) {
		raw := baseConfig()
		raw["config"] = map[string]any{"dateRange": "months", "customDates": []any{"2018-04-01"}}

		_, _, err := r.Resolve(raw)
		var logicErr *types.ConfigLogicError
		require.ErrorAs(t, err, &logicErr)
		assert.Equal(t, "config.customDates", logicErr.Field)
	})

	t.Run("invalid json custom config", func(t *testing.T) {
		raw := baseConfig()
		raw["customConfig"] = []any{map[string]any{"key": "filter", "format": "json", "value": "{broken"}}

		_, _, err := r.Resolve(raw)
		var logicErr *types.ConfigLogicError
		require.ErrorAs(t, err, &logicErr)
	})

	t.Run("unknown report", func(t *testing.T) {
		raw := baseConfig()
		raw["reportType"] = "unknown"

		_, _, err := r.Resolve(raw)
		require.ErrorIs(t, err, types.ErrUnknownReport)
	})

	t.Run("unknown format", func(t *testing.T) {
		raw := baseConfig()
		raw["config"].(map[string]any)["format"] = "docx"

		_, _, err := r.Resolve(raw)
		require.ErrorIs(t, err, types.ErrUnknownFormat)
	})
}
