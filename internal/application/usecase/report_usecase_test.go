package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/costlocker/reports/internal/application/registry"
	"github.com/costlocker/reports/internal/application/settings"
	"github.com/costlocker/reports/internal/domain/entity"
	"github.com/costlocker/reports/internal/domain/repository"
	"github.com/costlocker/reports/internal/shared/types"
)

type fakePresenter struct {
	calls    []string
	errors   []string
	details  [][]string
	finished *entity.RunResult
}

func (p *fakePresenter) StartExtracting(entity.RunSettings) { p.calls = append(p.calls, "extracting") }
func (p *fakePresenter) FinishExtracting(date *time.Time) {
	if date == nil {
		p.calls = append(p.calls, "extracted:alltime")
		return
	}
	p.calls = append(p.calls, "extracted:"+date.Format(entity.DateLayout))
}
func (p *fakePresenter) StartTransforming() { p.calls = append(p.calls, "transforming") }
func (p *fakePresenter) StartLoading()      { p.calls = append(p.calls, "loading") }
func (p *fakePresenter) Finish(result entity.RunResult) {
	p.calls = append(p.calls, "finish")
	p.finished = &result
}
func (p *fakePresenter) Error(message string, details ...string) {
	p.errors = append(p.errors, message)
	p.details = append(p.details, details)
}

type fakeExtractor struct {
	periods []*time.Time
	err     error
	panic   any
}

func (e *fakeExtractor) Extract(_ context.Context, s entity.RunSettings) (entity.Report, error) {
	if e.panic != nil {
		panic(e.panic)
	}
	if e.err != nil {
		return entity.Report{}, e.err
	}
	e.periods = append(e.periods, s.Date)
	label := "All time"
	if s.Date != nil {
		label = s.Date.Format(entity.DateLayout)
	}
	return entity.Report{Period: s.Date, Label: label}, nil
}

type fakeSpreadsheet struct {
	labels       []string
	after        bool
	savedPath    string
	precalculate bool
}

func (f *fakeSpreadsheet) Extension() string { return "xlsx" }
func (f *fakeSpreadsheet) AddReport(r entity.Report, _ entity.RunSettings) error {
	f.labels = append(f.labels, r.Label)
	return nil
}
func (f *fakeSpreadsheet) After(entity.RunSettings) error { f.after = true; return nil }
func (f *fakeSpreadsheet) Save(path string, precalculate bool) error {
	f.savedPath, f.precalculate = path, precalculate
	return nil
}

type fakeDocument struct{}

func (fakeDocument) Extension() string { return "html" }
func (fakeDocument) Render(reports []entity.Report, s entity.RunSettings) ([]byte, error) {
	out := s.Title
	for _, r := range reports {
		out += "|" + r.Label
	}
	return []byte(out), nil
}

type fakeLoader struct {
	name    string
	payload any
	err     error
	calls   int
}

func (l *fakeLoader) Name() string                             { return l.name }
func (l *fakeLoader) Enabled(export entity.ExportSettings) bool { return export.Email != "" }
func (l *fakeLoader) Load(context.Context, string, string, entity.ExportSettings) (any, error) {
	l.calls++
	return l.payload, l.err
}

type fixture struct {
	useCase     *ReportUseCase
	presenter   *fakePresenter
	extractor   *fakeExtractor
	spreadsheet *fakeSpreadsheet
	loaders     []*fakeLoader
	exportDir   string
	clientErr   error
	extractors  int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		presenter:   &fakePresenter{},
		extractor:   &fakeExtractor{},
		spreadsheet: &fakeSpreadsheet{},
		loaders: []*fakeLoader{
			{name: "email", payload: map[string]string{"to": "boss@example.com"}},
			{name: "slack"},
			{name: "s3", err: errors.New("access denied")},
		},
		exportDir: t.TempDir(),
	}

	loaders := make([]repository.Loader, 0, len(f.loaders))
	for _, l := range f.loaders {
		loaders = append(loaders, l)
	}
	reg := registry.New(loaders...)
	reg.MustRegister(registry.Definition{
		ID:        "projects",
		Title:     "Projects",
		DateRange: entity.DateRangeAllTime,
		Extractor: func(repository.ExtractorDeps) repository.Extractor {
			f.extractors++
			return f.extractor
		},
		Formats: []registry.Format{
			{Name: "xlsx", Factory: func() repository.Transformer { return f.spreadsheet }},
			{Name: "html", Factory: func() repository.Transformer { return fakeDocument{} }},
		},
	})

	now := func() time.Time { return time.Date(2019, 5, 8, 12, 0, 0, 0, time.UTC) }
	resolver, err := settings.NewResolver(reg, settings.NewDateRangeResolver(now), f.exportDir)
	require.NoError(t, err)

	clients := func(context.Context, entity.RunSettings) (repository.ExtractorDeps, error) {
		return repository.ExtractorDeps{}, f.clientErr
	}
	f.useCase = NewReportUseCase(resolver, clients, f.presenter)
	return f
}

func runConfig(config map[string]any) map[string]any {
	raw := map[string]any{
		"costlocker": map[string]any{"host": "https://new.costlocker.com", "tokens": []any{"token"}},
		"reportType": "projects",
		"export":     map[string]any{"email": "boss@example.com"},
	}
	if config != nil {
		raw["config"] = config
	}
	return raw
}

func TestGenerateReportMonths(t *testing.T) {
	f := newFixture(t)

	result, err := f.useCase.GenerateReport(context.Background(), runConfig(map[string]any{
		"title":       "Projects {FIRST(Y-m)} - {LAST(Y-m)}",
		"dateRange":   "months",
		"customDates": []any{"2018-04-29", "2018-06-05"},
	}))
	require.NoError(t, err)

	assert.Equal(t, entity.StateDone, result.State)
	assert.Equal(t, "Projects 2018-04 - 2018-06", result.Title)
	assert.Equal(t, filepath.Join(f.exportDir, "Projects-2018-04-2018-06.xlsx"), result.Filesystem)

	assert.Equal(t, []string{"2018-04-01", "2018-05-01", "2018-06-01"}, f.spreadsheet.labels)
	assert.Equal(t, 3, f.extractors, "one extractor per period")
	assert.True(t, f.spreadsheet.after)
	assert.Equal(t, result.Filesystem, f.spreadsheet.savedPath)
	assert.True(t, f.spreadsheet.precalculate)

	assert.Equal(t, []string{
		"extracting",
		"extracted:2018-04-01", "extracted:2018-05-01", "extracted:2018-06-01",
		"transforming", "loading", "finish",
	}, f.presenter.calls)

	assert.Equal(t, map[string]entity.LoadResult{
		"email": {Status: entity.LoadSucceeded, Payload: map[string]string{"to": "boss@example.com"}},
		"slack": {Status: entity.LoadNotConfigured},
		"s3":    {Status: entity.LoadFailed, Error: "access denied"},
	}, result.Loaders)
	require.NotNil(t, f.presenter.finished)
	assert.Equal(t, *result, *f.presenter.finished)
	assert.Empty(t, f.presenter.errors)
}

func TestGenerateReportAllTimeExtractsOnce(t *testing.T) {
	f := newFixture(t)

	result, err := f.useCase.GenerateReport(context.Background(), runConfig(map[string]any{"precalculateFormulas": false}))
	require.NoError(t, err)

	assert.Equal(t, entity.StateDone, result.State)
	assert.Equal(t, []*time.Time{nil}, f.extractor.periods)
	assert.Equal(t, 1, f.extractors)
	assert.Equal(t, []string{"All time"}, f.spreadsheet.labels)
	assert.False(t, f.spreadsheet.precalculate)
	assert.Contains(t, f.presenter.calls, "extracted:alltime")
}

func TestGenerateReportDocument(t *testing.T) {
	f := newFixture(t)

	result, err := f.useCase.GenerateReport(context.Background(), runConfig(map[string]any{
		"format":      "html",
		"dateRange":   "week",
		"customDates": []any{"2019-05-01"},
		"title":       "Week {WEEK}",
	}))
	require.NoError(t, err)

	content, err := os.ReadFile(result.Filesystem)
	require.NoError(t, err)
	assert.Equal(t, "Week 18|2019-04-29", string(content))
	assert.Equal(t, filepath.Join(f.exportDir, "Week-18.html"), result.Filesystem)
}

func TestGenerateReportInvalidConfig(t *testing.T) {
	f := newFixture(t)

	raw := runConfig(map[string]any{"currency": "GBP"})
	raw["export"] = map[string]any{"email": "not-an-email"}

	result, err := f.useCase.GenerateReport(context.Background(), raw)

	var violations types.ValidationErrors
	require.ErrorAs(t, err, &violations)
	require.ErrorIs(t, err, types.ErrInvalidConfig)
	assert.Len(t, violations, 2)
	assert.Equal(t, entity.StateFailed, result.State)
	assert.Len(t, result.Errors, 2)
	assert.Equal(t, []string{"invalid configuration"}, f.presenter.errors)
	assert.Len(t, f.presenter.details[0], 2)
	assert.Empty(t, f.extractor.periods)
	assert.Empty(t, f.presenter.calls)
}

func TestGenerateReportConfigLogicError(t *testing.T) {
	f := newFixture(t)

	result, err := f.useCase.GenerateReport(context.Background(), runConfig(map[string]any{
		"dateRange":   "months",
		"customDates": []any{"2018-04-29"},
	}))

	var logicErr *types.ConfigLogicError
	require.ErrorAs(t, err, &logicErr)
	assert.NotErrorIs(t, err, types.ErrUnknown)
	assert.Equal(t, entity.StateFailed, result.State)
	assert.Equal(t, []string{"invalid configuration"}, f.presenter.errors)
}

func TestGenerateReportWithoutTenants(t *testing.T) {
	f := newFixture(t)
	f.clientErr = &types.ConfigLogicError{Field: "costlocker.tokens", Reason: "at least one token is required", Err: types.ErrNoTenants}

	result, err := f.useCase.GenerateReport(context.Background(), runConfig(nil))
	require.ErrorIs(t, err, types.ErrNoTenants)
	assert.Equal(t, entity.StateFailed, result.State)
}

func TestGenerateReportExtractionError(t *testing.T) {
	f := newFixture(t)
	f.extractor.err = errors.New("costlocker is down")

	result, err := f.useCase.GenerateReport(context.Background(), runConfig(nil))
	require.ErrorIs(t, err, types.ErrUnknown)
	assert.Equal(t, entity.StateFailed, result.State)
	assert.Equal(t, []string{"unknown error"}, result.Errors)
	assert.Equal(t, []string{"unknown error"}, f.presenter.errors)
	assert.Equal(t, []string{"*errors.errorString: costlocker is down"}, f.presenter.details[0])
	assert.Empty(t, f.spreadsheet.labels)
	assert.Zero(t, f.loaders[0].calls)
}

func TestGenerateReportRecoversPanics(t *testing.T) {
	f := newFixture(t)
	f.extractor.panic = "kaboom"

	result, err := f.useCase.GenerateReport(context.Background(), runConfig(nil))
	require.ErrorIs(t, err, types.ErrUnknown)
	assert.Equal(t, entity.StateFailed, result.State)
	assert.Equal(t, []string{"string: panic: kaboom"}, f.presenter.details[0])
}

func TestGenerateReportCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.useCase.GenerateReport(ctx, runConfig(nil))
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, err, types.ErrUnknown)
}
