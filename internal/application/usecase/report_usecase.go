package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/costlocker/reports/internal/application/settings"
	"github.com/costlocker/reports/internal/domain/entity"
	"github.com/costlocker/reports/internal/domain/repository"
	"github.com/costlocker/reports/internal/logger"
	"github.com/costlocker/reports/internal/shared/types"
)

// ClientFactory builds the Costlocker client stack of one run.
type ClientFactory func(ctx context.Context, settings entity.RunSettings) (repository.ExtractorDeps, error)

// ReportUseCase runs the report pipeline: validate the config, extract every
// period, transform the reports into one file and hand it to the loaders.
type ReportUseCase struct {
	resolver *settings.Resolver
	clients  ClientFactory
	console  types.Presenter
}

// NewReportUseCase creates a new report use case.
func NewReportUseCase(resolver *settings.Resolver, clients ClientFactory, console types.Presenter) *ReportUseCase {
	return &ReportUseCase{
		resolver: resolver,
		clients:  clients,
		console:  console,
	}
}

// panicError carries a recovered panic.
type panicError struct {
	value any
}

func (p *panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}

// GenerateReport runs one report. The returned result is never nil; the
// error is a types.ValidationErrors for schema violations, a
// *types.ConfigLogicError for unresolvable configs and wraps
// types.ErrUnknown for everything that failed after validation.
func (uc *ReportUseCase) GenerateReport(ctx context.Context, raw map[string]any) (*entity.RunResult, error) {
	result := &entity.RunResult{State: entity.StateIdle}
	log := logger.With("run", uuid.NewString())

	result.State = entity.StateValidatingConfig
	resolved, violations, err := uc.resolver.Resolve(raw)
	if len(violations) > 0 {
		result.State = entity.StateFailed
		result.Errors = violations.Strings()
		log.Warn("report.invalid_config", "errors", len(violations))
		uc.console.Error("invalid configuration", result.Errors...)
		return result, violations
	}
	if err != nil {
		return uc.fail(log, result, err)
	}

	s := resolved.Settings
	result.Title = s.Title
	log = log.With("report", s.ReportType, "format", s.Format)
	log.Info("report.start", "dates", len(s.Dates), "loaders", len(resolved.ETL.Loaders))

	if err := uc.execute(ctx, log, resolved, result); err != nil {
		return uc.fail(log, result, err)
	}

	result.State = entity.StateDone
	log.Info("report.done", "file", result.Filesystem)
	uc.console.Finish(*result)
	return result, nil
}

func (uc *ReportUseCase) fail(log *slog.Logger, result *entity.RunResult, err error) (*entity.RunResult, error) {
	result.State = entity.StateFailed

	var logicErr *types.ConfigLogicError
	if errors.As(err, &logicErr) || errors.Is(err, types.ErrUnknownReport) || errors.Is(err, types.ErrUnknownFormat) {
		result.Errors = []string{err.Error()}
		log.Warn("report.config_error", "error", err)
		uc.console.Error("invalid configuration", err.Error())
		return result, err
	}

	errType := fmt.Sprintf("%T", err)
	if p, ok := err.(*panicError); ok {
		errType = fmt.Sprintf("%T", p.value)
	}
	log.Error("report.failed", "type", errType, "error", err.Error())
	result.Errors = []string{types.ErrUnknown.Error()}
	uc.console.Error(types.ErrUnknown.Error(), fmt.Sprintf("%s: %s", errType, err.Error()))
	return result, fmt.Errorf("%w: %w", types.ErrUnknown, err)
}

func (uc *ReportUseCase) execute(ctx context.Context, log *slog.Logger, resolved *settings.Resolved, result *entity.RunResult) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()

	s := resolved.Settings

	result.State = entity.StateExtracting
	reports, err := uc.extract(ctx, log, resolved)
	if err != nil {
		return err
	}

	result.State = entity.StateTransforming
	uc.console.StartTransforming()
	if err := uc.transform(resolved, reports); err != nil {
		return err
	}
	result.Filesystem = s.Export.Filesystem

	result.State = entity.StateLoading
	uc.console.StartLoading()
	result.Loaders = uc.load(ctx, log, resolved)
	return nil
}

func (uc *ReportUseCase) extract(ctx context.Context, log *slog.Logger, resolved *settings.Resolved) ([]entity.Report, error) {
	s := resolved.Settings
	deps, err := uc.clients(ctx, s)
	if err != nil {
		return nil, err
	}

	dates := make([]*time.Time, 0, len(s.Dates))
	for i := range s.Dates {
		dates = append(dates, &s.Dates[i])
	}
	if len(dates) == 0 {
		dates = append(dates, nil)
	}

	uc.console.StartExtracting(s)
	reports := make([]entity.Report, 0, len(dates))
	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		// Each period gets its own extractor so no state leaks between dates.
		extractor := resolved.ETL.Extractor(deps)
		report, err := extractor.Extract(ctx, s.WithDate(date))
		if err != nil {
			return nil, err
		}
		log.Debug("report.extracted", "period", report.Label, "took", time.Since(start))
		reports = append(reports, report)
		uc.console.FinishExtracting(date)
	}
	return reports, nil
}

func (uc *ReportUseCase) transform(resolved *settings.Resolved, reports []entity.Report) error {
	s := resolved.Settings
	path := s.Export.Filesystem

	switch t := resolved.ETL.Transformer().(type) {
	case repository.SpreadsheetTransformer:
		for _, report := range reports {
			if err := t.AddReport(report, s); err != nil {
				return err
			}
		}
		if err := t.After(s); err != nil {
			return err
		}
		return t.Save(path, s.PrecalculateFormulas)

	case repository.DocumentTransformer:
		content, err := t.Render(reports, s)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("error creating output directory '%s': %w", filepath.Dir(path), err)
		}
		return os.WriteFile(path, content, 0o644)

	default:
		return fmt.Errorf("transformer %T is neither a spreadsheet nor a document", t)
	}
}

func (uc *ReportUseCase) load(ctx context.Context, log *slog.Logger, resolved *settings.Resolved) map[string]entity.LoadResult {
	s := resolved.Settings
	results := make(map[string]entity.LoadResult, len(resolved.ETL.Loaders))

	for _, loader := range resolved.ETL.Loaders {
		payload, err := loader.Load(ctx, s.Export.Filesystem, s.Title, s.Export)
		switch {
		case err != nil:
			log.Warn("report.load_failed", "loader", loader.Name(), "error", err)
			results[loader.Name()] = entity.LoadResult{Status: entity.LoadFailed, Error: err.Error()}
		case payload == nil:
			results[loader.Name()] = entity.LoadResult{Status: entity.LoadNotConfigured}
		default:
			results[loader.Name()] = entity.LoadResult{Status: entity.LoadSucceeded, Payload: payload}
		}
	}
	return results
}
