package repository

import (
	"context"

	"github.com/costlocker/reports/internal/domain/entity"
)

// ExtractorDeps are the collaborators an extractor is built with.
type ExtractorDeps struct {
	Client    CostlockerClient
	Companies CompanyResolver
}

// Extractor pulls one period of data out of Costlocker.
type Extractor interface {
	Extract(ctx context.Context, settings entity.RunSettings) (entity.Report, error)
}

// ExtractorFactory builds a fresh extractor for one invocation.
type ExtractorFactory func(deps ExtractorDeps) Extractor

// Transformer renders reports into an output artifact. Implementations are
// either a SpreadsheetTransformer or a DocumentTransformer.
type Transformer interface {
	Extension() string
}

// SpreadsheetTransformer is fed one report at a time.
type SpreadsheetTransformer interface {
	Transformer
	AddReport(report entity.Report, settings entity.RunSettings) error
	After(settings entity.RunSettings) error
	Save(path string, precalculate bool) error
}

// DocumentTransformer renders all reports at once.
type DocumentTransformer interface {
	Transformer
	Render(reports []entity.Report, settings entity.RunSettings) ([]byte, error)
}

// TransformerFactory builds a fresh transformer for one run.
type TransformerFactory func() Transformer
