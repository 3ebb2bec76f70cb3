package repository

import (
	"context"

	"github.com/costlocker/reports/internal/domain/entity"
)

// Loader delivers a finished artifact to one destination.
type Loader interface {
	Name() string
	// Enabled reports whether the export config activates the loader.
	Enabled(export entity.ExportSettings) bool
	// Load returns a nil payload when the loader is not configured, an error
	// when delivery failed and any other payload on success.
	Load(ctx context.Context, filePath, title string, export entity.ExportSettings) (any, error)
}
