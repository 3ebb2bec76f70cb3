package repository

import (
	"context"

	"github.com/costlocker/reports/internal/domain/entity"
)

// CostlockerClient defines the interface for Costlocker API interactions.
type CostlockerClient interface {
	// Request runs a bulk query of named resources and returns their rows.
	Request(ctx context.Context, query entity.Query) (entity.Response, error)
	// RestAPI calls a REST endpoint, e.g. "/me" for tenant identity probing.
	RestAPI(ctx context.Context, endpoint string) (map[string]any, error)
}

// CompanyResolver maps project ids to the tenant that owns them.
type CompanyResolver interface {
	GetCompany(projectID int64) entity.Company
	ProjectURL(projectID int64) string
}
