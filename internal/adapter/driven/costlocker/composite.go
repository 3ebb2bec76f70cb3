package costlocker

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/costlocker/reports/internal/domain/entity"
	"github.com/costlocker/reports/internal/domain/repository"
	"github.com/costlocker/reports/internal/logger"
	"github.com/costlocker/reports/internal/shared/types"
)

const projectFilter = "project"

type tenant struct {
	client  repository.CostlockerClient
	company entity.Company
}

// CompositeClient fans queries out to several tenants and merges the rows.
// It also remembers which tenant owns which project.
type CompositeClient struct {
	host    string
	tenants []tenant

	mu       sync.Mutex
	projects map[int64]int64
}

// NewCompositeClient probes every client with "/me" to learn its company.
func NewCompositeClient(ctx context.Context, host string, clients ...repository.CostlockerClient) (*CompositeClient, error) {
	if len(clients) == 0 {
		return nil, &types.ConfigLogicError{
			Field:  "costlocker.tokens",
			Reason: "at least one token is required",
			Err:    types.ErrNoTenants,
		}
	}

	c := &CompositeClient{
		host:     strings.TrimRight(host, "/"),
		projects: make(map[int64]int64),
	}
	for i, client := range clients {
		me, err := client.RestAPI(ctx, "/me")
		if err != nil {
			return nil, fmt.Errorf("failed to identify costlocker tenant #%d: %w", i+1, err)
		}
		id, _ := entity.Row(me).ID("data.company.id")
		company := entity.Company{ID: id, Name: entity.Row(me).String("data.company.name")}
		logger.Debug("costlocker.tenant", "company", company.ID, "name", company.Name)
		c.tenants = append(c.tenants, tenant{client: client, company: company})
	}
	return c, nil
}

// Companies returns the tenants in registration order.
func (c *CompositeClient) Companies() []entity.Company {
	return lo.Map(c.tenants, func(t tenant, _ int) entity.Company { return t.company })
}

// Request queries every tenant and concatenates rows per resource in tenant
// order. With more than one tenant, project filters are narrowed to the
// projects of each tenant.
func (c *CompositeClient) Request(ctx context.Context, query entity.Query) (entity.Response, error) {
	merged := make(entity.Response, len(query))
	for _, t := range c.tenants {
		q := query
		if len(c.tenants) > 1 {
			q = c.tenantQuery(query, t.company.ID)
			if len(q) == 0 {
				continue
			}
		}

		response, err := t.client.Request(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("costlocker request for %q failed: %w", t.company.Name, err)
		}
		for resource, rows := range response {
			merged[resource] = append(merged[resource], rows...)
			if strings.HasSuffix(strings.ToLower(resource), "projects") {
				c.recordProjects(rows, t.company.ID)
			}
		}
	}
	return merged, nil
}

// RestAPI calls the first tenant.
func (c *CompositeClient) RestAPI(ctx context.Context, endpoint string) (map[string]any, error) {
	return c.tenants[0].client.RestAPI(ctx, endpoint)
}

// GetCompany returns the owner of a project or the null company.
func (c *CompositeClient) GetCompany(projectID int64) entity.Company {
	c.mu.Lock()
	companyID, ok := c.projects[projectID]
	c.mu.Unlock()
	if !ok {
		return entity.Company{}
	}
	t, found := lo.Find(c.tenants, func(t tenant) bool { return t.company.ID == companyID })
	if !found {
		return entity.Company{}
	}
	return t.company
}

// ProjectURL links a project in the Costlocker web app. Projects of unknown
// owners get an empty URL.
func (c *CompositeClient) ProjectURL(projectID int64) string {
	if c.GetCompany(projectID).IsNull() {
		return ""
	}
	return fmt.Sprintf("%s/projects/detail/%d/overview", c.host, projectID)
}

func (c *CompositeClient) recordProjects(rows entity.Rows, companyID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, row := range rows {
		id, ok := row.ID("id")
		if !ok {
			continue
		}
		if _, exists := c.projects[id]; !exists {
			c.projects[id] = companyID
		}
	}
}

// tenantQuery narrows the project filters of query to the projects owned by
// companyID. Resources left with an empty filter are dropped.
func (c *CompositeClient) tenantQuery(query entity.Query, companyID int64) entity.Query {
	q := query.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()

	for resource, params := range q {
		filter, ok := params[projectFilter]
		if !ok {
			continue
		}
		owned := lo.Filter(projectIDs(filter), func(id int64, _ int) bool {
			owner, known := c.projects[id]
			return known && owner == companyID
		})
		if len(owned) == 0 {
			delete(q, resource)
			continue
		}
		params[projectFilter] = owned
	}
	return q
}

func projectIDs(filter any) []int64 {
	var values []any
	switch v := filter.(type) {
	case []any:
		values = v
	case []int64:
		return v
	case []int:
		return lo.Map(v, func(id int, _ int) int64 { return int64(id) })
	case []string:
		values = lo.ToAnySlice(v)
	default:
		values = []any{v}
	}
	return lo.FilterMap(values, func(v any, _ int) (int64, bool) { return entity.ToID(v) })
}

// Connect builds the client stack of one run: one HTTP client per token,
// merged by a CompositeClient and memoized by a CachingClient.
func Connect(ctx context.Context, c *http.Client, host string, tokens []string) (repository.ExtractorDeps, error) {
	clients := lo.Map(NewHTTPClients(c, host, tokens), func(hc *HTTPClient, _ int) repository.CostlockerClient { return hc })
	composite, err := NewCompositeClient(ctx, host, clients...)
	if err != nil {
		return repository.ExtractorDeps{}, err
	}
	return repository.ExtractorDeps{Client: NewCachingClient(composite), Companies: composite}, nil
}
