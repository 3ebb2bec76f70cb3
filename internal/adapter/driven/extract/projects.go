package extract

import (
	"context"
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/costlocker/reports/internal/domain/entity"
	"github.com/costlocker/reports/internal/domain/repository"
)

const (
	resourceProjects  = "Simple_Projects"
	resourceTimesheet = "Simple_Timesheet"
	resourcePeople    = "Simple_People"
)

// ProjectsExtractor reports tracked time and budget of every project.
type ProjectsExtractor struct {
	client    repository.CostlockerClient
	companies repository.CompanyResolver
}

// NewProjectsExtractor is the extractor factory of the projects report.
func NewProjectsExtractor(deps repository.ExtractorDeps) repository.Extractor {
	return &ProjectsExtractor{client: deps.Client, companies: deps.Companies}
}

// Extract loads projects matching the "filter" custom config and the time
// tracked on them in the current period.
func (e *ProjectsExtractor) Extract(ctx context.Context, settings entity.RunSettings) (entity.Report, error) {
	filter := map[string]any{}
	for k, v := range settings.CustomMap("filter") {
		filter[k] = v
	}

	response, err := e.client.Request(ctx, entity.Query{resourceProjects: filter})
	if err != nil {
		return entity.Report{}, fmt.Errorf("failed to load projects: %w", err)
	}
	projects := response[resourceProjects]

	tracked := map[int64]float64{}
	ids := lo.FilterMap(projects, func(row entity.Row, _ int) (int64, bool) { return row.ID("id") })
	if len(ids) > 0 {
		params := periodFilter(settings)
		params["project"] = ids
		response, err := e.client.Request(ctx, entity.Query{resourceTimesheet: params})
		if err != nil {
			return entity.Report{}, fmt.Errorf("failed to load timesheet: %w", err)
		}
		for project, entries := range response[resourceTimesheet].Map("project") {
			if id, ok := entity.ToID(project); ok {
				tracked[id] = hours(entries.Sum("duration"))
			}
		}
	}

	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].String("client.name")+projects[i].String("name") <
			projects[j].String("client.name")+projects[j].String("name")
	})

	table := entity.Table{
		Name: "Projects",
		Columns: []entity.Column{
			{Key: "project", Header: "Project", Kind: entity.ColumnText},
			{Key: "client", Header: "Client", Kind: entity.ColumnText},
			{Key: "company", Header: "Company", Kind: entity.ColumnText},
			{Key: "url", Header: "URL", Kind: entity.ColumnLink},
			{Key: "hours", Header: "Tracked hours", Kind: entity.ColumnHours},
			{Key: "revenue", Header: "Revenue (" + settings.Currency + ")", Kind: entity.ColumnMoney},
			{Key: "expenses", Header: "Expenses (" + settings.Currency + ")", Kind: entity.ColumnMoney},
			{Key: "profit", Header: "Profit (" + settings.Currency + ")", Kind: entity.ColumnMoney, Formula: "{revenue}-{expenses}"},
		},
		Totals: true,
	}
	for _, project := range projects {
		id, _ := project.ID("id")
		table.Rows = append(table.Rows, []any{
			project.String("name"),
			project.String("client.name"),
			e.companies.GetCompany(id).Name,
			e.companies.ProjectURL(id),
			tracked[id],
			project.Float("revenue"),
			project.Float("expenses"),
			nil,
		})
	}

	return entity.Report{Period: settings.Date, Label: periodLabel(settings), Tables: []entity.Table{table}}, nil
}
