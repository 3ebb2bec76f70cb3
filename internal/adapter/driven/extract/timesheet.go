package extract

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/costlocker/reports/internal/domain/entity"
	"github.com/costlocker/reports/internal/domain/repository"
)

// TimesheetExtractor reports tracked hours per person.
type TimesheetExtractor struct {
	client repository.CostlockerClient
}

// NewTimesheetExtractor is the extractor factory of the timesheet report.
func NewTimesheetExtractor(deps repository.ExtractorDeps) repository.Extractor {
	return &TimesheetExtractor{client: deps.Client}
}

// Extract groups the timesheet of the period by person. The optional
// "positions" lookup maps person ids to their position.
func (e *TimesheetExtractor) Extract(ctx context.Context, settings entity.RunSettings) (entity.Report, error) {
	response, err := e.client.Request(ctx, entity.Query{
		resourceTimesheet: periodFilter(settings),
		resourcePeople:    {},
	})
	if err != nil {
		return entity.Report{}, fmt.Errorf("failed to load timesheet: %w", err)
	}

	people := response[resourcePeople].Map("id")
	positions := settings.Lookup("positions")
	includeEmpty := settings.CustomBool("includeInactive")

	byPerson := response[resourceTimesheet].Map("person")
	ids := make([]string, 0, len(people))
	for id := range people {
		if _, tracked := byPerson[id]; tracked || includeEmpty {
			ids = append(ids, id)
		}
	}
	for id := range byPerson {
		if _, known := people[id]; !known {
			ids = append(ids, id)
		}
	}

	name := func(id string) string {
		if rows, ok := people[id]; ok {
			return strings.TrimSpace(rows[0].String("first_name") + " " + rows[0].String("last_name"))
		}
		return "#" + id
	}
	sort.SliceStable(ids, func(i, j int) bool { return name(ids[i]) < name(ids[j]) })

	table := entity.Table{
		Name: "People",
		Columns: []entity.Column{
			{Key: "person", Header: "Person", Kind: entity.ColumnText},
			{Key: "position", Header: "Position", Kind: entity.ColumnText},
			{Key: "hours", Header: "Tracked hours", Kind: entity.ColumnHours},
			{Key: "billable", Header: "Billable hours", Kind: entity.ColumnHours},
			{Key: "nonbillable", Header: "Non-billable hours", Kind: entity.ColumnHours, Formula: "{hours}-{billable}"},
		},
		Totals: true,
	}
	for _, id := range ids {
		entries := byPerson[id]
		billable := entity.Rows{}
		for _, entry := range entries {
			if b, _ := entry.Get("billable").(bool); b {
				billable = append(billable, entry)
			}
		}
		table.Rows = append(table.Rows, []any{
			name(id),
			positions.Value(id, 1),
			hours(entries.Sum("duration")),
			hours(billable.Sum("duration")),
			nil,
		})
	}

	return entity.Report{Period: settings.Date, Label: periodLabel(settings), Tables: []entity.Table{table}}, nil
}
