package extract

import (
	"fmt"

	"github.com/costlocker/reports/internal/domain/entity"
)

// periodLabel names the period a report covers.
func periodLabel(settings entity.RunSettings) string {
	if settings.Date == nil {
		return "All time"
	}
	start := *settings.Date
	switch settings.DateRange {
	case entity.DateRangeWeek, entity.DateRangeLast7Days:
		return fmt.Sprintf("%s - %s", start.Format(entity.DateLayout), settings.PeriodEnd(start).Format(entity.DateLayout))
	default:
		return start.Format("January 2006")
	}
}

// periodFilter returns the timesheet date filter of the current period.
func periodFilter(settings entity.RunSettings) map[string]any {
	params := map[string]any{}
	if settings.Date != nil {
		params["datef"] = settings.Date.Format(entity.DateLayout)
		params["datet"] = settings.PeriodEnd(*settings.Date).Format(entity.DateLayout)
	}
	return params
}

func hours(seconds float64) float64 {
	return seconds / 3600
}
