package settings

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/costlocker/reports/internal/domain/entity"
	"github.com/costlocker/reports/internal/shared/types"
)

// DateRange is the outcome of resolving a dateRange mode.
type DateRange struct {
	// Mode can differ from the requested one, "year" is rewritten to "months".
	Mode     string
	Dates    []time.Time
	UniqueID string
}

// DateRangeResolver turns a dateRange mode and optional custom dates into
// the list of period starts to extract.
type DateRangeResolver struct {
	now func() time.Time
}

// NewDateRangeResolver creates a resolver. A nil clock means time.Now.
func NewDateRangeResolver(now func() time.Time) *DateRangeResolver {
	if now == nil {
		now = time.Now
	}
	return &DateRangeResolver{now: now}
}

// Resolve computes the dates and the unique report id of a run.
func (r *DateRangeResolver) Resolve(mode string, customDates []string) (DateRange, error) {
	dates, err := parseDates(customDates)
	if err != nil {
		return DateRange{}, err
	}
	n := r.now()
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)

	switch mode {
	case entity.DateRangeAllTime:
		return DateRange{Mode: mode, UniqueID: "alltime"}, nil

	case entity.DateRangeWeek:
		day := mondayOf(today.AddDate(0, 0, -7)).AddDate(0, 0, 5)
		if len(dates) > 0 {
			day = dates[0]
		}
		monday := mondayOf(day)
		return DateRange{
			Mode:     mode,
			Dates:    []time.Time{monday, monday.AddDate(0, 0, 6)},
			UniqueID: "week-" + monday.Format(entity.DateLayout),
		}, nil

	case entity.DateRangeLast7Days:
		end := today
		if len(dates) > 0 {
			end = dates[0]
		}
		start, last := end.AddDate(0, 0, -7), end.AddDate(0, 0, -1)
		return DateRange{
			Mode:     mode,
			Dates:    []time.Time{start},
			UniqueID: jsonID([]time.Time{start, last}),
		}, nil

	case entity.DateRangeYear:
		lastMonth := firstOfMonth(today).AddDate(0, -1, 0)
		start := time.Date(lastMonth.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return DateRange{
			Mode:     entity.DateRangeMonths,
			Dates:    monthStarts(start, lastMonth),
			UniqueID: fmt.Sprintf("year-%d", start.Year()),
		}, nil

	case entity.DateRangeMonths:
		if len(dates) != 2 {
			return DateRange{}, &types.ConfigLogicError{
				Field:  "config.customDates",
				Reason: fmt.Sprintf("months range needs exactly two dates, got %d", len(dates)),
			}
		}
		months := monthStarts(firstOfMonth(dates[0]), firstOfMonth(dates[1]))
		return DateRange{Mode: mode, Dates: months, UniqueID: jsonID(months)}, nil
	}

	return DateRange{}, &types.ConfigLogicError{
		Field:  "config.dateRange",
		Reason: fmt.Sprintf("unsupported date range %q", mode),
	}
}

func parseDates(values []string) ([]time.Time, error) {
	dates := make([]time.Time, 0, len(values))
	for _, v := range values {
		d, err := time.Parse(entity.DateLayout, v)
		if err != nil {
			return nil, &types.ConfigLogicError{
				Field:  "config.customDates",
				Reason: fmt.Sprintf("invalid date %q", v),
				Err:    err,
			}
		}
		dates = append(dates, d)
	}
	return dates, nil
}

func mondayOf(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func firstOfMonth(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// monthStarts lists first-of-month dates from start to end inclusive.
func monthStarts(start, end time.Time) []time.Time {
	months := []time.Time{}
	for d := start; !d.After(end); d = d.AddDate(0, 1, 0) {
		months = append(months, d)
	}
	return months
}

func jsonID(dates []time.Time) string {
	formatted := lo.Map(dates, func(d time.Time, _ int) string { return d.Format(entity.DateLayout) })
	id, _ := json.Marshal(formatted)
	return string(id)
}
