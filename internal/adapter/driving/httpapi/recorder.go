package httpapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/costlocker/reports/internal/domain/entity"
)

// recorder is the presenter of one HTTP request. It collects the steps so
// they can be returned in the response.
type recorder struct {
	steps []string
}

func (r *recorder) StartExtracting(settings entity.RunSettings) {
	r.add("extracting %s (%d periods)", settings.Title, max(len(settings.Dates), 1))
}

func (r *recorder) FinishExtracting(date *time.Time) {
	if date == nil {
		r.add("extracted all time")
		return
	}
	r.add("extracted %s", date.Format(entity.DateLayout))
}

func (r *recorder) StartTransforming() {
	r.add("transforming")
}

func (r *recorder) StartLoading() {
	r.add("loading")
}

func (r *recorder) Finish(result entity.RunResult) {
	r.add("done: %s", result.Filesystem)
}

func (r *recorder) Error(message string, details ...string) {
	if len(details) == 0 {
		r.add("error: %s", message)
		return
	}
	r.add("error: %s (%s)", message, strings.Join(details, "; "))
}

func (r *recorder) add(format string, a ...any) {
	r.steps = append(r.steps, fmt.Sprintf(format, a...))
}
