package types

import (
	"time"

	"github.com/costlocker/reports/internal/domain/entity"
)

// Presenter is notified about pipeline progress and errors.
type Presenter interface {
	StartExtracting(settings entity.RunSettings)
	FinishExtracting(date *time.Time)
	StartTransforming()
	StartLoading()
	Finish(result entity.RunResult)
	Error(message string, details ...string)
}

// ConsoleInterface is the terminal output used by commands.
type ConsoleInterface interface {
	Presenter

	Print(a ...interface{})
	Printf(format string, a ...interface{})
	Println(a ...interface{})

	LogInfo(format string, a ...interface{})
	LogWarning(format string, a ...interface{})
	LogError(format string, a ...interface{})
	LogSuccess(format string, a ...interface{})

	CreateTable() TableInterface
}

// StatusHandle updates or stops a running spinner.
type StatusHandle interface {
	Update(message string)
	Stop()
}

// ProgressHandle advances or stops a progress bar.
type ProgressHandle interface {
	Increment()
	Stop()
}

// TableInterface builds a text table row by row.
type TableInterface interface {
	AddColumn(name string, options ...interface{})
	AddRow(cells ...interface{})
	Render() string
}
