package console

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/samber/lo"

	"github.com/costlocker/reports/internal/domain/entity"
	"github.com/costlocker/reports/internal/shared/types"
)

// Console implements ConsoleInterface and the report Presenter.
type Console struct {
	out         io.Writer
	interactive bool

	progress types.ProgressHandle
	status   types.StatusHandle
}

// NewConsole writes to stdout with spinners and progress bars.
func NewConsole() *Console {
	return &Console{out: os.Stdout, interactive: true}
}

// NewPlainConsole creates a console that prints one line per pipeline step,
// for logs, pipes and the --json mode.
func NewPlainConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Print(a ...interface{}) {
	fmt.Fprint(c.out, a...)
}

func (c *Console) Printf(format string, a ...interface{}) {
	fmt.Fprintf(c.out, format, a...)
}

func (c *Console) Println(a ...interface{}) {
	fmt.Fprintln(c.out, a...)
}

// LogInfo prints an info line.
func (c *Console) LogInfo(format string, a ...interface{}) {
	fmt.Fprint(c.out, pterm.Info.Sprintfln(format, a...))
}

// LogWarning prints a warning line.
func (c *Console) LogWarning(format string, a ...interface{}) {
	fmt.Fprint(c.out, pterm.Warning.Sprintfln(format, a...))
}

// LogError prints an error line.
func (c *Console) LogError(format string, a ...interface{}) {
	fmt.Fprint(c.out, pterm.Error.Sprintfln(format, a...))
}

// LogSuccess prints a success line.
func (c *Console) LogSuccess(format string, a ...interface{}) {
	fmt.Fprint(c.out, pterm.Success.Sprintfln(format, a...))
}

type statusHandle struct {
	spinner *pterm.SpinnerPrinter
}

// Status starts a spinner showing message.
func (c *Console) Status(message string) types.StatusHandle {
	spinner, _ := pterm.DefaultSpinner.Start(message)
	return &statusHandle{spinner: spinner}
}

// Shared colors.
var (
	BrightMagenta = color.New(color.FgMagenta, color.Bold).SprintFunc()
	BoldRed       = color.New(color.FgRed, color.Bold).SprintFunc()
	BrightGreen   = color.New(color.FgGreen, color.Bold).SprintFunc()
	BrightYellow  = color.New(color.FgYellow, color.Bold).SprintFunc()
	BrightRed     = color.New(color.FgRed, color.Bold).SprintFunc()
	BrightCyan    = color.New(color.FgCyan, color.Bold).SprintFunc()
)

func (h *statusHandle) Update(message string) {
	if h.spinner != nil {
		h.spinner.UpdateText(message)
	}
}

func (h *statusHandle) Stop() {
	if h.spinner != nil {
		_ = h.spinner.Stop()
	}
}

type progressHandle struct {
	bar *pterm.ProgressbarPrinter
}

// ProgressWithTotal starts a progress bar of total steps.
func (c *Console) ProgressWithTotal(total int, title string) types.ProgressHandle {
	bar, _ := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle(title).
		WithShowElapsedTime(true).
		WithShowCount(true).
		WithRemoveWhenDone(false).
		Start()
	return &progressHandle{bar: bar}
}

func (h *progressHandle) Increment() {
	if h.bar != nil {
		h.bar.Increment()
	}
}

func (h *progressHandle) Stop() {
	if h.bar != nil {
		_, _ = h.bar.Stop()
	}
}

// Table renders boxed pterm tables.
type Table struct {
	columns []string
	rows    [][]string
}

func (c *Console) CreateTable() types.TableInterface {
	return &Table{
		columns: []string{},
		rows:    [][]string{},
	}
}

func (t *Table) AddColumn(name string, options ...interface{}) {
	t.columns = append(t.columns, name)
}

func (t *Table) AddRow(cells ...interface{}) {
	processedCells := make([]string, len(cells))
	for i, cell := range cells {
		processedCells[i] = fmt.Sprint(cell)
	}
	t.rows = append(t.rows, processedCells)
}

// Render returns the boxed table, the first row being the header.
func (t *Table) Render() string {
	tableData := pterm.TableData{t.columns}
	for _, row := range t.rows {
		tableData = append(tableData, row)
	}

	table := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(tableData)

	renderedTable, _ := table.Srender()
	return renderedTable
}

// StartExtracting announces the run and starts the per-period progress.
func (c *Console) StartExtracting(settings entity.RunSettings) {
	c.stop()
	c.LogInfo("Generating %s (%s, %s)", BrightCyan(settings.Title), settings.ReportType, settings.Format)
	if c.interactive {
		c.progress = c.ProgressWithTotal(max(len(settings.Dates), 1), "Extracting Costlocker data")
	}
}

// FinishExtracting marks one period as extracted.
func (c *Console) FinishExtracting(date *time.Time) {
	if c.progress != nil {
		c.progress.Increment()
		return
	}
	period := "all time"
	if date != nil {
		period = date.Format(entity.DateLayout)
	}
	c.Printf("  extracted %s\n", period)
}

// StartTransforming reports the transform step.
func (c *Console) StartTransforming() {
	c.step("Transforming reports")
}

// StartLoading reports the load step.
func (c *Console) StartLoading() {
	c.step("Loading the report")
}

func (c *Console) step(message string) {
	if !c.interactive {
		c.LogInfo("%s", message)
		return
	}
	if c.progress != nil {
		c.progress.Stop()
		c.progress = nil
	}
	if c.status == nil {
		c.status = c.Status(message)
		return
	}
	c.status.Update(message)
}

func (c *Console) stop() {
	if c.progress != nil {
		c.progress.Stop()
		c.progress = nil
	}
	if c.status != nil {
		c.status.Stop()
		c.status = nil
	}
}

// Finish prints the output file and the outcome of every loader.
func (c *Console) Finish(result entity.RunResult) {
	c.stop()
	c.LogSuccess("Report %s saved to %s", BrightGreen(result.Title), result.Filesystem)
	if len(result.Loaders) == 0 {
		return
	}

	table := c.CreateTable()
	table.AddColumn("Loader")
	table.AddColumn("Status")
	table.AddColumn("Details")

	names := lo.Keys(result.Loaders)
	slices.Sort(names)
	for _, name := range names {
		r := result.Loaders[name]
		table.AddRow(name, statusLabel(r.Status), loadDetails(r))
	}
	c.Println(table.Render())
}

// Error prints a failed run.
func (c *Console) Error(message string, details ...string) {
	c.stop()
	c.LogError("%s", BoldRed(message))
	for _, d := range details {
		c.Printf("  - %s\n", d)
	}
}

func statusLabel(status entity.LoadStatus) string {
	switch status {
	case entity.LoadSucceeded:
		return BrightGreen(string(status))
	case entity.LoadFailed:
		return BrightRed(string(status))
	default:
		return BrightYellow(string(status))
	}
}

func loadDetails(r entity.LoadResult) string {
	if r.Error != "" {
		return r.Error
	}
	if r.Payload == nil {
		return ""
	}
	data, err := json.Marshal(r.Payload)
	if err != nil {
		return fmt.Sprint(r.Payload)
	}
	return string(data)
}
