package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/costlocker/reports/internal/adapter/driving/httpapi"
	"github.com/costlocker/reports/internal/application/registry"
	"github.com/costlocker/reports/internal/application/settings"
	"github.com/costlocker/reports/internal/application/usecase"
	"github.com/costlocker/reports/internal/domain/entity"
	"github.com/costlocker/reports/internal/domain/repository"
	"github.com/costlocker/reports/internal/shared/types"
	"github.com/costlocker/reports/pkg/console"
	"github.com/costlocker/reports/pkg/version"
)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd  *cobra.Command
	version  string
	env      *types.Environment
	configs  repository.ConfigRepository
	registry *registry.Registry
	clients  usecase.ClientFactory
	dates    *settings.DateRangeResolver

	stdout io.Writer
	stderr io.Writer
}

// NewCLIApp wires the commands around a report registry and the
// Costlocker client factory.
func NewCLIApp(versionStr string, env *types.Environment, configs repository.ConfigRepository, reg *registry.Registry, clients usecase.ClientFactory) *CLIApp {
	app := &CLIApp{
		version:  versionStr,
		env:      env,
		configs:  configs,
		registry: reg,
		clients:  clients,
		dates:    settings.NewDateRangeResolver(nil),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}

	rootCmd := &cobra.Command{
		Use:           "costlocker-reports",
		Short:         "Costlocker reports: extract, transform and deliver Costlocker data",
		Version:       version.Current().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate(`{{printf "Costlocker Reports version: %s\n" .Version}}`)

	rootCmd.AddCommand(app.runCmd(), app.reportsCmd(), app.scheduleCmd(), app.serveCmd())

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.rootCmd.ExecuteContext(ctx)
}

func (app *CLIApp) runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate one report from a run config",
		RunE:  app.runCommand,
	}
	cmd.Flags().StringP("config", "c", "", "Path to a JSON, YAML or TOML run config")
	cmd.Flags().StringP("dir", "d", "", "Directory to save the report file (default: EXPORT_DIR)")
	cmd.Flags().StringP("format", "f", "", "Output format, overrides config.format")
	cmd.Flags().Bool("no-precalculate", false, "Do not bake formula results into spreadsheets")
	cmd.Flags().Bool("json", false, "Print the run result as JSON to stdout")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

// parseArgs parses command-line arguments into a CLIArgs struct.
func (app *CLIApp) parseArgs(cmd *cobra.Command) (*types.CLIArgs, error) {
	configFile, _ := cmd.Flags().GetString("config")
	dir, _ := cmd.Flags().GetString("dir")
	format, _ := cmd.Flags().GetString("format")
	noPrecalculate, _ := cmd.Flags().GetBool("no-precalculate")
	printJSON, _ := cmd.Flags().GetBool("json")

	dir, err := app.exportDir(dir)
	if err != nil {
		return nil, err
	}

	return &types.CLIArgs{
		ConfigFile:      configFile,
		Dir:             dir,
		Format:          format,
		NoPrecalculate:  noPrecalculate,
		PrintResultJSON: printJSON,
	}, nil
}

// exportDir resolves the output directory to an absolute path.
func (app *CLIApp) exportDir(dir string) (string, error) {
	if dir == "" {
		dir = app.env.ExportDir
	}
	return filepath.Abs(dir)
}

// runCommand generates one report and remembers uploaded Drive files in the
// config file.
func (app *CLIApp) runCommand(cmd *cobra.Command, _ []string) error {
	cliArgs, err := app.parseArgs(cmd)
	if err != nil {
		return err
	}

	var presenter *console.Console
	if cliArgs.PrintResultJSON {
		presenter = console.NewPlainConsole(app.stderr)
	} else {
		displayWelcomeBanner(app.stdout)
		go version.CheckLatestVersion(app.version)
		presenter = console.NewConsole()
	}

	raw, err := app.configs.LoadConfigFile(cliArgs.ConfigFile)
	if err != nil {
		return err
	}
	applyOverrides(raw, cliArgs)

	uc, err := app.newUseCase(cliArgs.Dir, presenter)
	if err != nil {
		return err
	}

	result, runErr := uc.GenerateReport(cmd.Context(), raw)
	if files := uploadedDriveFiles(result); files != nil {
		if err := app.saveDriveFiles(cliArgs.ConfigFile, files); err != nil {
			presenter.LogWarning("Drive file ids were not saved to %s: %v", cliArgs.ConfigFile, err)
		}
	}
	if cliArgs.PrintResultJSON {
		encoder := json.NewEncoder(app.stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return err
		}
	}
	return runErr
}

func (app *CLIApp) newUseCase(exportDir string, presenter types.Presenter) (*usecase.ReportUseCase, error) {
	resolver, err := settings.NewResolver(app.registry, app.dates, exportDir)
	if err != nil {
		return nil, err
	}
	return usecase.NewReportUseCase(resolver, app.clients, presenter), nil
}

// applyOverrides writes command-line overrides into the raw config before
// it is validated.
func applyOverrides(raw map[string]any, args *types.CLIArgs) {
	if args.Format == "" && !args.NoPrecalculate {
		return
	}
	config, ok := raw["config"].(map[string]any)
	if !ok {
		config = map[string]any{}
		raw["config"] = config
	}
	if args.Format != "" {
		config["format"] = args.Format
	}
	if args.NoPrecalculate {
		config["precalculateFormulas"] = false
	}
}

func (app *CLIApp) reportsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reports",
		Short: "List the registered report types",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := console.NewPlainConsole(app.stdout)
			table := c.CreateTable()
			table.AddColumn("Report")
			table.AddColumn("Default title")
			table.AddColumn("Date range")
			table.AddColumn("Formats")
			table.AddColumn("Custom config")
			for _, def := range app.registry.Definitions() {
				keys := lo.Map(def.CustomConfig, func(e entity.CustomConfigEntry, _ int) string {
					return fmt.Sprintf("%s (%s)", e.Key, e.Format)
				})
				table.AddRow(def.ID, def.Title, def.DateRange, strings.Join(def.FormatNames(), ", "), strings.Join(keys, ", "))
			}
			c.Println(table.Render())

			loaders := lo.Map(app.registry.Loaders(), func(l repository.Loader, _ int) string { return l.Name() })
			c.Printf("Loaders: %s\n", strings.Join(loaders, ", "))
			return nil
		},
	}
}

func (app *CLIApp) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			dir, err := app.exportDir("")
			if err != nil {
				return err
			}
			resolver, err := settings.NewResolver(app.registry, app.dates, dir)
			if err != nil {
				return err
			}
			server := httpapi.NewServer(app.registry, func(p types.Presenter) httpapi.Runner {
				return usecase.NewReportUseCase(resolver, app.clients, p)
			}, dir)

			console.NewPlainConsole(app.stdout).LogInfo("Listening on %s, reports are saved to %s", addr, dir)
			return server.Start(cmd.Context(), addr)
		},
	}
	cmd.Flags().String("addr", ":8080", "HTTP listen address (host:port)")
	return cmd
}
