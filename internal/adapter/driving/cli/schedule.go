package cli

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/costlocker/reports/internal/application/usecase"
	"github.com/costlocker/reports/internal/logger"
	"github.com/costlocker/reports/pkg/console"
)

// cronLogger adapts the structured logger to the cron.Logger interface.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron."+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron."+msg, append(keysAndValues, "error", err)...)
}

func (app *CLIApp) scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Generate a report on a cron schedule",
		Long: `Runs a config on a standard 5-field cron expression until interrupted.
Examples: "0 7 * * 1" (Mondays 7am), "0 6 1 * *" (first day of every month).
A run is skipped when the previous one is still going.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, _ := cmd.Flags().GetString("cron")
			configFile, _ := cmd.Flags().GetString("config")

			scheduler, err := app.newScheduler(cmd.Context(), spec, configFile)
			if err != nil {
				return err
			}
			return runScheduler(cmd.Context(), scheduler)
		},
	}
	cmd.Flags().String("cron", "", "Cron expression (minute hour day-of-month month day-of-week)")
	cmd.Flags().StringP("config", "c", "", "Path to a JSON, YAML or TOML run config")
	_ = cmd.MarkFlagRequired("cron")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

// scheduledRun is the cron job generating one config. Runs never overlap,
// so driveFiles needs no locking.
type scheduledRun struct {
	app        *CLIApp
	ctx        context.Context
	configFile string
	useCase    *usecase.ReportUseCase
	presenter  *console.Console
	driveFiles map[string]string
}

// Run reloads the config so edits apply to the next tick. Drive file ids
// uploaded by earlier ticks are merged in even when saving them failed.
func (r *scheduledRun) Run() {
	raw, err := r.app.configs.LoadConfigFile(r.configFile)
	if err != nil {
		r.presenter.Error("invalid configuration", err.Error())
		return
	}
	mergeDriveFiles(raw, r.driveFiles)

	result, err := r.useCase.GenerateReport(r.ctx, raw)
	if err != nil {
		logger.Warn("schedule.run_failed", "config", r.configFile, "error", err)
		return
	}
	if files := uploadedDriveFiles(result); files != nil {
		r.driveFiles = files
		if err := r.app.saveDriveFiles(r.configFile, files); err != nil {
			r.presenter.LogWarning("Drive file ids were not saved to %s: %v", r.configFile, err)
		}
	}
}

// newScheduler validates the config file and registers one job running it.
// Runs are cancelled with ctx.
func (app *CLIApp) newScheduler(ctx context.Context, spec, configFile string) (*cron.Cron, error) {
	if _, err := app.configs.LoadConfigFile(configFile); err != nil {
		return nil, err
	}
	dir, err := app.exportDir("")
	if err != nil {
		return nil, err
	}

	presenter := console.NewPlainConsole(app.stdout)
	uc, err := app.newUseCase(dir, presenter)
	if err != nil {
		return nil, err
	}

	scheduler := cron.New(cron.WithLogger(cronLogger{}), cron.WithChain(
		cron.Recover(cronLogger{}),
		cron.SkipIfStillRunning(cronLogger{}),
	))
	_, err = scheduler.AddJob(spec, &scheduledRun{
		app:        app,
		ctx:        ctx,
		configFile: configFile,
		useCase:    uc,
		presenter:  presenter,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	presenter.LogInfo("Scheduled %s with %q", configFile, spec)
	return scheduler, nil
}

// runScheduler blocks until ctx is done and waits for a running job.
func runScheduler(ctx context.Context, scheduler *cron.Cron) error {
	scheduler.Start()
	<-ctx.Done()
	<-scheduler.Stop().Done()
	return nil
}
