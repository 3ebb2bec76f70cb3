package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/costlocker/reports/internal/adapter/driven/config"
	"github.com/costlocker/reports/internal/adapter/driven/costlocker"
	"github.com/costlocker/reports/internal/adapter/driven/loader"
	"github.com/costlocker/reports/internal/adapter/driving/cli"
	"github.com/costlocker/reports/internal/application/registry"
	"github.com/costlocker/reports/internal/domain/entity"
	"github.com/costlocker/reports/internal/domain/repository"
	"github.com/costlocker/reports/internal/logger"
	"github.com/costlocker/reports/pkg/version"
)

func main() {
	configRepo := config.NewConfigRepository()
	env, err := configRepo.LoadEnvironment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	closer, err := logger.Configure(env.LogLevel, env.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	// Loaders run in this order.
	reg := registry.New(
		loader.NewEmailLoader(loader.SMTPConfig{
			Host:     env.SMTPHost,
			Port:     env.SMTPPort,
			Username: env.SMTPUsername,
			Password: env.SMTPPassword,
			From:     env.SMTPFrom,
		}),
		loader.NewGoogleDriveLoader(loader.GoogleCredentials{
			ClientID:     env.GoogleClientID,
			ClientSecret: env.GoogleClientSecret,
			RefreshToken: env.GoogleRefreshToken,
		}),
		loader.NewS3Loader(env.AWSRegion),
		loader.NewSlackLoader(env.SlackBotToken),
	)
	reg.MustRegister(reportDefinitions()...)

	httpClient := &http.Client{Timeout: time.Duration(env.HTTPTimeoutSeconds) * time.Second}
	clients := func(ctx context.Context, s entity.RunSettings) (repository.ExtractorDeps, error) {
		return costlocker.Connect(ctx, httpClient, s.Host, s.Tokens)
	}

	app := cli.NewCLIApp(version.Current().Version, env, configRepo, reg, clients)

	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closer.Close()
		os.Exit(1)
	}
}
