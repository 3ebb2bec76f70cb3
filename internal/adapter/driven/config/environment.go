package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/costlocker/reports/internal/shared/types"
)

const (
	defaultExportDir          = "exports"
	defaultHTTPTimeoutSeconds = 60
	defaultSMTPPort           = 587
)

// LoadEnvironment reads the first existing .env file and the environment
// variables. Variables already set in the process win over the .env file.
func (r *ConfigRepositoryImpl) LoadEnvironment() (*types.Environment, error) {
	for _, path := range r.envPaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				return nil, fmt.Errorf("error loading %s: %w", path, err)
			}
			break
		}
	}

	timeout, err := getEnvInt("HTTP_TIMEOUT_SECONDS", defaultHTTPTimeoutSeconds)
	if err != nil {
		return nil, err
	}
	smtpPort, err := getEnvInt("SMTP_PORT", defaultSMTPPort)
	if err != nil {
		return nil, err
	}

	return &types.Environment{
		ExportDir:          getEnvString("EXPORT_DIR", defaultExportDir),
		HTTPTimeoutSeconds: timeout,
		LogLevel:           getEnvString("LOG_LEVEL", "info"),
		LogFile:            os.Getenv("LOG_FILE"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     smtpPort,
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnvString("SMTP_FROM", "reports@costlocker.com"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRefreshToken: os.Getenv("GOOGLE_REFRESH_TOKEN"),

		SlackBotToken: os.Getenv("SLACK_BOT_TOKEN"),
		AWSRegion:     os.Getenv("AWS_REGION"),
	}, nil
}

// defaultEnvPaths returns the .env locations checked when none are given.
func defaultEnvPaths() []string {
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "costlocker-reports", ".env"))
	}
	return paths
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return n, nil
}
