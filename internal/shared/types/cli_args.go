package types

// CLIArgs represents the command-line arguments of the run command.
type CLIArgs struct {
	ConfigFile      string
	Dir             string
	Format          string
	NoPrecalculate  bool
	PrintResultJSON bool
}

// Environment is the process level configuration read from .env files and
// environment variables.
type Environment struct {
	ExportDir          string
	HTTPTimeoutSeconds int
	LogLevel           string
	LogFile            string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRefreshToken string

	SlackBotToken string
	AWSRegion     string
}
