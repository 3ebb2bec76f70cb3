package repository

import (
	"github.com/costlocker/reports/internal/shared/types"
)

// ConfigRepository defines the interface for loading configuration files.
type ConfigRepository interface {
	// LoadConfigFile reads a run config into a raw document ready for schema
	// validation.
	LoadConfigFile(filePath string) (map[string]any, error)
	// SaveConfigFile writes a raw document back in the file's format.
	SaveConfigFile(filePath string, raw map[string]any) error
	// LoadEnvironment reads the process environment.
	LoadEnvironment() (*types.Environment, error)
}
