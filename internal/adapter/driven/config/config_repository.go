package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/costlocker/reports/internal/domain/repository"
)

// ConfigRepositoryImpl reads run configs from disk and the environment
// from .env files.
type ConfigRepositoryImpl struct {
	envPaths []string
}

// NewConfigRepository creates a repository. envPaths are the .env files
// tried in order, the first existing one is loaded.
func NewConfigRepository(envPaths ...string) repository.ConfigRepository {
	if len(envPaths) == 0 {
		envPaths = defaultEnvPaths()
	}
	return &ConfigRepositoryImpl{envPaths: envPaths}
}

// LoadConfigFile loads a TOML, YAML or JSON run config into a raw document.
func (r *ConfigRepositoryImpl) LoadConfigFile(filePath string) (map[string]any, error) {
	fileExtension := strings.ToLower(filepath.Ext(filePath))

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error accessing config file: %w", err)
	}

	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", filePath)
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return ParseConfig(fileData, fileExtension)
}

// SaveConfigFile writes raw back to filePath in the format given by its
// extension. Key order and comments of the original file are not kept.
func (r *ConfigRepositoryImpl) SaveConfigFile(filePath string, raw map[string]any) error {
	perm := os.FileMode(0o644)
	if fileInfo, err := os.Stat(filePath); err == nil {
		perm = fileInfo.Mode().Perm()
	}

	data, err := EncodeConfig(raw, filepath.Ext(filePath))
	if err != nil {
		return err
	}
	if err := os.WriteFile(filePath, data, perm); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// EncodeConfig is the inverse of ParseConfig.
func EncodeConfig(raw map[string]any, format string) ([]byte, error) {
	switch "." + strings.TrimPrefix(strings.ToLower(format), ".") {
	case ".toml":
		tree, err := toml.TreeFromMap(raw)
		if err != nil {
			return nil, fmt.Errorf("error encoding TOML config: %w", err)
		}
		s, err := tree.ToTomlString()
		if err != nil {
			return nil, fmt.Errorf("error encoding TOML config: %w", err)
		}
		return []byte(s), nil
	case ".yaml", ".yml":
		data, err := yaml.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("error encoding YAML config: %w", err)
		}
		return data, nil
	case ".json":
		data, err := json.MarshalIndent(raw, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("error encoding JSON config: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", format)
	}
}

// ParseConfig decodes a run config document. format is a file extension
// such as ".json" or "yaml".
func ParseConfig(data []byte, format string) (map[string]any, error) {
	raw := map[string]any{}

	switch "." + strings.TrimPrefix(strings.ToLower(format), ".") {
	case ".toml":
		tree, err := toml.LoadBytes(data)
		if err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
		raw = tree.ToMap()
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("error parsing JSON file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", format)
	}

	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}
