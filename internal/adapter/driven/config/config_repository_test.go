package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonConfig = `{
  "costlocker": {"host": "https://new.costlocker.com", "tokens": ["a", "b"]},
  "reportType": "projects",
  "config": {"dateRange": "months", "customDates": ["2019-01-01", "2019-03-01"], "precalculateFormulas": false},
  "customConfig": [{"key": "limit", "format": "number", "value": 5}],
  "export": {"email": "boss@example.com"}
}`

const yamlConfig = `
costlocker:
  host: https://new.costlocker.com
  tokens: [a, b]
reportType: projects
config:
  dateRange: months
  customDates: ["2019-01-01", "2019-03-01"]
  precalculateFormulas: false
customConfig:
  - key: limit
    format: number
    value: 5
export:
  email: boss@example.com
`

const tomlConfig = `
reportType = "projects"

[costlocker]
host = "https://new.costlocker.com"
tokens = ["a", "b"]

[config]
dateRange = "months"
customDates = ["2019-01-01", "2019-03-01"]
precalculateFormulas = false

[[customConfig]]
key = "limit"
format = "number"
value = 5

[export]
email = "boss@example.com"
`

// normalize re-encodes a document so that numbers decoded by different
// parsers compare equal.
func normalize(t *testing.T, raw map[string]any) map[string]any {
	t.Helper()
	data, err := json.Marshal(raw)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigFile(t *testing.T) {
	repo := NewConfigRepository(filepath.Join(t.TempDir(), "missing.env"))

	expected, err := ParseConfig([]byte(jsonConfig), ".json")
	require.NoError(t, err)
	expected = normalize(t, expected)

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json", "run.json", jsonConfig},
		{"yaml", "run.yaml", yamlConfig},
		{"yml", "run.yml", yamlConfig},
		{"toml", "run.TOML", tomlConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := repo.LoadConfigFile(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, expected, normalize(t, raw))
		})
	}
}

func TestLoadConfigFileErrors(t *testing.T) {
	repo := NewConfigRepository(filepath.Join(t.TempDir(), "missing.env"))

	_, err := repo.LoadConfigFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "error accessing config file")

	_, err = repo.LoadConfigFile(t.TempDir())
	assert.ErrorContains(t, err, "is a directory")

	_, err = repo.LoadConfigFile(writeFile(t, "run.ini", "a=b"))
	assert.ErrorContains(t, err, "unsupported config file format")

	_, err = repo.LoadConfigFile(writeFile(t, "run.json", "{broken"))
	assert.ErrorContains(t, err, "error parsing JSON file")
}

func TestParseConfigEmptyDocument(t *testing.T) {
	raw, err := ParseConfig([]byte(""), "yaml")
	require.NoError(t, err)
	assert.NotNil(t, raw)
	assert.Empty(t, raw)
}

// unsetEnv clears key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadEnvironment(t *testing.T) {
	for _, key := range []string{"SMTP_HOST", "SMTP_PORT", "HTTP_TIMEOUT_SECONDS", "LOG_LEVEL", "SLACK_BOT_TOKEN"} {
		unsetEnv(t, key)
	}
	t.Setenv("EXPORT_DIR", "/tmp/from-env")

	dotenv := writeFile(t, ".env", "SMTP_HOST=smtp.example.com\nSMTP_PORT=2525\nEXPORT_DIR=/tmp/from-dotenv\nSLACK_BOT_TOKEN=xoxb-1\n")
	repo := NewConfigRepository(filepath.Join(t.TempDir(), "missing.env"), dotenv)

	env, err := repo.LoadEnvironment()
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com", env.SMTPHost)
	assert.Equal(t, 2525, env.SMTPPort)
	assert.Equal(t, "/tmp/from-env", env.ExportDir)
	assert.Equal(t, "xoxb-1", env.SlackBotToken)
	assert.Equal(t, 60, env.HTTPTimeoutSeconds)
	assert.Equal(t, "info", env.LogLevel)
}

func TestLoadEnvironmentInvalidNumber(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT_SECONDS", "soon")

	_, err := NewConfigRepository(filepath.Join(t.TempDir(), "missing.env")).LoadEnvironment()
	assert.ErrorContains(t, err, "HTTP_TIMEOUT_SECONDS must be a number")
}

func TestSaveConfigFile(t *testing.T) {
	repo := NewConfigRepository(filepath.Join(t.TempDir(), "missing.env"))

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json", "run.json", jsonConfig},
		{"yaml", "run.yaml", yamlConfig},
		{"toml", "run.toml", tomlConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			raw, err := repo.LoadConfigFile(path)
			require.NoError(t, err)

			raw["export"].(map[string]any)["googleDrive"] = map[string]any{
				"folderId": "folder",
				"files":    map[string]any{"year-2019": "drive-file-1"},
			}
			require.NoError(t, repo.SaveConfigFile(path, raw))

			saved, err := repo.LoadConfigFile(path)
			require.NoError(t, err)
			assert.Equal(t, normalize(t, raw), normalize(t, saved))
		})
	}

	err := repo.SaveConfigFile(filepath.Join(t.TempDir(), "run.ini"), map[string]any{})
	assert.ErrorContains(t, err, "unsupported config file format")
}
