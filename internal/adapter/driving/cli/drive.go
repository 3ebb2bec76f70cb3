package cli

import (
	"github.com/costlocker/reports/internal/domain/entity"
)

const driveLoaderName = "googleDrive"

// uploadedDriveFiles returns the file-id database reported by a successful
// Google Drive upload, nil otherwise.
func uploadedDriveFiles(result *entity.RunResult) map[string]string {
	if result == nil {
		return nil
	}
	load, ok := result.Loaders[driveLoaderName]
	if !ok || load.Status != entity.LoadSucceeded {
		return nil
	}
	files, _ := load.Payload.(map[string]string)
	return files
}

// mergeDriveFiles copies files into export.googleDrive.files of a raw config
// and reports whether anything changed. Configs without a googleDrive export
// are left untouched.
func mergeDriveFiles(raw map[string]any, files map[string]string) bool {
	if len(files) == 0 {
		return false
	}
	export, ok := raw["export"].(map[string]any)
	if !ok {
		return false
	}
	target, ok := export[driveLoaderName].(map[string]any)
	if !ok {
		return false
	}

	known, _ := target["files"].(map[string]any)
	merged := make(map[string]any, len(known)+len(files))
	for k, v := range known {
		merged[k] = v
	}
	changed := false
	for k, id := range files {
		if merged[k] != id {
			merged[k] = id
			changed = true
		}
	}
	if changed {
		target["files"] = merged
	}
	return changed
}

// saveDriveFiles stores the Drive file ids in the config file, so the next
// run of the same period updates the uploaded file instead of creating one.
// The file is reloaded first so command-line overrides are not persisted.
func (app *CLIApp) saveDriveFiles(configFile string, files map[string]string) error {
	raw, err := app.configs.LoadConfigFile(configFile)
	if err != nil {
		return err
	}
	if !mergeDriveFiles(raw, files) {
		return nil
	}
	return app.configs.SaveConfigFile(configFile, raw)
}
