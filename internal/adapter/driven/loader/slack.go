package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slack-go/slack"

	"github.com/costlocker/reports/internal/domain/entity"
	"github.com/costlocker/reports/internal/logger"
)

type fileUploader interface {
	UploadFileV2Context(ctx context.Context, params slack.UploadFileV2Parameters) (*slack.FileSummary, error)
}

// SlackLoader posts the report file to a channel.
type SlackLoader struct {
	api fileUploader
}

// NewSlackLoader creates a loader with a bot token. An empty token leaves
// the loader unconfigured.
func NewSlackLoader(token string) *SlackLoader {
	if token == "" {
		return &SlackLoader{}
	}
	return &SlackLoader{api: slack.New(token)}
}

func (l *SlackLoader) Name() string {
	return "slack"
}

func (l *SlackLoader) Enabled(export entity.ExportSettings) bool {
	return export.Slack != nil && export.Slack.Channel != ""
}

func (l *SlackLoader) Load(ctx context.Context, filePath, title string, export entity.ExportSettings) (any, error) {
	if export.Slack == nil || export.Slack.Channel == "" || l.api == nil {
		logger.Warn("slack.not_configured")
		return nil, nil
	}

	fi, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading generated file: %w", err)
	}
	if fi.Size() <= 0 {
		return nil, fmt.Errorf("generated file is empty: %s", filePath)
	}

	file, err := l.api.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		File:           filePath,
		FileSize:       int(fi.Size()),
		Filename:       filepath.Base(filePath),
		Channel:        export.Slack.Channel,
		Title:          title,
		InitialComment: fmt.Sprintf("Report %s", title),
	})
	if err != nil {
		return nil, fmt.Errorf("error uploading report file to %s: %w", export.Slack.Channel, err)
	}
	return map[string]string{"channel": export.Slack.Channel, "file": file.ID}, nil
}
