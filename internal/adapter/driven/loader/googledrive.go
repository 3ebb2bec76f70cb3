package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/costlocker/reports/internal/domain/entity"
	"github.com/costlocker/reports/internal/logger"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// GoogleCredentials is an OAuth client with a long lived refresh token.
type GoogleCredentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// GoogleDriveLoader uploads reports to a Drive folder. Reports with a known
// unique id replace the previously uploaded file.
type GoogleDriveLoader struct {
	credentials GoogleCredentials
	options     []option.ClientOption
}

// NewGoogleDriveLoader creates a loader authorized by credentials. Extra
// client options are applied after the OAuth token source.
func NewGoogleDriveLoader(credentials GoogleCredentials, opts ...option.ClientOption) *GoogleDriveLoader {
	return &GoogleDriveLoader{credentials: credentials, options: opts}
}

func (l *GoogleDriveLoader) Name() string {
	return "googleDrive"
}

func (l *GoogleDriveLoader) Enabled(export entity.ExportSettings) bool {
	return export.GoogleDrive != nil && export.GoogleDrive.FolderID != ""
}

// Load creates or updates the Drive file and returns the file-id database
// (unique report id to Drive file id) including the uploaded file.
func (l *GoogleDriveLoader) Load(ctx context.Context, filePath, title string, export entity.ExportSettings) (any, error) {
	target := export.GoogleDrive
	if target == nil || target.FolderID == "" || l.credentials.RefreshToken == "" {
		logger.Warn("googledrive.not_configured")
		return nil, nil
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	defer f.Close()

	svc, err := l.service(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create google drive client: %w", err)
	}

	media := googleapi.ContentType(mimeType(filePath))
	existing := target.Files[target.UniqueReportID]

	var uploaded *drive.File
	if existing != "" {
		uploaded, err = svc.Files.Update(existing, &drive.File{Name: title}).
			Media(f, media).Fields("id").Context(ctx).Do()
	} else {
		file := &drive.File{Name: title, Parents: []string{target.FolderID}}
		if strings.EqualFold(filepath.Ext(filePath), ".xlsx") {
			file.MimeType = spreadsheetMimeType
		}
		uploaded, err = svc.Files.Create(file).
			Media(f, media).Fields("id").Context(ctx).Do()
	}
	if err != nil {
		return nil, fmt.Errorf("google drive upload failed: %w", err)
	}

	files := make(map[string]string, len(target.Files)+1)
	for k, v := range target.Files {
		files[k] = v
	}
	files[target.UniqueReportID] = uploaded.Id
	logger.Info("googledrive.uploaded", "file", uploaded.Id, "updated", existing != "")
	return files, nil
}

func (l *GoogleDriveLoader) service(ctx context.Context) (*drive.Service, error) {
	cfg := &oauth2.Config{
		ClientID:     l.credentials.ClientID,
		ClientSecret: l.credentials.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{drive.DriveFileScope},
	}
	token := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: l.credentials.RefreshToken})
	opts := append([]option.ClientOption{option.WithTokenSource(token)}, l.options...)
	return drive.NewService(ctx, opts...)
}

func mimeType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".html":
		return "text/html"
	case ".pdf":
		return "application/pdf"
	}
	return "application/octet-stream"
}
