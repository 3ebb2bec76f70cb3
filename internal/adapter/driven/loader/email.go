package loader

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/wneessen/go-mail"

	"github.com/costlocker/reports/internal/domain/entity"
	"github.com/costlocker/reports/internal/logger"
)

// SMTPConfig holds the outgoing mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// EmailLoader sends the report as an attachment.
type EmailLoader struct {
	smtp SMTPConfig
	send func(ctx context.Context, msg *mail.Msg) error
}

// NewEmailLoader creates an email loader using smtp.
func NewEmailLoader(smtp SMTPConfig) *EmailLoader {
	l := &EmailLoader{smtp: smtp}
	l.send = l.dialAndSend
	return l
}

func (l *EmailLoader) Name() string {
	return "email"
}

func (l *EmailLoader) Enabled(export entity.ExportSettings) bool {
	return export.Email != ""
}

func (l *EmailLoader) Load(ctx context.Context, filePath, title string, export entity.ExportSettings) (any, error) {
	if export.Email == "" || l.smtp.Host == "" {
		logger.Warn("email.not_configured", "recipient", export.Email)
		return nil, nil
	}

	msg := mail.NewMsg()
	if err := msg.From(l.smtp.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", l.smtp.From, err)
	}
	if err := msg.To(export.Email); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", export.Email, err)
	}
	msg.Subject(title)
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf("Report %q is attached.\n", title))
	msg.AttachFile(filePath, mail.WithFileName(filepath.Base(filePath)))

	if err := l.send(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send report to %s: %w", export.Email, err)
	}
	return map[string]string{"to": export.Email}, nil
}

func (l *EmailLoader) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{mail.WithTLSPolicy(mail.TLSOpportunistic)}
	if l.smtp.Port > 0 {
		opts = append(opts, mail.WithPort(l.smtp.Port))
	}
	if l.smtp.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(l.smtp.Username),
			mail.WithPassword(l.smtp.Password),
		)
	}
	client, err := mail.NewClient(l.smtp.Host, opts...)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}
