package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Hsnnder/real-estatemvp/internal/config"
	"github.com/Hsnnder/real-estatemvp/internal/email"
	"github.com/Hsnnder/real-estatemvp/internal/models"
)

// IMailer renders a templated job and hands it to the configured sender.
type IMailer interface {
	Deliver(ctx context.Context, job models.EmailJob) error
}

type mailer struct {
	cfg       *config.Config
	templates IEmailTemplateService
	sender    email.Sender
	now       func() time.Time
}

// NewMailer creates a new mailer.
func NewMailer(cfg *config.Config, templates IEmailTemplateService, sender email.Sender) IMailer {
	return &mailer{cfg: cfg, templates: templates, sender: sender, now: time.Now}
}

// Deliver renders job and sends it. Template lookup failures wrap ErrTemplateNotFound.
func (m *mailer) Deliver(ctx context.Context, job models.EmailJob) error {
	locale := job.Locale
	if locale == "" {
		locale = DefaultLocale
	}

	tmpl, err := m.templates.GetTemplate(ctx, job.TemplateID, locale)
	if err != nil {
		log.Printf("Error getting email template %s/%s: %v", job.TemplateID, locale, err)
		return err
	}
	subject, body, err := RenderEmailTemplate(tmpl, job.Data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTemplateNotFound, err)
	}

	from := m.cfg.SmtpFromAddress
	if from == "" {
		from = "no-reply@example.com"
	}
	raw := email.ComposeMessage(from, job.To, job.ReplyTo, subject, body, m.now())

	if err := m.sender.Send(ctx, []string{job.To}, subject, raw); err != nil {
		return fmt.Errorf("failed to send %s mail: %w", job.TemplateID, err)
	}
	return nil
}
