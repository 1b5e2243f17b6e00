package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Hsnnder/real-estatemvp/internal/db"
	"github.com/Hsnnder/real-estatemvp/internal/models"
)

// DefaultLocale is used when a job does not name one.
const DefaultLocale = "tr-TR"

// ContactFormTemplateID names the template of the contact notification mail.
const ContactFormTemplateID = "contact_form"

// ErrTemplateNotFound is returned when neither the database nor the defaults hold a template.
var ErrTemplateNotFound = errors.New("email template not found")

// Default email templates used as fallback when not found in database
var defaultEmailTemplates = map[string]models.EmailTemplate{
	ContactFormTemplateID: {
		TemplateID: ContactFormTemplateID,
		Locale:     DefaultLocale,
		Subject:    `Yeni İletişim Formu: {{if .subject}}{{.subject}}{{else}}Konu yok{{end}} - {{if .name}}{{.name}}{{else}}İsimsiz{{end}}`,
		Body: "Ad Soyad: {{.name}}\n" +
			"E-posta: {{.email}}\n" +
			"Telefon: {{if .phone}}{{.phone}}{{else}}-{{end}}\n" +
			"Konu: {{.subject}}\n" +
			"\n" +
			"Mesaj:\n" +
			"{{.message}}",
	},
}

// IEmailTemplateService defines the interface for email template operations.
type IEmailTemplateService interface {
	GetTemplate(ctx context.Context, templateID, locale string) (*models.EmailTemplate, error)
}

// EmailTemplateService looks templates up in MongoDB and falls back to the
// built-in defaults. A nil database serves the defaults only.
type EmailTemplateService struct {
	db *mongo.Database
}

// NewEmailTemplateService creates a new instance of EmailTemplateService
func NewEmailTemplateService(mongoDB *mongo.Database) *EmailTemplateService {
	return &EmailTemplateService{
		db: mongoDB,
	}
}

// GetTemplate retrieves an email template by ID and locale
func (s *EmailTemplateService) GetTemplate(ctx context.Context, templateID string, locale string) (*models.EmailTemplate, error) {
	if s.db == nil {
		return defaultTemplate(templateID, locale)
	}

	filter := bson.M{
		"template_id": templateID,
		"locale":      locale,
	}

	var tmpl models.EmailTemplate
	err := s.db.Collection(db.EmailTemplatesCollection).FindOne(ctx, filter).Decode(&tmpl)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return defaultTemplate(templateID, locale)
		}
		return nil, fmt.Errorf("error retrieving template: %w", err)
	}

	return &tmpl, nil
}

// SaveTemplate upserts a template, overriding the built-in default of the same id and locale.
func (s *EmailTemplateService) SaveTemplate(ctx context.Context, tmpl *models.EmailTemplate) error {
	if s.db == nil {
		return errors.New("template storage not configured")
	}
	if _, err := parseTemplate(tmpl); err != nil {
		return err
	}

	filter := bson.M{
		"template_id": tmpl.TemplateID,
		"locale":      tmpl.Locale,
	}
	update := bson.M{"$set": tmpl}
	opts := options.Update().SetUpsert(true)

	if _, err := s.db.Collection(db.EmailTemplatesCollection).UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("error saving template: %w", err)
	}
	return nil
}

func defaultTemplate(templateID, locale string) (*models.EmailTemplate, error) {
	if tmpl, ok := defaultEmailTemplates[templateID]; ok {
		return &tmpl, nil
	}
	return nil, fmt.Errorf("%w: %s (locale: %s)", ErrTemplateNotFound, templateID, locale)
}

type parsedTemplate struct {
	subject *template.Template
	body    *template.Template
}

func parseTemplate(tmpl *models.EmailTemplate) (*parsedTemplate, error) {
	subject, err := template.New(tmpl.TemplateID + ":subject").Option("missingkey=zero").Parse(tmpl.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject template %s: %w", tmpl.TemplateID, err)
	}
	body, err := template.New(tmpl.TemplateID + ":body").Option("missingkey=zero").Parse(tmpl.Body)
	if err != nil {
		return nil, fmt.Errorf("invalid body template %s: %w", tmpl.TemplateID, err)
	}
	return &parsedTemplate{subject: subject, body: body}, nil
}

// RenderEmailTemplate executes the subject and body of tmpl against data.
func RenderEmailTemplate(tmpl *models.EmailTemplate, data map[string]interface{}) (subject, body string, err error) {
	parsed, err := parseTemplate(tmpl)
	if err != nil {
		return "", "", err
	}
	var sb, bb bytes.Buffer
	if err := parsed.subject.Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("render subject %s: %w", tmpl.TemplateID, err)
	}
	if err := parsed.body.Execute(&bb, data); err != nil {
		return "", "", fmt.Errorf("render body %s: %w", tmpl.TemplateID, err)
	}
	return sb.String(), bb.String(), nil
}
