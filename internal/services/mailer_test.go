package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Hsnnder/real-estatemvp/internal/config"
	"github.com/Hsnnder/real-estatemvp/internal/models"
)

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	args := m.Called(ctx, to, subject, rawMessage)
	return args.Error(0)
}

type MockMailQueue struct {
	mock.Mock
}

func (m *MockMailQueue) Enqueue(ctx context.Context, job models.EmailJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func contactData(subject, name, phone string) map[string]interface{} {
	return map[string]interface{}{
		"name":    name,
		"email":   "ayse@example.com",
		"phone":   phone,
		"subject": subject,
		"message": "Merhaba,\nilan hakkında bilgi almak istiyorum.",
	}
}

func TestRenderEmailTemplate_ContactForm(t *testing.T) {
	tmpl, err := NewEmailTemplateService(nil).GetTemplate(context.Background(), ContactFormTemplateID, DefaultLocale)
	require.NoError(t, err)

	subject, body, err := RenderEmailTemplate(tmpl, contactData("Kiralık daire", "Ayşe Yılmaz", "0555 000 00 00"))
	require.NoError(t, err)
	assert.Equal(t, "Yeni İletişim Formu: Kiralık daire - Ayşe Yılmaz", subject)
	assert.Equal(t, "Ad Soyad: Ayşe Yılmaz\nE-posta: ayse@example.com\nTelefon: 0555 000 00 00\nKonu: Kiralık daire\n\nMesaj:\nMerhaba,\nilan hakkında bilgi almak istiyorum.", body)
}

func TestRenderEmailTemplate_Fallbacks(t *testing.T) {
	tmpl, err := NewEmailTemplateService(nil).GetTemplate(context.Background(), ContactFormTemplateID, DefaultLocale)
	require.NoError(t, err)

	subject, body, err := RenderEmailTemplate(tmpl, contactData("", "", ""))
	require.NoError(t, err)
	assert.Equal(t, "Yeni İletişim Formu: Konu yok - İsimsiz", subject)
	assert.Contains(t, body, "Telefon: -\n")
}

func TestEmailTemplateService_UnknownTemplate(t *testing.T) {
	_, err := NewEmailTemplateService(nil).GetTemplate(context.Background(), "nope", DefaultLocale)
	assert.True(t, errors.Is(err, ErrTemplateNotFound))
}

func TestMailer_Deliver(t *testing.T) {
	sender := new(MockEmailSender)
	cfg := &config.Config{SmtpFromAddress: "site@example.com"}
	m := NewMailer(cfg, NewEmailTemplateService(nil), sender).(*mailer)
	m.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }

	sender.On("Send", mock.Anything, []string{"owner@example.com"}, "Yeni İletişim Formu: Satılık - Ali",
		mock.MatchedBy(func(raw []byte) bool {
			s := string(raw)
			return strings.Contains(s, "From: site@example.com\r\n") &&
				strings.Contains(s, "To: owner@example.com\r\n") &&
				strings.Contains(s, "Reply-To: ali@example.com\r\n") &&
				strings.Contains(s, "Subject: =?UTF-8?q?") &&
				strings.Contains(s, "Ad Soyad: Ali\r\n")
		}),
	).Return(nil)

	err := m.Deliver(context.Background(), models.EmailJob{
		To:         "owner@example.com",
		ReplyTo:    "ali@example.com",
		TemplateID: ContactFormTemplateID,
		Data:       contactData("Satılık", "Ali", ""),
	})
	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestMailer_DeliverTemplateNotFound(t *testing.T) {
	sender := new(MockEmailSender)
	m := NewMailer(&config.Config{}, NewEmailTemplateService(nil), sender)

	err := m.Deliver(context.Background(), models.EmailJob{To: "x@example.com", TemplateID: "missing"})
	assert.True(t, errors.Is(err, ErrTemplateNotFound))
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMailer_DeliverSendError(t *testing.T) {
	sender := new(MockEmailSender)
	sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)
	m := NewMailer(&config.Config{}, NewEmailTemplateService(nil), sender)

	err := m.Deliver(context.Background(), models.EmailJob{
		To:         "x@example.com",
		TemplateID: ContactFormTemplateID,
		Data:       contactData("a", "b", "c"),
	})
	assert.ErrorIs(t, err, assert.AnError)
}
