package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Hsnnder/real-estatemvp/internal/config"
	"github.com/Hsnnder/real-estatemvp/internal/db"
	"github.com/Hsnnder/real-estatemvp/internal/models"
)

var (
	// ErrContactIncomplete is returned when a required form field is empty.
	ErrContactIncomplete = errors.New("contact form incomplete")
	// ErrContactDelivery is returned when the notification mail could not be sent or queued.
	ErrContactDelivery = errors.New("contact mail delivery failed")
)

// IMailQueue defers a mail job to a background worker.
type IMailQueue interface {
	Enqueue(ctx context.Context, job models.EmailJob) error
}

// IContactService handles contact form submissions.
type IContactService interface {
	Submit(ctx context.Context, form models.ContactForm, remoteIP string) (*models.ContactMessage, error)
	MarkSent(ctx context.Context, id string) error
}

type contactService struct {
	cfg    *config.Config
	db     *mongo.Database
	mailer IMailer
	queue  IMailQueue
	now    func() time.Time
}

// NewContactService creates a contact service. db and queue are optional: without
// db nothing is archived, without queue the mail is sent inline.
func NewContactService(cfg *config.Config, mongoDB *mongo.Database, mailer IMailer, queue IMailQueue) IContactService {
	return &contactService{cfg: cfg, db: mongoDB, mailer: mailer, queue: queue, now: time.Now}
}

// Submit validates the form, archives it and sends (or queues) the notification mail.
func (s *contactService) Submit(ctx context.Context, form models.ContactForm, remoteIP string) (*models.ContactMessage, error) {
	msg := &models.ContactMessage{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(form.Name),
		Email:     strings.TrimSpace(form.Email),
		Phone:     strings.TrimSpace(form.Phone),
		Subject:   strings.TrimSpace(form.Subject),
		Message:   strings.TrimSpace(form.Message),
		RemoteIP:  remoteIP,
		CreatedAt: s.now().UTC(),
	}
	if msg.Name == "" || msg.Email == "" || msg.Subject == "" || msg.Message == "" {
		return nil, ErrContactIncomplete
	}

	archived := false
	if s.db != nil {
		err := db.Try(func() error {
			_, err := s.db.Collection(db.ContactMessagesCollection).InsertOne(ctx, msg)
			if db.IsDuplicateKey(err) {
				msg.ID = uuid.NewString()
			}
			return err
		})
		if err != nil {
			log.Printf("Failed to archive contact message %s: %v", msg.ID, err)
		} else {
			archived = true
		}
	}

	job := models.EmailJob{
		To:         s.cfg.ContactToAddress,
		ReplyTo:    msg.Email,
		TemplateID: ContactFormTemplateID,
		Locale:     DefaultLocale,
		Data: map[string]interface{}{
			"name":    msg.Name,
			"email":   msg.Email,
			"phone":   msg.Phone,
			"subject": msg.Subject,
			"message": msg.Message,
		},
	}
	if archived {
		job.ContactID = msg.ID
	}

	if s.queue != nil {
		if err := s.queue.Enqueue(ctx, job); err != nil {
			return msg, fmt.Errorf("%w: %v", ErrContactDelivery, err)
		}
		log.Printf("Contact message %s queued for delivery", msg.ID)
		return msg, nil
	}

	if err := s.mailer.Deliver(ctx, job); err != nil {
		return msg, fmt.Errorf("%w: %v", ErrContactDelivery, err)
	}
	msg.Sent = true
	if archived {
		if err := s.MarkSent(ctx, msg.ID); err != nil {
			log.Printf("Failed to flag contact message %s as sent: %v", msg.ID, err)
		}
	}
	return msg, nil
}

// MarkSent flags an archived message as delivered. It is a no-op without a database.
func (s *contactService) MarkSent(ctx context.Context, id string) error {
	if s.db == nil || id == "" {
		return nil
	}
	_, err := s.db.Collection(db.ContactMessagesCollection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"sent": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark contact message %s sent: %w", id, err)
	}
	return nil
}
