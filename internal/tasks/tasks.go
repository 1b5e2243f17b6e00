package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/Hsnnder/real-estatemvp/internal/config"
	"github.com/Hsnnder/real-estatemvp/internal/models"
	"github.com/Hsnnder/real-estatemvp/internal/services"
)

// TaskType defines the type of a background task.
const (
	TypeContactDelivery = "contact:deliver"
)

// --- Task Client (Enqueuing tasks) ---

func redisClientOpt(rdb *redis.Client) asynq.RedisClientOpt {
	opts := rdb.Options()
	return asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}
}

// NewClient creates an asynq client sharing the connection settings of rdb.
func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(redisClientOpt(rdb))
}

// IAsynqClient is the enqueue half of *asynq.Client.
type IAsynqClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// MailQueue enqueues mail jobs as contact delivery tasks.
type MailQueue struct {
	client IAsynqClient
}

// NewMailQueue creates a new MailQueue.
func NewMailQueue(client IAsynqClient) *MailQueue {
	return &MailQueue{client: client}
}

// Enqueue implements services.IMailQueue.
func (q *MailQueue) Enqueue(ctx context.Context, job models.EmailJob) error {
	payloadBytes, err := json.Marshal(EmailTaskPayload(job))
	if err != nil {
		return fmt.Errorf("failed to marshal mail task payload: %w", err)
	}
	task := asynq.NewTask(TypeContactDelivery, payloadBytes)
	info, err := q.client.EnqueueContext(ctx, task, asynq.Queue("critical"), asynq.MaxRetry(10), asynq.Timeout(time.Minute))
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", TypeContactDelivery, err)
	}
	log.Printf("Enqueued %s task %s for %s", TypeContactDelivery, info.ID, job.To)
	return nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg      *config.Config
	mailer   services.IMailer
	contacts services.IContactService
}

func NewTaskProcessor(cfg *config.Config, mailer services.IMailer, contacts services.IContactService) *TaskProcessor {
	return &TaskProcessor{
		cfg:      cfg,
		mailer:   mailer,
		contacts: contacts,
	}
}

// SetupServer configures an Asynq server and its handlers. The caller starts and stops it.
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(
		redisClientOpt(rdb),
		asynq.Config{
			Concurrency: 4,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				fmt.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v\n", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeContactDelivery, processor.HandleContactDeliveryTask)
	fmt.Println("Registered contact delivery task handler.")

	return srv, mux
}

// --- Task Handlers ---

// EmailTaskPayload is the JSON payload of a contact delivery task.
type EmailTaskPayload models.EmailJob

// HandleContactDeliveryTask renders and sends the queued mail, then flags the
// archived contact message as sent.
func (p *TaskProcessor) HandleContactDeliveryTask(ctx context.Context, t *asynq.Task) error {
	var payload EmailTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal email task payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.To == "" {
		return fmt.Errorf("email task has no recipient: %w", asynq.SkipRetry)
	}

	fmt.Printf("Sending email task: To=%s, Template=%s\n", payload.To, payload.TemplateID)

	if err := p.mailer.Deliver(ctx, models.EmailJob(payload)); err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			return fmt.Errorf("email template not found: %v: %w", err, asynq.SkipRetry)
		}
		fmt.Printf("Email sending failed (will retry): %v\n", err)
		return err
	}

	if payload.ContactID != "" && p.contacts != nil {
		if err := p.contacts.MarkSent(ctx, payload.ContactID); err != nil {
			// The mail went out; a retry would send it twice.
			log.Printf("Failed to flag contact %s as sent: %v", payload.ContactID, err)
		}
	}

	fmt.Printf("Email task processed successfully: To=%s, Template=%s\n", payload.To, payload.TemplateID)
	return nil
}
