package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Hsnnder/real-estatemvp/internal/config"
)

// RedisMailKey is the key a mocked mail to the given recipient is stored under.
func RedisMailKey(to string) string {
	return fmt.Sprintf("mockemail:%s:contact", to)
}

// RedisSender stores emails in Redis instead of sending them (MOCK_SERVICES=true),
// so end-to-end tests can read back what the contact form produced.
type RedisSender struct {
	client *redis.Client
	cfg    *config.Config
	ttl    time.Duration
}

// NewRedisSender creates a new RedisSender.
func NewRedisSender(client *redis.Client, cfg *config.Config) Sender {
	return &RedisSender{client: client, cfg: cfg, ttl: 5 * time.Minute}
}

// Send stores a JSON representation of the email keyed by its first recipient.
func (s *RedisSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	primaryTo := ""
	if len(to) > 0 {
		primaryTo = to[0]
	}

	data, err := json.Marshal(map[string]interface{}{
		"to":      strings.Join(to, ", "),
		"from":    s.cfg.SmtpFromAddress,
		"subject": subject,
		"body":    string(rawMessage),
		"sent_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email data: %w", err)
	}

	key := RedisMailKey(primaryTo)
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store email in Redis key '%s': %w", key, err)
	}

	log.Printf("Mock email stored in Redis key '%s' (TTL: %v, Subject: %s)", key, s.ttl, subject)
	return nil
}
