package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Starlight373/Car-wash/internal/config"
)

// RedisSender implements the Sender interface by storing emails in Redis.
// Used when MOCK_SERVICES is enabled so API tests can assert on
// notifications without an SMTP server.
type RedisSender struct {
	client *redis.Client
	cfg    *config.Config
}

// NewRedisSender creates a new RedisSender.
func NewRedisSender(client *redis.Client, cfg *config.Config) Sender {
	return &RedisSender{
		client: client,
		cfg:    cfg,
	}
}

// Send stores a JSON representation of the email in Redis under
// mockemail:<recipient>, expiring after an hour.
func (s *RedisSender) Send(ctx context.Context, to []string, subject string, body []byte) error {
	payload, err := json.Marshal(map[string]string{
		"subject": subject,
		"body":    string(body),
		"sent_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal mock email: %w", err)
	}

	for _, addr := range to {
		key := fmt.Sprintf("mockemail:%s", addr)
		if err := s.client.Set(ctx, key, payload, time.Hour).Err(); err != nil {
			return fmt.Errorf("failed to store mock email for %s: %w", addr, err)
		}
		log.Printf("Mock email stored in Redis under %s (subject %q)", key, subject)
	}
	return nil
}
