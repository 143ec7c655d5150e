package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/studycubs/studycubs-api/internal/models"
	appErrors "github.com/studycubs/studycubs-api/pkg/errors"
)

// sessionCommands is the subset of redis commands the session store needs.
// *redis.Client satisfies it.
type sessionCommands interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// SessionRepository holds authenticated student records between requests.
// Entries carry no TTL and no signature: whoever presents the token is
// treated as that student. The interface is deliberately small
// (save/load/clear) so a signed, expiring token could replace it without
// touching callers.
type SessionRepository struct {
	client    sessionCommands
	keyPrefix string
	logger    *zap.Logger
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(client sessionCommands, keyPrefix string, logger *zap.Logger) *SessionRepository {
	if keyPrefix == "" {
		keyPrefix = "student_session"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRepository{client: client, keyPrefix: keyPrefix, logger: logger}
}

// Save serializes the student record under a fresh opaque token.
func (r *SessionRepository) Save(ctx context.Context, student models.PublicStudent) (string, error) {
	if r.client == nil {
		return "", fmt.Errorf("session store unavailable")
	}
	payload, err := json.Marshal(student)
	if err != nil {
		return "", fmt.Errorf("marshal student session: %w", err)
	}
	token := uuid.NewString()
	if err := r.client.Set(ctx, r.key(token), payload, 0).Err(); err != nil {
		return "", fmt.Errorf("save student session: %w", err)
	}
	return token, nil
}

// Load returns the student record for the token. Absent tokens return
// ErrNoSession; malformed payloads are cleared and also report absent
// rather than being retried.
func (r *SessionRepository) Load(ctx context.Context, token string) (*models.PublicStudent, error) {
	if r.client == nil || token == "" {
		return nil, appErrors.ErrNoSession
	}
	raw, err := r.client.Get(ctx, r.key(token)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrNoSession
		}
		return nil, fmt.Errorf("load student session: %w", err)
	}
	var student models.PublicStudent
	if err := json.Unmarshal(raw, &student); err != nil {
		r.logger.Warn("clearing corrupt student session", zap.Error(err))
		_ = r.client.Del(ctx, r.key(token)).Err()
		return nil, appErrors.ErrNoSession
	}
	return &student, nil
}

// Clear removes the session for the token.
func (r *SessionRepository) Clear(ctx context.Context, token string) error {
	if r.client == nil || token == "" {
		return nil
	}
	if err := r.client.Del(ctx, r.key(token)).Err(); err != nil {
		return fmt.Errorf("clear student session: %w", err)
	}
	return nil
}

func (r *SessionRepository) key(token string) string {
	return fmt.Sprintf("%s:%s", r.keyPrefix, token)
}
