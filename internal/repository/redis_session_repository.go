package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const sessionKeyPrefix = "session:"

// redisSessionRepository implements SessionRepository using Redis. Entries
// carry a TTL matching the session expiry, so no purge is needed.
type redisSessionRepository struct {
	client *redis.Client
	now    func() time.Time
	logger zerolog.Logger
}

// NewRedisSessionRepository creates a new Redis-backed session repository.
func NewRedisSessionRepository(client *redis.Client, logger zerolog.Logger) SessionRepository {
	return &redisSessionRepository{
		client: client,
		now:    time.Now,
		logger: logger.With().Str("repository", "session").Str("backend", "redis").Logger(),
	}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

// Save stores the session with a TTL equal to its remaining lifetime.
func (r *redisSessionRepository) Save(ctx context.Context, id string, sess *model.Session) error {
	ttl := sess.ExpiresAt.Sub(r.now())
	if sess.ExpiresAt.IsZero() {
		ttl = 0
	} else if ttl <= 0 {
		return r.Delete(ctx, id)
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(id), payload, ttl).Err(); err != nil {
		r.logger.Error().Err(err).Int64("user_id", sess.User.ID).Msg("failed to save session")
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Get retrieves a session by its id.
func (r *redisSessionRepository) Get(ctx context.Context, id string) (*model.Session, error) {
	payload, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug().Msg("session not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to get session")
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var sess model.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		r.logger.Error().Err(err).Msg("failed to decode session")
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	return &sess, nil
}

// Delete removes a session by its id.
func (r *redisSessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		r.logger.Error().Err(err).Msg("failed to delete session")
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
