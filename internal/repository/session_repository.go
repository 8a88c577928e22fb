package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// postgresSessionRepository implements SessionRepository using PostgreSQL.
type postgresSessionRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// PostgresSessionRepository is the PostgreSQL session repository. It also
// purges expired rows, which PostgreSQL does not do by itself.
type PostgresSessionRepository interface {
	SessionRepository
	ExpiredSessionPurger
}

// NewPostgresSessionRepository creates a new PostgreSQL-backed session repository.
func NewPostgresSessionRepository(pool *pgxpool.Pool, logger zerolog.Logger) PostgresSessionRepository {
	return &postgresSessionRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "session").Str("backend", "postgres").Logger(),
	}
}

// Save upserts the session row.
func (r *postgresSessionRepository) Save(ctx context.Context, id string, sess *model.Session) error {
	userData, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("failed to encode session user: %w", err)
	}

	query := `
		INSERT INTO sessions (id, user_id, user_data, token, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET user_id = EXCLUDED.user_id,
		    user_data = EXCLUDED.user_data,
		    token = EXCLUDED.token,
		    expires_at = EXCLUDED.expires_at
	`

	_, err = r.pool.Exec(ctx, query, id, sess.User.ID, userData, sess.Token, sess.ExpiresAt)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", sess.User.ID).Msg("failed to save session")
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Get retrieves a session by its id.
func (r *postgresSessionRepository) Get(ctx context.Context, id string) (*model.Session, error) {
	query := `
		SELECT user_data, token, expires_at
		FROM sessions
		WHERE id = $1
	`

	var (
		userData []byte
		sess     model.Session
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(&userData, &sess.Token, &sess.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Msg("session not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query session")
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	if err := json.Unmarshal(userData, &sess.User); err != nil {
		r.logger.Error().Err(err).Msg("failed to decode session user")
		return nil, fmt.Errorf("failed to decode session user: %w", err)
	}

	return &sess, nil
}

// Delete removes a session by its id.
func (r *postgresSessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		r.logger.Error().Err(err).Msg("failed to delete session")
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// PurgeExpired deletes sessions that expired at or before now.
func (r *postgresSessionRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to purge expired sessions")
		return 0, fmt.Errorf("failed to purge expired sessions: %w", err)
	}

	if n := tag.RowsAffected(); n > 0 {
		r.logger.Info().Int64("purged", n).Msg("expired sessions purged")
	}

	return tag.RowsAffected(), nil
}
