package repository

import (
	"context"
	"time"

	"storefront/internal/model"
)

// SessionRepository defines the interface for server-side session storage.
type SessionRepository interface {
	// Save stores sess under id, replacing any previous value.
	Save(ctx context.Context, id string, sess *model.Session) error

	// Get retrieves the session stored under id.
	// Returns nil without error when no session exists.
	Get(ctx context.Context, id string) (*model.Session, error)

	// Delete removes the session stored under id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}

// ExpiredSessionPurger is implemented by repositories that do not expire
// entries on their own.
type ExpiredSessionPurger interface {
	// PurgeExpired deletes every session whose expiry is at or before now
	// and returns how many were removed.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
