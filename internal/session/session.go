package session

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/model"
)

// DefaultTTL is how long a session lives after creation.
const DefaultTTL = 7 * 24 * time.Hour

// Store persists the authenticated session of one browser.
type Store interface {
	// Create persists a session for user and token and returns it.
	Create(ctx context.Context, user model.User, token string) (*model.Session, error)

	// Read returns the current session, or nil when none is valid.
	// An absent, expired or tampered session is not an error.
	Read(ctx context.Context) (*model.Session, error)

	// Destroy removes the session. Destroying twice is not an error.
	Destroy(ctx context.Context) error
}

// Manager binds a Store to one request/response pair.
type Manager interface {
	Bind(w http.ResponseWriter, r *http.Request) Store
}

// CookieOptions controls the session cookie.
type CookieOptions struct {
	Name   string
	Path   string
	Secure bool
	TTL    time.Duration
}

func (o CookieOptions) withDefaults() CookieOptions {
	if o.Name == "" {
		o.Name = "session"
	}
	if o.Path == "" {
		o.Path = "/"
	}
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	return o
}

func (o CookieOptions) cookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     o.Name,
		Value:    value,
		Path:     o.Path,
		Expires:  expires,
		MaxAge:   int(o.TTL.Seconds()),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (o CookieOptions) expired() *http.Cookie {
	return &http.Cookie{
		Name:     o.Name,
		Value:    "",
		Path:     o.Path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

type contextKey struct{ name string }

var (
	storeKey   = &contextKey{"store"}
	sessionKey = &contextKey{"session"}
)

// WithStore returns a context carrying the request-bound store.
func WithStore(ctx context.Context, store Store) context.Context {
	return context.WithValue(ctx, storeKey, store)
}

// StoreFromContext returns the request-bound store, if any.
func StoreFromContext(ctx context.Context) Store {
	store, _ := ctx.Value(storeKey).(Store)
	return store
}

// WithSession returns a context carrying the current session.
func WithSession(ctx context.Context, sess *model.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// FromContext returns the session loaded for this request, or nil.
func FromContext(ctx context.Context) *model.Session {
	sess, _ := ctx.Value(sessionKey).(*model.Session)
	if !sess.Valid() {
		return nil
	}
	return sess
}
