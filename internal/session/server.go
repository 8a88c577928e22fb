package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repository persists sessions on the server, keyed by an opaque id.
type Repository interface {
	// Save stores sess under id until sess.ExpiresAt.
	Save(ctx context.Context, id string, sess *model.Session) error

	// Get returns the session stored under id, or nil when absent.
	Get(ctx context.Context, id string) (*model.Session, error)

	// Delete removes the session stored under id. Missing ids are not an error.
	Delete(ctx context.Context, id string) error
}

// ServerManager keeps sessions in a Repository; the cookie only carries
// a random session id.
type ServerManager struct {
	repo   Repository
	opts   CookieOptions
	now    func() time.Time
	logger zerolog.Logger
}

// NewServerManager creates a manager backed by repo.
func NewServerManager(repo Repository, opts CookieOptions, logger zerolog.Logger) *ServerManager {
	return &ServerManager{
		repo:   repo,
		opts:   opts.withDefaults(),
		now:    time.Now,
		logger: logger.With().Str("component", "server-session").Logger(),
	}
}

// Bind returns the store for one request.
func (m *ServerManager) Bind(w http.ResponseWriter, r *http.Request) Store {
	return &serverStore{manager: m, w: w, r: r}
}

type serverStore struct {
	manager   *ServerManager
	w         http.ResponseWriter
	r         *http.Request
	id        string
	current   *model.Session
	destroyed bool
}

// cookieID returns the session id carried by the request cookie.
func (s *serverStore) cookieID() string {
	if s.id != "" {
		return s.id
	}
	cookie, err := s.r.Cookie(s.manager.opts.Name)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return ""
	}
	return cookie.Value
}

func (s *serverStore) Create(ctx context.Context, user model.User, token string) (*model.Session, error) {
	if token == "" {
		return nil, &model.SessionError{Op: "create", Err: errors.New("token is required")}
	}

	m := s.manager

	// A new login never reuses the id the browser arrived with.
	if old := s.cookieID(); old != "" && !s.destroyed {
		if err := m.repo.Delete(ctx, old); err != nil {
			m.logger.Warn().Err(err).Msg("failed to delete previous session")
		}
	}

	id := uuid.NewString()
	sess := &model.Session{User: user, Token: token, ExpiresAt: m.now().Add(m.opts.TTL)}

	if err := m.repo.Save(ctx, id, sess); err != nil {
		m.logger.Error().Err(err).Msg("failed to save session")
		return nil, &model.SessionError{Op: "create", Err: err}
	}

	http.SetCookie(s.w, m.opts.cookie(id, sess.ExpiresAt))
	s.id = id
	s.current = sess
	s.destroyed = false

	m.logger.Debug().Int64("user_id", user.ID).Msg("session created")

	out := *sess
	return &out, nil
}

func (s *serverStore) Read(ctx context.Context) (*model.Session, error) {
	if s.destroyed {
		return nil, nil
	}
	if s.current != nil {
		out := *s.current
		return &out, nil
	}

	id := s.cookieID()
	if id == "" {
		return nil, nil
	}

	sess, err := s.manager.repo.Get(ctx, id)
	if err != nil {
		s.manager.logger.Error().Err(err).Msg("failed to load session")
		return nil, &model.SessionError{Op: "read", Err: err}
	}
	if !sess.Valid() {
		return nil, nil
	}
	if sess.Expired(s.manager.now()) {
		if err := s.manager.repo.Delete(ctx, id); err != nil {
			s.manager.logger.Warn().Err(err).Msg("failed to delete expired session")
		}
		return nil, nil
	}

	s.id = id
	s.current = sess
	out := *sess
	return &out, nil
}

func (s *serverStore) Destroy(ctx context.Context) error {
	if s.destroyed {
		return nil
	}

	if id := s.cookieID(); id != "" {
		if err := s.manager.repo.Delete(ctx, id); err != nil {
			s.manager.logger.Error().Err(err).Msg("failed to delete session")
			return &model.SessionError{Op: "destroy", Err: err}
		}
	}

	http.SetCookie(s.w, s.manager.opts.expired())
	s.id = ""
	s.current = nil
	s.destroyed = true
	return nil
}
