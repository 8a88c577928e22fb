package session

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const keyInfo = "storefront session cookie v1"

var errInvalidCookie = errors.New("invalid session cookie")

// CookieManager keeps the whole session inside an encrypted, HttpOnly cookie.
type CookieManager struct {
	aead   cipher.AEAD
	opts   CookieOptions
	now    func() time.Time
	logger zerolog.Logger
}

// NewCookieManager derives the cookie key from secret.
func NewCookieManager(secret string, opts CookieOptions, logger zerolog.Logger) (*CookieManager, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("session secret must be at least 32 bytes")
	}

	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive session key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cipher: %w", err)
	}

	return &CookieManager{
		aead:   aead,
		opts:   opts.withDefaults(),
		now:    time.Now,
		logger: logger.With().Str("component", "cookie-session").Logger(),
	}, nil
}

// Bind returns the store for one request.
func (m *CookieManager) Bind(w http.ResponseWriter, r *http.Request) Store {
	return &cookieStore{manager: m, w: w, r: r}
}

func (m *CookieManager) seal(sess *model.Session) (string, error) {
	payload, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, m.aead.NonceSize(), m.aead.NonceSize()+len(payload)+m.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := m.aead.Seal(nonce, nonce, payload, []byte(m.opts.Name))
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (m *CookieManager) open(value string) (*model.Session, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, errInvalidCookie
	}
	if len(sealed) < m.aead.NonceSize() {
		return nil, errInvalidCookie
	}

	nonce, ciphertext := sealed[:m.aead.NonceSize()], sealed[m.aead.NonceSize():]
	payload, err := m.aead.Open(nil, nonce, ciphertext, []byte(m.opts.Name))
	if err != nil {
		return nil, errInvalidCookie
	}

	var sess model.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, errInvalidCookie
	}
	return &sess, nil
}

// cookieStore is a CookieManager bound to one request.
type cookieStore struct {
	manager   *CookieManager
	w         http.ResponseWriter
	r         *http.Request
	current   *model.Session
	destroyed bool
}

func (s *cookieStore) Create(ctx context.Context, user model.User, token string) (*model.Session, error) {
	if token == "" {
		return nil, &model.SessionError{Op: "create", Err: errors.New("token is required")}
	}

	m := s.manager
	sess := &model.Session{User: user, Token: token, ExpiresAt: m.now().Add(m.opts.TTL)}

	value, err := m.seal(sess)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to seal session")
		return nil, &model.SessionError{Op: "create", Err: err}
	}

	http.SetCookie(s.w, m.opts.cookie(value, sess.ExpiresAt))
	s.current = sess
	s.destroyed = false

	m.logger.Debug().Int64("user_id", user.ID).Msg("session created")

	out := *sess
	return &out, nil
}

func (s *cookieStore) Read(ctx context.Context) (*model.Session, error) {
	if s.destroyed {
		return nil, nil
	}
	if s.current != nil {
		out := *s.current
		return &out, nil
	}

	cookie, err := s.r.Cookie(s.manager.opts.Name)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	sess, err := s.manager.open(cookie.Value)
	if err != nil {
		s.manager.logger.Warn().Str("remote_addr", s.r.RemoteAddr).Msg("rejected tampered session cookie")
		return nil, nil
	}
	if !sess.Valid() || sess.Expired(s.manager.now()) {
		return nil, nil
	}

	s.current = sess
	out := *sess
	return &out, nil
}

func (s *cookieStore) Destroy(ctx context.Context) error {
	if s.destroyed {
		return nil
	}
	http.SetCookie(s.w, s.manager.opts.expired())
	s.current = nil
	s.destroyed = true
	return nil
}
