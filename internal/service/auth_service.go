package service

import (
	"context"
	"fmt"
	"net/http"

	"storefront/internal/gateway"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// authService implements AuthService.
type authService struct {
	client Caller
	logger zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(client Caller, logger zerolog.Logger) AuthService {
	return &authService{
		client: client,
		logger: logger.With().Str("service", "auth").Logger(),
	}
}

// Login signs in with email and password.
func (s *authService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthPayload, error) {
	if req.Email == "" || req.Password == "" {
		return nil, model.NewValidationError("email", "email and password are required")
	}
	return s.authenticate(ctx, "/api/auth/login", req)
}

// Register creates an account.
func (s *authService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthPayload, error) {
	switch {
	case req.Name == "":
		return nil, model.NewValidationError("name", "name is required")
	case req.Email == "":
		return nil, model.NewValidationError("email", "email is required")
	case req.Password == "":
		return nil, model.NewValidationError("password", "password is required")
	case req.Password != req.PasswordConfirmation:
		return nil, model.NewValidationError("password_confirmation", "passwords do not match")
	}
	return s.authenticate(ctx, "/api/auth/register", req)
}

func (s *authService) authenticate(ctx context.Context, path string, body any) (*model.AuthPayload, error) {
	resp, err := s.client.Call(ctx, path, gateway.Request{Method: http.MethodPost, Body: body})
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	payload, err := gateway.Decode[model.AuthPayload](resp)
	if err != nil {
		return nil, err
	}
	if payload == nil || payload.Token == "" {
		s.logger.Error().Str("path", path).Msg("auth response carried no token")
		return nil, &model.TransportError{Op: "POST " + path, Err: fmt.Errorf("%w: missing token", gateway.ErrMalformedResponse)}
	}

	s.logger.Info().Int64("user_id", payload.User.ID).Str("path", path).Msg("user authenticated")
	return payload, nil
}

// Logout revokes the session token on the backend, best effort.
func (s *authService) Logout(ctx context.Context, sess *model.Session) {
	if !sess.Valid() {
		return
	}

	resp, err := s.client.Call(ctx, "/api/auth/logout", gateway.Request{Method: http.MethodPost, Token: sess.Token})
	if err != nil {
		s.logger.Warn().Err(err).Msg("backend logout failed")
		return
	}
	if resp.Failed() {
		s.logger.Warn().Int("status", resp.Status).Str("message", resp.Error).Msg("backend rejected logout")
	}
}

// Profile returns the signed in user.
func (s *authService) Profile(ctx context.Context, sess *model.Session) (model.Result[model.User], error) {
	if err := requireSession(sess); err != nil {
		return model.Result[model.User]{}, err
	}
	return call[model.User](ctx, s.client, s.logger, "/api/auth/profile", gateway.Request{Token: sess.Token}), nil
}

// UpdateProfile changes the signed in user's details.
func (s *authService) UpdateProfile(ctx context.Context, sess *model.Session, req model.ProfileRequest) (*model.User, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	resp, err := s.client.Call(ctx, "/api/auth/profile", gateway.Request{
		Method: http.MethodPut,
		Token:  sess.Token,
		Body:   req,
	})
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	user, err := gateway.Decode[model.User](resp)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Some deployments answer with an empty body; keep the known identity.
		updated := sess.User
		if req.Name != "" {
			updated.Name = req.Name
		}
		if req.Email != "" {
			updated.Email = req.Email
		}
		if req.Phone != "" {
			updated.Phone = req.Phone
		}
		user = &updated
	}

	return user, nil
}
