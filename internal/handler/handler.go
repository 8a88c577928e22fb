package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"storefront/internal/checkout"
	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds request bodies read by handlers.
const maxBodyBytes = 1 << 20

// Envelope is the {error, data, status} shape every action answers with.
// Status is the backend status, zero when the backend was unreachable.
type Envelope struct {
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data"`
	Status int    `json:"status"`
}

// writeJSON writes a JSON response with the given status code. The status
// line is already sent when encoding fails, so the failure is only logged.
func writeJSON(w http.ResponseWriter, status int, data interface{}, logger zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Int("status", status).Msg("failed to encode response")
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	requestID := middleware.GetRequestID(r.Context())

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.
		Str("request_id", requestID).
		Str("code", code).
		Str("error", message).
		Int("status", status).
		Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{
		Error:     message,
		Code:      code,
		Status:    status,
		RequestID: requestID,
	}, logger)
}

// writeServiceError maps a service or orchestrator error onto a response.
// A backend 401 for a signed-in user means the token was revoked, so the
// local session is destroyed as well.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var (
		validationErr *model.ValidationError
		apiErr        *model.APIError
		transportErr  *model.TransportError
		sessionErr    *model.SessionError
	)

	switch {
	case errors.As(err, &validationErr):
		writeError(w, r, http.StatusBadRequest, model.ErrCodeValidation, validationErr.Error(), logger)
	case errors.Is(err, model.ErrAuthenticationRequired):
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeAuthenticationRequired, model.ErrAuthenticationRequired.Message, logger)
	case errors.Is(err, model.ErrOrderNotFound):
		writeError(w, r, http.StatusNotFound, model.ErrCodeOrderNotFound, model.ErrOrderNotFound.Message, logger)
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized && session.FromContext(r.Context()) != nil:
		expireSession(r, logger)
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeSessionExpired, model.ErrSessionExpired.Message, logger)
	case errors.As(err, &apiErr):
		writeError(w, r, upstreamStatus(apiErr.Status), model.ErrCodeAPI, apiErr.Message, logger)
	case errors.As(err, &transportErr):
		logger.Error().Err(err).Str("request_id", middleware.GetRequestID(r.Context())).Msg("backend unreachable")
		writeError(w, r, http.StatusBadGateway, model.ErrCodeTransport, model.GenericErrorMessage, logger)
	case errors.As(err, &sessionErr):
		logger.Error().Err(err).Str("request_id", middleware.GetRequestID(r.Context())).Msg("session store failure")
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeSession, model.GenericErrorMessage, logger)
	case errors.Is(err, checkout.ErrSubmissionInProgress),
		errors.Is(err, checkout.ErrAlreadySubmitted),
		errors.Is(err, checkout.ErrCancelled):
		writeError(w, r, http.StatusConflict, model.ErrCodeConflict, err.Error(), logger)
	default:
		logger.Error().Err(err).Str("request_id", middleware.GetRequestID(r.Context())).Msg("unexpected error")
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, model.GenericErrorMessage, logger)
	}
}

// writeResult answers with a domain action outcome. err carries local
// precondition failures; a failed Result carries the backend's.
func writeResult[T any](w http.ResponseWriter, r *http.Request, res model.Result[T], err error, logger zerolog.Logger) {
	if err != nil {
		writeServiceError(w, r, err, logger)
		return
	}

	if res.Failed() {
		if res.Status == http.StatusUnauthorized && session.FromContext(r.Context()) != nil {
			expireSession(r, logger)
			writeError(w, r, http.StatusUnauthorized, model.ErrCodeSessionExpired, model.ErrSessionExpired.Message, logger)
			return
		}
		writeJSON(w, upstreamStatus(res.Status), Envelope{Error: res.Error, Status: res.Status}, logger)
		return
	}

	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, Envelope{Data: res.Data, Status: res.Status}, logger)
}

// upstreamStatus is the HTTP status used to relay a backend failure.
func upstreamStatus(status int) int {
	if status < http.StatusBadRequest || status > 599 {
		return http.StatusBadGateway
	}
	return status
}

// expireSession destroys the request's session after the backend
// rejected its token.
func expireSession(r *http.Request, logger zerolog.Logger) {
	store := session.StoreFromContext(r.Context())
	if store == nil {
		return
	}
	if err := store.Destroy(r.Context()); err != nil {
		logger.Error().Err(err).Msg("failed to destroy expired session")
		return
	}
	logger.Info().Str("request_id", middleware.GetRequestID(r.Context())).Msg("session expired by backend")
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}

// idParam parses a positive integer path parameter.
func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, model.NewValidationError(name, "invalid "+name)
	}
	return id, nil
}
