package model

import (
	"errors"
	"fmt"
)

// GenericErrorMessage is shown when the backend gives no usable message.
const GenericErrorMessage = "Something went wrong"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Status    int    `json:"status"`
	RequestID string `json:"requestId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON            = "INVALID_JSON"
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeAuthenticationRequired = "AUTHENTICATION_REQUIRED"
	ErrCodeSessionExpired         = "SESSION_EXPIRED"
	ErrCodeOrderNotFound          = "ORDER_NOT_FOUND"
	ErrCodeTransport              = "TRANSPORT_ERROR"
	ErrCodeAPI                    = "API_ERROR"
	ErrCodeSession                = "SESSION_ERROR"
	ErrCodeConflict               = "CONFLICT"
	ErrCodeInternalError          = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrAuthenticationRequired = NewDomainError(ErrCodeAuthenticationRequired, "You must be signed in to continue")
	ErrSessionExpired         = NewDomainError(ErrCodeSessionExpired, "Your session has expired, please sign in again")
	ErrOrderNotFound          = NewDomainError(ErrCodeOrderNotFound, "Order not found")
)

// TransportError is a network failure or a response body that is not JSON.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is a backend rejection: non-2xx status or status:false envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// ValidationError is a client-side precondition failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// SessionError reports a failure of the underlying session store.
type SessionError struct {
	Op  string
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session %s: %v", e.Op, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// IsAuthFailure reports whether err means the caller has no usable session.
func IsAuthFailure(err error) bool {
	if errors.Is(err, ErrAuthenticationRequired) || errors.Is(err, ErrSessionExpired) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 401
}
