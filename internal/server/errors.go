// Package server provides the HTTP REST API for the fraud-screening service.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/fraudguard/internal/analysis"
	"github.com/jonathan/fraudguard/internal/ingest"
	"github.com/jonathan/fraudguard/internal/store"
)

// ErrEmailAlreadyExists indicates the email is already registered.
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials.
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrAccountBlocked indicates a blocked account attempted to log in.
type ErrAccountBlocked struct{}

func (e *ErrAccountBlocked) Error() string {
	return "account is blocked"
}

// ErrUserNotFound indicates the user was not found.
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrForbidden indicates the caller may not perform the operation.
type ErrForbidden struct {
	Reason string
}

func (e *ErrForbidden) Error() string {
	return "forbidden: " + e.Reason
}

// ErrValidation indicates request validation failure.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the HTTP status code for an error.
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrEmailAlreadyExists:
		return http.StatusConflict
	case *ErrInvalidCredentials:
		return http.StatusUnauthorized
	case *ErrAccountBlocked, *ErrForbidden:
		return http.StatusForbidden
	case *ErrUserNotFound:
		return http.StatusNotFound
	case *ErrValidation:
		return http.StatusBadRequest
	}

	var verr *analysis.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	var rerr *analysis.RateLimitError
	if errors.As(err, &rerr) {
		return http.StatusTooManyRequests
	}
	var merr *analysis.MalformedResponseError
	if errors.As(err, &merr) {
		return http.StatusBadGateway
	}
	var ierr *ingest.Error
	if errors.As(err, &ierr) {
		return http.StatusBadGateway
	}

	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, store.ErrDuplicateEmail) {
		return http.StatusConflict
	}

	return http.StatusInternalServerError
}
