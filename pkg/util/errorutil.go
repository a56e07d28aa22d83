package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bookticket/user-service/internal/domain"
)

// DomainError standardizes application errors for the transport layer.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// sentinels maps typed domain failures onto transport error codes.
var sentinels = []struct {
	err    error
	code   string
	status int
}{
	{domain.ErrDuplicateHandle, "DUPLICATE_HANDLE", http.StatusConflict},
	{domain.ErrDuplicateEmail, "DUPLICATE_EMAIL", http.StatusConflict},
	{domain.ErrNotFound, "NOT_FOUND", http.StatusNotFound},
	{domain.ErrBadCredentials, "BAD_CREDENTIALS", http.StatusUnauthorized},
	{domain.ErrBadSignature, "BAD_SIGNATURE", http.StatusUnauthorized},
	{domain.ErrTokenExpired, "TOKEN_EXPIRED", http.StatusUnauthorized},
	{domain.ErrRateLimited, "RATE_LIMITED", http.StatusTooManyRequests},
	{domain.ErrStoreUnavailable, "STORE_UNAVAILABLE", http.StatusServiceUnavailable},
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return &DomainError{Code: s.code, Message: s.err.Error(), HTTPStatus: s.status, Err: err}
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// MapError converts generic errors to DomainError.
func MapError(err error) error {
	return ToDomainError(err)
}
