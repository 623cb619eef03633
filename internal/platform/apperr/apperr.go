// Package apperr carries the error taxonomy shared by the domain packages and
// the HTTP boundary: not-found, validation and internal failures.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrNotFound   = errors.New("resource not found")
	ErrValidation = errors.New("validation error")
	ErrInternal   = errors.New("internal error")
)

// AppError is an error with a stable code, a caller-facing message and an
// HTTP status the boundary can map it to.
type AppError struct {
	Err        error             `json:"-"`
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	HTTPStatus int               `json:"-"`
	Details    map[string]string `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Err != nil && !isSentinel(e.Err) {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func isSentinel(err error) bool {
	return err == ErrNotFound || err == ErrValidation || err == ErrInternal
}

// NotFound creates a not found error.
func NotFound(resource string, id string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		Code:       "NOT_FOUND",
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]string{"resource": resource, "id": id},
	}
}

// Validation creates a validation error with per-field details. The message
// lists the offending fields in a stable order.
func Validation(message string, details map[string]string) *AppError {
	if message == "" {
		fields := make([]string, 0, len(details))
		for f := range details {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		message = "invalid fields: " + strings.Join(fields, ", ")
	}
	return &AppError{
		Err:        ErrValidation,
		Message:    message,
		Code:       "VALIDATION_ERROR",
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// Internal wraps an unexpected failure. The message never leaks err.
func Internal(err error) *AppError {
	return &AppError{
		Err:        err,
		Message:    "internal server error",
		Code:       "INTERNAL_ERROR",
		HTTPStatus: http.StatusInternalServerError,
	}
}

// IsValidation reports whether err is, or wraps, a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound reports whether err is, or wraps, a not-found failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// From converts any error into an *AppError, preserving one already present in
// the chain and treating everything else as internal.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, ErrNotFound) {
		return &AppError{Err: err, Message: "resource not found", Code: "NOT_FOUND", HTTPStatus: http.StatusNotFound}
	}
	return Internal(err)
}
