package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrAuth       = errors.New("authentication failed")
	ErrConflict   = errors.New("conflict")
	ErrTransient  = errors.New("transient error")
)

type AppError struct {
	Err     error  // sentinel, for errors.Is
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, key string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, key),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// AuthFailed returns an AppError for a rejected credential. The message is
// deliberately a single form-level statement — we never tell the caller
// whether the email or the password was wrong.
func AuthFailed(message string) *AppError {
	return &AppError{
		Err:     ErrAuth,
		Message: message,
	}
}

func Conflict(resource, key string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict: %s", resource, key),
	}
}

// Transient returns an AppError for a failure the user can recover from by
// retrying: a network hiccup, a 5xx from the backend, a checkout-URL
// issuance that fell over. Caller state is expected to be unchanged
// afterward so the user can simply resubmit.
func Transient(message string) *AppError {
	return &AppError{
		Err:     ErrTransient,
		Message: message,
	}
}

// ValidationErrors carries field-keyed messages from a form submission the
// backend rejected. It renders inline, one message per field; fields the
// backend did not complain about keep their entered values.
type ValidationErrors struct {
	ByField map[string]string
}

func (e *ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.ByField))
}

func (e *ValidationErrors) Unwrap() error {
	return ErrValidation
}

// Fields extracts the field→message map from a validation error, whether it
// is a multi-field ValidationErrors or a single-field AppError. Returns nil
// for anything else.
func Fields(err error) map[string]string {
	var multi *ValidationErrors
	if errors.As(err, &multi) {
		return multi.ByField
	}
	var app *AppError
	if errors.As(err, &app) && errors.Is(app, ErrValidation) && app.Field != "" {
		return map[string]string{app.Field: app.Message}
	}
	return nil
}
