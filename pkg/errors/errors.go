package errors

import (
	"errors"
	"fmt"
)

var (
	// JWT and tokens
	ErrInvalidSigningMethod = fmt.Errorf("invalid token signing method")
	ErrInvalidToken         = fmt.Errorf("invalid token")
	ErrTokenExpired         = fmt.Errorf("token has expired")
	ErrTokenNotYetValid     = fmt.Errorf("token is not yet valid")

	// Authorization
	ErrEmptyAuthHeader   = fmt.Errorf("authorization header is missing")
	ErrInvalidAuthHeader = fmt.Errorf("invalid authorization header format")
	ErrUnauthorized      = fmt.Errorf("unauthorized")
	ErrForbidden         = fmt.Errorf("access denied")
	ErrUnknownRole       = fmt.Errorf("unknown role")

	// Context
	ErrPrincipalNotFoundInContext = fmt.Errorf("principal not found in request context")

	// Domain
	ErrGenerationFailed = fmt.Errorf("certificate number generation failed")

	// General
	ErrNotFound   = fmt.Errorf("record not found")
	ErrBadRequest = fmt.Errorf("bad request")
	ErrConflict   = fmt.Errorf("record already exists")
)

// ValidationError reports a missing or malformed builder/request input.
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

func NewValidationError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// PersistenceError wraps an error returned by the store on write.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Err == nil {
		return "persistence error"
	}
	return e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func NewPersistenceError(err error) error {
	if err == nil {
		return nil
	}
	var existing *PersistenceError
	if errors.As(err, &existing) {
		return err
	}
	return &PersistenceError{Err: err}
}

// GenerationFailed wraps the cause of a certificate number failure so that
// errors.Is(err, ErrGenerationFailed) holds.
func GenerationFailed(cause error) error {
	if cause == nil {
		return ErrGenerationFailed
	}
	return fmt.Errorf("%w: %v", ErrGenerationFailed, cause)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsPersistence(err error) bool {
	var p *PersistenceError
	return errors.As(err, &p)
}
