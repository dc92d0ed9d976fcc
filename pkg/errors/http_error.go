package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// HttpError carries the status code and the user facing message; Err is the
// underlying cause and is only logged.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Details interface{}
	Context map[string]interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, details interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Details: details}
}

// FromDomain picks the HTTP status for a domain error. fallbackMessage is used
// when the error does not carry a message meant for the user.
func FromDomain(err error, fallbackMessage string) *HttpError {
	var httpErr *HttpError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return NewHttpError(http.StatusBadRequest, validationErr.Error(), err,
			map[string]string{"field": validationErr.Field})
	}

	var persistenceErr *PersistenceError
	if errors.As(err, &persistenceErr) {
		return NewHttpError(http.StatusUnprocessableEntity, persistenceErr.Error(), err, nil)
	}

	switch {
	case errors.Is(err, ErrGenerationFailed):
		return NewHttpError(http.StatusServiceUnavailable, "Could not issue a certificate number, the record was not created", err, nil)
	case errors.Is(err, ErrNotFound):
		return NewHttpError(http.StatusNotFound, "Record not found", err, nil)
	case errors.Is(err, ErrForbidden):
		return NewHttpError(http.StatusForbidden, "Access denied", err, nil)
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrTokenNotYetValid),
		errors.Is(err, ErrEmptyAuthHeader),
		errors.Is(err, ErrInvalidAuthHeader),
		errors.Is(err, ErrInvalidSigningMethod),
		errors.Is(err, ErrUnknownRole),
		errors.Is(err, ErrPrincipalNotFoundInContext):
		return NewHttpError(http.StatusUnauthorized, "Unauthorized", err, nil)
	case errors.Is(err, ErrConflict):
		return NewHttpError(http.StatusConflict, "Record already exists", err, nil)
	case errors.Is(err, ErrBadRequest):
		return NewHttpError(http.StatusBadRequest, "Bad request", err, nil)
	}

	return NewHttpError(http.StatusInternalServerError, fallbackMessage, err, nil)
}
