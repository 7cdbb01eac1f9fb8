package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is a local, field-scoped error; it never reaches the
// network layer.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

// NetworkError signals that the remote API could not be reached at all.
// The user is offered a manual retry; there is no automatic backoff.
type NetworkError struct {
	Err error
}

func NewNetworkError(err error) error {
	return &NetworkError{Err: err}
}

func (err NetworkError) Error() string {
	if err.Err == nil {
		return "network unavailable"
	}
	return "network unavailable: " + err.Err.Error()
}

func IsNetworkError(err error) bool {
	_, ok := errors.Cause(err).(*NetworkError)
	return ok
}

// ServerError carries a 4xx/5xx message to be surfaced verbatim to the
// user.
type ServerError struct {
	Code    int
	Message string
}

func (err ServerError) Error() string { return err.Message }

func IsServerError(err error) bool {
	_, ok := errors.Cause(err).(*ServerError)
	return ok
}

// SessionExpiredError is raised on the API's 401 sentinel; catching it
// means the session has already been cleared and the user must log in
// again.
type SessionExpiredError struct{}

func (SessionExpiredError) Error() string { return "session expired, please log in again" }

func IsSessionExpired(err error) bool {
	_, ok := errors.Cause(err).(*SessionExpiredError)
	return ok
}
