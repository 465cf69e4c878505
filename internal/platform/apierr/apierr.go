package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidArgument marks malformed caller input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMissingDocument marks an operation that needs an upload that has not happened.
	ErrMissingDocument = errors.New("missing document")
	// ErrUpstream marks a failure of an external service (OCR, generation).
	ErrUpstream = errors.New("upstream service failed")
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// Wrap attaches a sentinel to err so callers can classify it with errors.Is.
func Wrap(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// Upstream marks err as an external-service failure of op while keeping
// err itself reachable through errors.Is and errors.As.
func Upstream(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUpstream, op, err)
}

// From maps an error onto an HTTP-facing Error.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return New(http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, ErrMissingDocument):
		return New(http.StatusUnprocessableEntity, "missing_document", err)
	case errors.Is(err, ErrUpstream):
		return New(http.StatusBadGateway, "upstream_failed", err)
	default:
		return New(http.StatusInternalServerError, "internal", err)
	}
}
