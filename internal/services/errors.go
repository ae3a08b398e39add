package services

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

// Expected, user-facing failures. Handlers map these to status codes.
var (
	ErrUnauthorized   = stderrors.New("unauthorized")
	ErrAlreadyVoted   = stderrors.New("already voted")
	ErrNotFound       = stderrors.New("not found")
	ErrInvalid        = stderrors.New("invalid input")
	ErrEmailTaken     = stderrors.New("email already registered")
	ErrBadCredentials = stderrors.New("invalid email or password")

	// ErrTransient marks storage or network failures that are not the
	// caller's fault. Nothing retries them automatically.
	ErrTransient = stderrors.New("backend unavailable")
)

type transientError struct {
	cause error
}

func (e *transientError) Error() string { return e.cause.Error() }
func (e *transientError) Unwrap() error { return e.cause }
func (e *transientError) Is(target error) bool {
	return target == ErrTransient
}

// transient wraps a backend failure with context and tags it ErrTransient.
// A nil err stays nil.
func transient(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &transientError{cause: errors.Wrap(err, msg)}
}

// invalid returns an ErrInvalid carrying a field-specific message.
func invalid(msg string) error {
	return errors.Wrap(ErrInvalid, msg)
}
