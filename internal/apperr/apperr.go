// Package apperr classifies errors into kinds so the transport layer can map
// them onto status codes without inspecting messages.
package apperr

import "errors"

type Kind int

const (
	Internal Kind = iota
	Invalid
	Unauthenticated
	Forbidden
	Duplicate
	NotFound
	Unavailable
)

// Error carries a kind, a client-safe message and an optional cause. The
// cause is for logs and wrapping only; it never reaches the response body.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func E(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the kind anywhere in the chain; unclassified errors are
// Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Message returns the client-safe message of a classified error. Wrapped
// causes stay out of it.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal error"
}
