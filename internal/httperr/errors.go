// Package httperr defines the structured error kinds raised by collaborators
// and the central HTTP responder that maps them to client-safe responses.
//
// Collaborators (store, object store, generation API) return typed kinds
// instead of stringly-typed errors, so status selection at the gate boundary
// is an errors.As check rather than message sniffing.
package httperr

import (
	"fmt"
	"net/http"
)

// Kind classifies an error for HTTP status selection.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
	KindTimeout
	KindUnavailable
)

// Error carries a kind, a client-safe message, and the wrapped cause.
// The cause is logged server-side only and never written to clients.
type Error struct {
	Kind       Kind
	Msg        string
	RetryAfter int // seconds, set for KindRateLimited
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status for the error's kind.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindTimeout:
		return http.StatusRequestTimeout
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func InvalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Msg: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Msg: msg}
}

// RateLimited reports a rejected request with the seconds remaining in the
// client's window.
func RateLimited(retryAfter int) *Error {
	return &Error{Kind: KindRateLimited, Msg: "Rate limit exceeded", RetryAfter: retryAfter}
}

func Internal(msg string) *Error {
	return &Error{Kind: KindInternal, Msg: msg}
}

// Wrap attaches a kind and client-safe message to a collaborator error.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}
