// Package apperr classifies failures so transports can map them to
// status codes without inspecting messages.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	UpstreamFailure Kind = iota
	InvalidArgument
	Unauthenticated
	Forbidden
	NotFound
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not found"
	default:
		return "upstream failure"
	}
}

// HTTPStatus maps a kind to the response code the API returns for it.
func (k Kind) HTTPStatus() int {
	switch k {
	case InvalidArgument:
		return http.StatusBadRequest
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

func E(kind Kind, op, msg string) error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Upstream wraps a store or media backend failure.
func Upstream(op string, err error) error {
	return &Error{Kind: UpstreamFailure, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
// Unclassified errors are upstream failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return UpstreamFailure
}

// Message returns the client-facing message for err. Upstream failures
// never expose their cause.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == UpstreamFailure {
		return "Something went wrong"
	}
	if e.Msg != "" {
		return e.Msg
	}
	return e.Kind.String()
}
