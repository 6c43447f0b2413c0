package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies failures for callers and transports.
type Kind string

const (
	Internal      Kind = "INTERNAL"
	NotFound      Kind = "NOT_FOUND"
	Unauthorized  Kind = "UNAUTHORIZED"
	Forbidden     Kind = "FORBIDDEN"
	InvalidInput  Kind = "INVALID_INPUT"
	Conflict      Kind = "CONFLICT"
	PaymentFailed Kind = "PAYMENT_FAILED"
	Inconsistent  Kind = "INCONSISTENT"
)

// Error carries a Kind plus the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, apperr.Conflict) match on kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && e.Kind == k
}

// Error makes Kind usable as an errors.Is target.
func (k Kind) Error() string { return string(k) }

func E(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Msg(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// KindOf returns the outermost kind in the chain, Internal when none is set.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Message is the client-safe text for err. Internal details are hidden.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == Internal {
		return "internal error"
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

// Retryable reports whether the same request may succeed later.
func Retryable(err error) bool {
	switch KindOf(err) {
	case Conflict, PaymentFailed:
		return true
	default:
		return false
	}
}
