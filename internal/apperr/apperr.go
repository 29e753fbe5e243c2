// Package apperr defines the typed errors returned by services and mapped
// one-to-one onto HTTP status codes by the handlers.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidArgument
	KindUnauthenticated
	KindForbidden
	KindConflict
	KindIllegalState
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindIllegalState:
		return "illegal_state"
	default:
		return "internal"
	}
}

// Error carries a Kind, a client-safe message and an optional machine code
// such as "EmailAlreadyExists".
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches any *Error of the same kind and code, so callers can write
// errors.Is(err, apperr.ErrEmailAlreadyExists).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Code == "" || t.Code == e.Code)
}

var (
	ErrEmailAlreadyExists    = &Error{Kind: KindConflict, Code: "EmailAlreadyExists"}
	ErrUsernameAlreadyExists = &Error{Kind: KindConflict, Code: "UsernameAlreadyExists"}
	ErrPhotoAlreadyAssigned  = &Error{Kind: KindConflict, Code: "PhotoAlreadyAssigned"}
	ErrBadCredentials        = &Error{Kind: KindUnauthenticated, Code: "BadCredentials", Message: "bad credentials"}
)

func NotFound(kind string, id any) *Error {
	return &Error{Kind: KindNotFound, Code: "NotFound", Message: fmt.Sprintf("%s %v not found", kind, id)}
}

func InvalidArgument(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func IllegalState(format string, args ...any) *Error {
	return &Error{Kind: KindIllegalState, Message: fmt.Sprintf(format, args...)}
}

func Conflict(code string, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Unauthenticated(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthenticated, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the Kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
