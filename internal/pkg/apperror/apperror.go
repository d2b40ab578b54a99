// Package apperror defines the caller-facing error taxonomy of the booking core.
// Every error carries a stable Kind, a machine code and a human-readable reason.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation           Kind = "validation"
	KindRoomUnavailable      Kind = "room_unavailable"
	KindInvalidTransition    Kind = "invalid_transition"
	KindNotFound             Kind = "not_found"
	KindUnavailable          Kind = "unavailable"
	KindNotificationDispatch Kind = "notification_dispatch_failure"
)

type Error struct {
	Kind   Kind
	Code   string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind and, when the target has one, by code.
// The exported sentinels below therefore match every error of their kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Code == "" || t.Code == e.Code)
}

var (
	ErrValidation           = &Error{Kind: KindValidation, Reason: "validation error"}
	ErrRoomUnavailable      = &Error{Kind: KindRoomUnavailable, Reason: "room unavailable"}
	ErrInvalidTransition    = &Error{Kind: KindInvalidTransition, Reason: "invalid status transition"}
	ErrNotFound             = &Error{Kind: KindNotFound, Reason: "not found"}
	ErrUnavailable          = &Error{Kind: KindUnavailable, Reason: "service temporarily unavailable"}
	ErrNotificationDispatch = &Error{Kind: KindNotificationDispatch, Reason: "notification dispatch failed"}
)

func New(kind Kind, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Reason: fmt.Sprintf(format, args...)}
}

func Validation(code, format string, args ...any) *Error {
	return New(KindValidation, code, format, args...)
}

func RoomUnavailable(code, format string, args ...any) *Error {
	return New(KindRoomUnavailable, code, format, args...)
}

func InvalidTransition(from, to fmt.Stringer) *Error {
	return New(KindInvalidTransition, "INVALID_TRANSITION",
		"cannot move booking from %s to %s", from, to)
}

func NotFound(entity string, id any) *Error {
	return New(KindNotFound, "NOT_FOUND", "%s %v not found", entity, id)
}

func Unavailable(err error) *Error {
	return &Error{Kind: KindUnavailable, Code: "UNAVAILABLE", Reason: "storage did not respond in time, retry the operation", Err: err}
}

func NotificationDispatch(err error) *Error {
	return &Error{Kind: KindNotificationDispatch, Code: "NOTIFICATION_DISPATCH_FAILURE", Reason: "notification could not be stored", Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when there
// is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
