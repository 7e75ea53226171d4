package booking

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a core error so callers can decide whether to retry.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindMachineUnavailable Kind = "machine_unavailable"
	KindSlotConflict       Kind = "slot_conflict"
	KindInvalidTransition  Kind = "invalid_transition"
	KindUnauthorized       Kind = "unauthorized"
	KindValidation         Kind = "validation"
	KindTransientStore     Kind = "transient_store"
)

// Window is a half-open [Start, End) time interval.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Error is a structured core error: a kind plus a human message. SlotConflict
// errors additionally carry the conflicting reservation's window.
type Error struct {
	Kind     Kind
	Message  string
	Conflict *Window
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may usefully retry the same call.
func (e *Error) Retryable() bool {
	return e.Kind == KindTransientStore
}

// KindOf extracts the error kind, or "" for non-core errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func errNotFound(what, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", what, id)}
}

func errMachineUnavailable(id string) *Error {
	return &Error{Kind: KindMachineUnavailable, Message: fmt.Sprintf("machine %s is not available", id)}
}

func errSlotConflict(start, end time.Time) *Error {
	return &Error{
		Kind:     KindSlotConflict,
		Message:  "machine is already reserved in that period",
		Conflict: &Window{Start: start, End: end},
	}
}

func errInvalidTransition(msg string) *Error {
	return &Error{Kind: KindInvalidTransition, Message: msg}
}

func errUnauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func errValidation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func errStore(op string, err error) *Error {
	return &Error{Kind: KindTransientStore, Message: op + " failed", Err: err}
}
