// Package errs defines the error taxonomy shared by the write coordinator,
// the fan-out engine, and the HTTP layer.
//
// The split matters for callers:
//   - ValidationError / PermissionError: rejected before any write, never retried.
//   - NotFoundError: the referenced document vanished; caller decides whether to re-fetch.
//   - StoreUnavailableError: transient store failure; single-document writes surface
//     it for manual retry, fan-out isolates it per recipient.
package errs

import (
	"errors"
	"fmt"
)

// FieldError points at the specific input field that failed validation.
type FieldError struct {
	Field string
	Msg   string
}

// ValidationError indicates malformed input. No write was performed.
type ValidationError struct {
	Msg    string
	Fields []FieldError
}

func (e *ValidationError) Error() string { return e.Msg }

// NewValidation builds a ValidationError with optional field detail.
func NewValidation(msg string, fields ...FieldError) error {
	return &ValidationError{Msg: msg, Fields: fields}
}

// PermissionError indicates the caller is not authorized for the target
// group or document. No write was performed.
type PermissionError struct {
	Msg string
}

func (e *PermissionError) Error() string { return e.Msg }

// NewPermission builds a PermissionError.
func NewPermission(format string, args ...any) error {
	return &PermissionError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError indicates the referenced document does not exist (or
// vanished between read and write).
type NotFoundError struct {
	Kind string // collection-ish noun: "task", "group", ...
	ID   string
}

func (e *NotFoundError) Error() string { return e.Kind + " not found: " + e.ID }

// NewNotFound builds a NotFoundError.
func NewNotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// StoreUnavailableError wraps a transient backing-store failure.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return "store unavailable during " + e.Op + ": " + e.Err.Error()
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// WrapStore wraps err as a StoreUnavailableError unless it already carries a
// taxonomy type (so NotFound from the store layer passes through unchanged).
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return err
	}
	return &StoreUnavailableError{Op: op, Err: err}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPermission reports whether err is (or wraps) a PermissionError.
func IsPermission(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsStoreUnavailable reports whether err is (or wraps) a StoreUnavailableError.
func IsStoreUnavailable(err error) bool {
	var se *StoreUnavailableError
	return errors.As(err, &se)
}
