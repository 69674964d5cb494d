// Package domainerrors provides coded errors shared across services and
// handlers. Services translate store sentinels into coded errors here; the
// HTTP layer maps codes onto status codes without inspecting error text.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for callers. Codes are part of the API surface:
// handlers map them to HTTP statuses and clients branch on them.
type Code string

const (
	// CodeBadRequest covers malformed requests (unparseable body, missing IDs).
	CodeBadRequest Code = "bad_request"
	// CodeValidation covers well-formed requests whose content is invalid.
	CodeValidation Code = "validation"
	// CodeNotFound covers lookups for entities that do not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict covers precondition failures (already paused, SLA exists,
	// duplicate workflow application).
	CodeConflict Code = "conflict"
	// CodeUnknownModule covers dispatch requests for a module type no handler
	// accepts. A configuration error, never retried.
	CodeUnknownModule Code = "unknown_module"
	// CodeConcurrencyTimeout covers bounded lock waits that expired during
	// number allocation. Transient: retry the whole dispatch.
	CodeConcurrencyTimeout Code = "concurrency_timeout"
	// CodeDuplicateNumber covers a protocol number uniqueness violation.
	// Unreachable under the locking generator; kept as a transient backstop.
	CodeDuplicateNumber Code = "duplicate_number"
	// CodeEntityCreation covers module-handler persistence failures. The
	// enclosing transaction rolls back; not retryable by default.
	CodeEntityCreation Code = "entity_creation"
	// CodeInternal covers everything else.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error, optionally wrapping a cause.
type Error struct {
	code  Code
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.msg)
}

func (e *Error) Unwrap() error { return e.cause }

// Message returns the human-readable message without code or cause.
func (e *Error) Message() string { return e.msg }

// New builds a coded error with no cause.
func New(code Code, msg string) error {
	return &Error{code: code, msg: msg}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. A nil cause
// returns nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{code: code, msg: msg, cause: err}
}

// CodeOf extracts the code from err, walking the wrap chain. Errors without a
// code report CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.code == code
	}
	return false
}

// Is is a readability alias for HasCode used at handler call sites.
func Is(err error, code Code) bool { return HasCode(err, code) }

// Transient reports whether the caller may retry the operation from scratch.
// Only lock-wait timeouts and number collisions qualify; everything else
// either fails deterministically or requires operator attention.
func Transient(err error) bool {
	code := CodeOf(err)
	return code == CodeConcurrencyTimeout || code == CodeDuplicateNumber
}
