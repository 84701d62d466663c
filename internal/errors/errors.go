// Package errors provides the structured error taxonomy of the rollcall
// client. Every failure that crosses an operation boundary is one of these
// kinds; the session controller converts them into user-facing messages.
package errors

import (
	"errors"
	"fmt"
)

// Kind represents the category of error for classification and metrics.
type Kind string

const (
	// KindValidation indicates invalid input detected before any network call.
	KindValidation Kind = "validation"
	// KindAuth indicates a rejected or unreachable register/login call.
	KindAuth Kind = "auth"
	// KindSessionExpired indicates an authenticated call rejected with 401.
	// It is the only kind with a mandated side effect: local session teardown.
	KindSessionExpired Kind = "session_expired"
	// KindFetch indicates any other attendance-retrieval failure.
	KindFetch Kind = "fetch"
	// KindStorage indicates a persistence read/write failure. Non-fatal: the
	// session proceeds in memory-only mode for that operation.
	KindStorage Kind = "storage"
	// KindUnknown is returned by KindOf for errors outside the taxonomy.
	KindUnknown Kind = "unknown"
)

// Error is a structured error with kind, user-facing message, and cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// ValidationError creates a validation error. It never reaches the HTTP
// boundary.
func ValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// AuthError creates an auth error carrying the server-supplied message when
// present, or a generic fallback. Network failures and application-level
// rejections share this kind; callers inspecting Cause can tell them apart.
func AuthError(message string, cause error) *Error {
	return &Error{Kind: KindAuth, Message: message, Cause: cause}
}

// SessionExpiredError creates the 401 classification error.
func SessionExpiredError() *Error {
	return &Error{Kind: KindSessionExpired, Message: "session expired, please log in again"}
}

// FetchError creates an attendance-retrieval error.
func FetchError(message string, cause error) *Error {
	return &Error{Kind: KindFetch, Message: message, Cause: cause}
}

// StorageError creates a persistence failure error.
func StorageError(message string, cause error) *Error {
	return &Error{Kind: KindStorage, Message: message, Cause: cause}
}

// KindOf classifies any error, returning KindUnknown for errors outside the
// taxonomy.
func KindOf(err error) Kind {
	var structured *Error
	if errors.As(err, &structured) {
		return structured.Kind
	}
	return KindUnknown
}

// IsKind reports whether err classifies as the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// UserMessage extracts the user-facing message of a structured error, or a
// generic fallback for anything else.
func UserMessage(err error) string {
	var structured *Error
	if errors.As(err, &structured) {
		return structured.Message
	}
	return "something went wrong, please try again"
}
