package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error for logging and transport mapping.
type Kind int

const (
	// KindValidation marks malformed or missing request input.
	KindValidation Kind = iota
	// KindAuthentication marks bad credentials, unknown subjects, and stale
	// or mismatched refresh tokens.
	KindAuthentication
	// KindAuthorization marks missing, invalid, or expired access tokens.
	KindAuthorization
	// KindConflict marks duplicate resource creation.
	KindConflict
	// KindNotFound marks lookups of resources that do not exist.
	KindNotFound
	// KindInternal marks infrastructure failures (hashing, signing, storage).
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the single error type crossing service boundaries. Message is the
// only text ever serialized to a client; Err holds the internal cause for
// logs.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with an explicit status, for the cases where the
// transport status diverges from the kind's default.
func New(kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message}
}

// Validation reports malformed input. Always raised before any mutation.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: message}
}

// Authentication reports a credential failure with a deliberately generic
// message so unknown-user and wrong-password are indistinguishable.
func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Status: http.StatusBadRequest, Message: message}
}

// StaleToken reports a refresh token that no longer matches the stored
// value. Authentication in kind, but transported as 401 like the other
// refresh rejections.
func StaleToken(message string) *Error {
	return &Error{Kind: KindAuthentication, Status: http.StatusUnauthorized, Message: message}
}

// Authorization reports a missing or unverifiable access token.
func Authorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Status: http.StatusUnauthorized, Message: message}
}

// Conflict reports duplicate resource creation.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Status: http.StatusBadRequest, Message: message}
}

// NotFound reports a subject that could not be resolved.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: message}
}

// Internal wraps an infrastructure failure. The cause stays in logs; the
// client sees only a fixed message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Message: "internal server error", Err: err}
}

// As extracts an *Error from an error chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
