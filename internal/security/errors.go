package security

import "errors"

// Kind classifies an authentication failure.
type Kind int

const (
	KindNoCredential Kind = iota + 1
	KindUnknownOrInactiveKey
	KindInvalidSignature
	KindSessionUnavailable
	KindNoEmailInSession
)

// MessageKey is the client-facing code reported in failure responses.
func (k Kind) MessageKey() string {
	switch k {
	case KindNoCredential:
		return "No API key provided."
	case KindUnknownOrInactiveKey:
		return "Invalid API key."
	case KindInvalidSignature:
		return "Invalid docs cookie."
	case KindSessionUnavailable:
		return "Session unavailable."
	case KindNoEmailInSession:
		return "No email found in session."
	default:
		return genericMessageKey
	}
}

func (k Kind) String() string {
	switch k {
	case KindNoCredential:
		return "no_credential"
	case KindUnknownOrInactiveKey:
		return "unknown_or_inactive_key"
	case KindInvalidSignature:
		return "invalid_signature"
	case KindSessionUnavailable:
		return "session_unavailable"
	case KindNoEmailInSession:
		return "no_email_in_session"
	default:
		return "unknown"
	}
}

const genericMessageKey = "An authentication exception occurred."

// AuthError is an authentication failure of a given Kind. Two AuthErrors match
// under errors.Is when their kinds are equal.
type AuthError struct {
	Kind Kind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Err.Error()
	}
	return e.Kind.String()
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

var (
	ErrNoCredential         = &AuthError{Kind: KindNoCredential}
	ErrUnknownOrInactiveKey = &AuthError{Kind: KindUnknownOrInactiveKey}
	ErrInvalidSignature     = &AuthError{Kind: KindInvalidSignature}
	ErrSessionUnavailable   = &AuthError{Kind: KindSessionUnavailable}
	ErrNoEmailInSession     = &AuthError{Kind: KindNoEmailInSession}
)

// User provider errors.
var (
	ErrNotFound     = errors.New("user not found")
	ErrConflict     = errors.New("user already exists")
	ErrInvalidToken = errors.New("invalid verification token")
	ErrTransport    = errors.New("verification dispatch failed")
)

// MessageKey returns the client-facing code for err.
func MessageKey(err error) string {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind.MessageKey()
	}
	return genericMessageKey
}
