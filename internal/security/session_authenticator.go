package security

import (
	"net/http"

	"github.com/kiranshivaraju/crisisapi/internal/api/response"
	"github.com/kiranshivaraju/crisisapi/internal/session"
)

// SessionEmailKey is the session attribute holding the logged-in user's email.
const SessionEmailKey = "user_email"

// SessionAuthenticator authenticates requests whose session holds a user email.
type SessionAuthenticator struct {
	users UserLoader
}

func NewSessionAuthenticator(users UserLoader) *SessionAuthenticator {
	return &SessionAuthenticator{users: users}
}

func (a *SessionAuthenticator) Supports(r *http.Request) (bool, error) {
	sess := session.FromRequest(r)
	if sess == nil {
		return false, ErrSessionUnavailable
	}
	return sess.Has(SessionEmailKey), nil
}

func (a *SessionAuthenticator) Authenticate(r *http.Request) (*Passport, error) {
	sess := session.FromRequest(r)
	if sess == nil {
		return nil, ErrSessionUnavailable
	}
	email, ok := sess.Get(SessionEmailKey)
	if !ok || email == "" {
		return nil, ErrNoEmailInSession
	}
	return NewPassport(email, a.users), nil
}

func (a *SessionAuthenticator) OnSuccess(http.ResponseWriter, *http.Request, *Principal) bool {
	return false
}

func (a *SessionAuthenticator) OnFailure(w http.ResponseWriter, _ *http.Request, _ error) {
	response.Error(w, http.StatusUnauthorized, "Authentication failed")
}
