package security

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	CSRFHeader = "X-CSRF-Token"
	// ScopeAuthenticate protects the login and signup endpoints.
	ScopeAuthenticate = "authenticate"
	csrfTokenTTL      = time.Hour
)

type csrfClaims struct {
	Scope     string `json:"scope"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// CSRFManager issues HS256 tokens bound to a session id and a scope.
type CSRFManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCSRFManager(secret string) *CSRFManager {
	return &CSRFManager{secret: []byte(secret), ttl: csrfTokenTTL, now: time.Now}
}

func (m *CSRFManager) Token(sessionID, scope string) (string, error) {
	if sessionID == "" {
		return "", errors.New("csrf token requires a session")
	}
	now := m.now()
	claims := csrfClaims{
		Scope:     scope,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Valid reports whether token was issued by m for sessionID and scope and has not expired.
func (m *CSRFManager) Valid(sessionID, scope, token string) bool {
	if sessionID == "" || token == "" {
		return false
	}
	var claims csrfClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return false
	}
	return claims.Scope == scope &&
		subtle.ConstantTimeCompare([]byte(claims.SessionID), []byte(sessionID)) == 1
}
