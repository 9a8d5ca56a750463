package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"
)

const (
	DocsCookieName = "api_docs"
	DocsPath       = "/api/docs"
	DocsAuthPath   = "/api/docs/auth"
	DocsCookieTTL  = time.Hour
)

// CookieSigner produces and checks "<key>.<hex hmac-sha256(key, secret)>" values.
type CookieSigner struct {
	secret []byte
}

func NewCookieSigner(secret string) *CookieSigner {
	return &CookieSigner{secret: []byte(secret)}
}

func (s *CookieSigner) Sign(key string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *CookieSigner) Value(key string) string {
	return key + "." + s.Sign(key)
}

// Parse splits value on its first "." and returns the key when the signature matches.
func (s *CookieSigner) Parse(value string) (string, error) {
	key, sig, ok := strings.Cut(value, ".")
	if !ok {
		return "", ErrInvalidSignature
	}
	if !hmac.Equal([]byte(s.Sign(key)), []byte(sig)) {
		return "", ErrInvalidSignature
	}
	return key, nil
}

// DocsCookie builds the docs cookie for key, valid for DocsCookieTTL from now.
func (s *CookieSigner) DocsCookie(key string, secure bool, now time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     DocsCookieName,
		Value:    s.Value(key),
		Path:     DocsPath,
		MaxAge:   int(DocsCookieTTL.Seconds()),
		Expires:  now.Add(DocsCookieTTL).UTC(),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// IsSecure reports whether r arrived over TLS, directly or via a terminating proxy.
func IsSecure(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func underDocs(path string) bool {
	return path == DocsPath || strings.HasPrefix(path, DocsPath+"/")
}
