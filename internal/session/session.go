// Package session provides server-side HTTP sessions. The browser only holds an
// opaque id cookie; values live in the cache under cache.SessionKey(id).
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/kiranshivaraju/crisisapi/internal/cache"
)

// CookieName is the name of the session id cookie.
const CookieName = "crisis_session"

const idBytes = 32

type contextKey struct{}

// Manager loads and persists sessions.
type Manager struct {
	cache  cache.Cache
	ttl    time.Duration
	secure bool
}

// NewManager creates a Manager. ttl is refreshed on every request that carries the session.
func NewManager(c cache.Cache, ttl time.Duration, secure bool) *Manager {
	return &Manager{cache: c, ttl: ttl, secure: secure}
}

// Session is the per-request view of a server-side session. A new session has
// no id until a value is stored or Ensure is called.
type Session struct {
	mgr    *Manager
	w      http.ResponseWriter
	id     string
	values map[string]string
}

// Middleware attaches a Session to every request.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.Load(w, r)
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

// Load resolves the session referenced by the request cookie. Unknown, expired or
// unreadable sessions yield a fresh, empty session.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) *Session {
	sess := &Session{mgr: m, w: w, values: map[string]string{}}

	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return sess
	}

	ctx := r.Context()
	raw, found, err := m.cache.Get(ctx, cache.SessionKey(cookie.Value))
	if err != nil {
		slog.Warn("session load failed", "error", err)
		return sess
	}
	if !found {
		return sess
	}

	values := map[string]string{}
	if err := json.Unmarshal(raw, &values); err != nil {
		slog.Warn("session payload corrupt", "error", err)
		return sess
	}

	sess.id = cookie.Value
	sess.values = values

	// Sliding expiry. The cookie is re-issued so the browser keeps it as
	// long as the cache does.
	if err := sess.save(ctx); err != nil {
		slog.Warn("session refresh failed", "error", err)
		return sess
	}
	sess.setCookie(sess.id, int(m.ttl.Seconds()))
	return sess
}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromRequest returns the session attached to r, or nil when no session
// middleware ran for the request.
func FromRequest(r *http.Request) *Session {
	sess, _ := r.Context().Value(contextKey{}).(*Session)
	return sess
}

// ID returns the session id, or "" for a session that was never persisted.
func (s *Session) ID() string { return s.id }

// Get returns the value stored under key.
func (s *Session) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Has reports whether key holds a non-empty value.
func (s *Session) Has(key string) bool {
	v, ok := s.values[key]
	return ok && v != ""
}

// Put stores value under key and persists the session, issuing the cookie if needed.
func (s *Session) Put(ctx context.Context, key, value string) error {
	s.values[key] = value
	return s.persist(ctx)
}

// Ensure persists the session so that it has a stable id.
func (s *Session) Ensure(ctx context.Context) error {
	if s.id != "" {
		return nil
	}
	return s.persist(ctx)
}

// Renew moves the session values to a fresh id and drops the old one.
func (s *Session) Renew(ctx context.Context) error {
	old := s.id
	s.id = ""
	if err := s.persist(ctx); err != nil {
		return err
	}
	if old != "" {
		if err := s.mgr.cache.Delete(ctx, cache.SessionKey(old)); err != nil {
			return fmt.Errorf("delete old session: %w", err)
		}
	}
	return nil
}

// Invalidate deletes the session and expires the cookie.
func (s *Session) Invalidate(ctx context.Context) error {
	old := s.id
	s.id = ""
	s.values = map[string]string{}
	s.setCookie("", -1)
	if old == "" {
		return nil
	}
	if err := s.mgr.cache.Delete(ctx, cache.SessionKey(old)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Session) persist(ctx context.Context) error {
	if s.id == "" {
		id, err := newID()
		if err != nil {
			return err
		}
		s.id = id
		s.setCookie(id, int(s.mgr.ttl.Seconds()))
	}
	return s.save(ctx)
}

func (s *Session) setCookie(value string, maxAge int) {
	http.SetCookie(s.w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.mgr.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Session) save(ctx context.Context) error {
	raw, err := json.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.mgr.cache.Set(ctx, cache.SessionKey(s.id), raw, s.mgr.ttl); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func newID() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
