package security

import (
	"log/slog"
	"net/http"

	"github.com/kiranshivaraju/crisisapi/internal/api/response"
)

// Firewall runs its authenticators in order. The first one that supports the
// request decides it: success attaches the principal, failure ends the request.
// Requests no authenticator supports continue anonymously.
type Firewall struct {
	authenticators []Authenticator
}

func NewFirewall(authenticators ...Authenticator) *Firewall {
	return &Firewall{authenticators: authenticators}
}

func (f *Firewall) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, a := range f.authenticators {
			ok, err := a.Supports(r)
			if err != nil {
				fail(w, r, a, err)
				return
			}
			if !ok {
				continue
			}

			passport, err := a.Authenticate(r)
			if err != nil {
				fail(w, r, a, err)
				return
			}
			p, err := passport.Resolve(r.Context())
			if err != nil {
				fail(w, r, a, err)
				return
			}
			if a.OnSuccess(w, r, p) {
				return
			}
			r = r.WithContext(WithPrincipal(r.Context(), p))
			break
		}
		next.ServeHTTP(w, r)
	})
}

func fail(w http.ResponseWriter, r *http.Request, a Authenticator, err error) {
	slog.Warn("authentication failed",
		"path", r.URL.Path,
		"reason", MessageKey(err),
		"error", err,
	)
	a.OnFailure(w, r, err)
}

// Guard admits only principals holding every role. Anonymous requests are
// handed to ep; authenticated ones missing a role get 403.
func Guard(ep EntryPoint, roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromRequest(r)
			if p == nil {
				ep.Start(w, r, nil)
				return
			}
			for _, role := range roles {
				if !p.HasRole(role) {
					response.Error(w, http.StatusForbidden, "Access denied")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession admits only principals established by a login session.
// Anything else, including an API key principal, is handed to ep.
func RequireSession(ep EntryPoint) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromRequest(r)
			if p == nil || p.Type != PrincipalSession {
				ep.Start(w, r, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
