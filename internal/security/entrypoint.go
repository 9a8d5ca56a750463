package security

import (
	"context"
	"mime"
	"net/http"
	"strings"

	"github.com/kiranshivaraju/crisisapi/internal/api/response"
)

// LoginPath is the front-end login page anonymous browsers are sent to.
const LoginPath = "/login"

// EntryPoint starts authentication for an anonymous request that reached a protected route.
type EntryPoint interface {
	Start(w http.ResponseWriter, r *http.Request, err error)
}

// APIEntryPoint redirects browsers opening the docs to the login page and
// answers everything else with a JSON 401.
type APIEntryPoint struct {
	LoginURL string
}

func NewAPIEntryPoint() *APIEntryPoint {
	return &APIEntryPoint{LoginURL: LoginPath}
}

func (e *APIEntryPoint) Start(w http.ResponseWriter, r *http.Request, _ error) {
	if r.Method == http.MethodGet && e.isDocsRequest(r) && acceptsHTML(r.Header.Get("Accept")) {
		http.Redirect(w, r, e.LoginURL, http.StatusFound)
		return
	}
	response.Failure(w, http.StatusUnauthorized, "Authentication required", "Unauthorized")
}

func (e *APIEntryPoint) isDocsRequest(r *http.Request) bool {
	if RouteName(r.Context()) == RouteAPIDoc {
		return true
	}
	return underDocs(r.URL.Path) && r.URL.Path != DocsAuthPath
}

func acceptsHTML(accept string) bool {
	accept = strings.TrimSpace(accept)
	return accept == "" || accept == "*/*" || strings.Contains(accept, "text/html")
}

// LoginEntryPoint answers XHR and JSON requests with a plain 401 and
// redirects the rest to the login page.
type LoginEntryPoint struct {
	LoginURL string
}

func NewLoginEntryPoint() *LoginEntryPoint {
	return &LoginEntryPoint{LoginURL: LoginPath}
}

func (e *LoginEntryPoint) Start(w http.ResponseWriter, r *http.Request, _ error) {
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" || wantsJSON(r) {
		response.Text(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	http.Redirect(w, r, e.LoginURL, http.StatusFound)
}

func wantsJSON(r *http.Request) bool {
	if isJSONMediaType(r.Header.Get("Content-Type")) {
		return true
	}
	accept, _, _ := strings.Cut(r.Header.Get("Accept"), ",")
	return isJSONMediaType(accept)
}

func isJSONMediaType(v string) bool {
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// RouteAPIDoc names the documentation page route.
const RouteAPIDoc = "api_doc"

type routeNameKey struct{}

// WithRouteName tags ctx with the name of the matched route.
func WithRouteName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, routeNameKey{}, name)
}

func RouteName(ctx context.Context) string {
	name, _ := ctx.Value(routeNameKey{}).(string)
	return name
}
