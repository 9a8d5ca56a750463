package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	mw "github.com/kiranshivaraju/crisisapi/internal/api/middleware"
	"github.com/kiranshivaraju/crisisapi/internal/api/response"
	"github.com/kiranshivaraju/crisisapi/internal/security"
	"github.com/kiranshivaraju/crisisapi/internal/session"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Sessions  *session.Manager
	Firewall  *security.Firewall
	RateLimit *mw.RateLimit

	CORSAllowedOrigins     []string
	LoginRequestsPerMinute int

	HealthHandler      http.HandlerFunc
	CSRFTokenHandler   http.HandlerFunc
	LoginHandler       http.HandlerFunc
	SignupHandler      http.HandlerFunc
	EmailVerifyHandler http.HandlerFunc

	DocsAuthHandler http.HandlerFunc
	DocsPageHandler http.HandlerFunc
	OpenAPIHandler  http.HandlerFunc

	ListCrises   http.HandlerFunc
	CrisisStats  http.HandlerFunc
	GetCrisis    http.HandlerFunc
	SearchByType http.HandlerFunc

	DashboardHandler   http.HandlerFunc
	GenerateKeyHandler http.HandlerFunc
	LogoutHandler      http.HandlerFunc

	CreateKeyHandler     http.HandlerFunc
	ListKeysHandler      http.HandlerFunc
	DeactivateKeyHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
// Every protected route declares its roles and entry point here.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", security.APIKeyHeader, security.CSRFHeader, "X-Requested-With"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(deps.Sessions.Middleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Public routes
	r.Get("/api/health", orNotImplemented(deps.HealthHandler))
	r.Get("/csrf-token", orNotImplemented(deps.CSRFTokenHandler))
	r.Get("/email-verify", orNotImplemented(deps.EmailVerifyHandler))
	r.Post(security.DocsAuthPath, orNotImplemented(deps.DocsAuthHandler))

	r.Group(func(r chi.Router) {
		r.Use(mw.Throttle(deps.LoginRequestsPerMinute))

		r.Post("/api/login", orNotImplemented(deps.LoginHandler))
		r.Post("/api/signup", orNotImplemented(deps.SignupHandler))
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Firewall.Authenticate)
		r.Use(deps.RateLimit.Limit)

		apiUser := security.Guard(security.NewAPIEntryPoint(), security.RoleAPIUser)

		r.Group(func(r chi.Router) {
			r.Use(mw.Named(security.RouteAPIDoc))
			r.Use(apiUser)

			r.Get(security.DocsPath, orNotImplemented(deps.DocsPageHandler))
		})

		r.Group(func(r chi.Router) {
			r.Use(apiUser)

			r.Get(security.DocsPath+"/openapi.json", orNotImplemented(deps.OpenAPIHandler))

			r.Get("/api/crises/", orNotImplemented(deps.ListCrises))
			r.Get("/api/crises/stats", orNotImplemented(deps.CrisisStats))
			r.Get("/api/crises/search/by-type/{type}", orNotImplemented(deps.SearchByType))
			r.Get("/api/crises/{id}", orNotImplemented(deps.GetCrisis))
		})

		r.Group(func(r chi.Router) {
			r.Use(security.Guard(security.NewAPIEntryPoint(), security.RoleKeyAdmin))

			r.Post("/api/api-keys", orNotImplemented(deps.CreateKeyHandler))
			r.Get("/api/api-keys", orNotImplemented(deps.ListKeysHandler))
			r.Delete("/api/api-keys/{keyValue}/deactivate", orNotImplemented(deps.DeactivateKeyHandler))
		})

		r.Group(func(r chi.Router) {
			login := security.NewLoginEntryPoint()
			r.Use(security.RequireSession(login))
			r.Use(security.Guard(login, security.RoleUser))

			r.Get("/dashboard/", orNotImplemented(deps.DashboardHandler))
			r.Post("/dashboard/generate-api-key", orNotImplemented(deps.GenerateKeyHandler))
			r.Get("/dashboard/logout", orNotImplemented(deps.LogoutHandler))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "Endpoint not yet implemented")
	}
}
