package api

import (
	"github.com/kiranshivaraju/crisisapi/internal/api/handler"
	"github.com/kiranshivaraju/crisisapi/internal/apikey"
	mw "github.com/kiranshivaraju/crisisapi/internal/api/middleware"
	"github.com/kiranshivaraju/crisisapi/internal/cache"
	"github.com/kiranshivaraju/crisisapi/internal/config"
	"github.com/kiranshivaraju/crisisapi/internal/mail"
	"github.com/kiranshivaraju/crisisapi/internal/security"
	"github.com/kiranshivaraju/crisisapi/internal/session"
	"github.com/kiranshivaraju/crisisapi/internal/store"
)

// NewDependencies assembles the security layer and every handler from the
// application's collaborators. HealthHandler is left for the caller.
func NewDependencies(cfg *config.Config, s store.Store, c cache.Cache, m mail.Mailer) Dependencies {
	signer := security.NewCookieSigner(cfg.Security.Secret)
	csrf := security.NewCSRFManager(cfg.Security.Secret)
	users := security.NewUserProvider(s, m, cfg.Security.EncryptionKey)
	keys := apikey.NewService(s)

	firewall := security.NewFirewall(
		security.NewAPIKeyAuthenticator(s, signer),
		security.NewSessionAuthenticator(users.LoadByIdentifier),
	)

	return Dependencies{
		Sessions:  session.NewManager(c, cfg.Session.TTL, cfg.Session.CookieSecure),
		Firewall:  firewall,
		RateLimit: mw.NewRateLimit(c, cfg.RateLimit.RequestsPerMinute),

		CORSAllowedOrigins:     cfg.Server.CORSAllowedOrigins,
		LoginRequestsPerMinute: cfg.RateLimit.LoginRequestsPerMinute,

		CSRFTokenHandler:   handler.NewCSRFTokenHandler(csrf),
		LoginHandler:       handler.NewLoginHandler(csrf, users, s),
		SignupHandler:      handler.NewSignupHandler(csrf, users),
		EmailVerifyHandler: handler.NewEmailVerifyHandler(users),

		DocsAuthHandler: handler.NewDocsAuthHandler(s, signer),
		DocsPageHandler: handler.NewDocsPageHandler(),
		OpenAPIHandler:  handler.NewOpenAPIHandler(cfg.Server.PublicBaseURL),

		ListCrises:   handler.NewListCrisesHandler(s),
		CrisisStats:  handler.NewCrisisStatsHandler(s),
		GetCrisis:    handler.NewGetCrisisHandler(s),
		SearchByType: handler.NewSearchByTypeHandler(s),

		DashboardHandler:   handler.NewDashboardHandler(users, s),
		GenerateKeyHandler: handler.NewGenerateUserKeyHandler(users, s),
		LogoutHandler:      handler.NewLogoutHandler(),

		CreateKeyHandler:     handler.NewCreateKeyHandler(keys),
		ListKeysHandler:      handler.NewListKeysHandler(keys),
		DeactivateKeyHandler: handler.NewDeactivateKeyHandler(keys),
	}
}
