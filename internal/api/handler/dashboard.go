package handler

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/kiranshivaraju/crisisapi/internal/api/response"
	"github.com/kiranshivaraju/crisisapi/internal/security"
	"github.com/kiranshivaraju/crisisapi/internal/session"
	"github.com/kiranshivaraju/crisisapi/internal/store"
)

const (
	userKeyBytes         = 16
	lastConnectionFormat = "2006-01-02 15:04:05"
	// HomePath is where users land after logging out.
	HomePath = "/"
)

type dashboardView struct {
	UserEmail      string `json:"userEmail"`
	UserAPIKey     string `json:"userApiKey"`
	LastConnection string `json:"lastConnection"`
}

// NewDashboardHandler returns an http.HandlerFunc for GET /dashboard/.
func NewDashboardHandler(users Users, accounts Accounts) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := security.PrincipalFromRequest(r)

		now := time.Now()
		if err := accounts.TouchLastConnection(r.Context(), users.HashEmail(p.Identifier)); err != nil {
			slog.Warn("failed to record last connection", "error", err)
		}

		view := dashboardView{
			UserEmail:      p.Identifier,
			LastConnection: now.Format(lastConnectionFormat),
		}
		if p.Credential != nil {
			view.UserAPIKey = p.Credential.Key()
		}
		response.JSON(w, view)
	}
}

// NewGenerateUserKeyHandler returns an http.HandlerFunc for POST /dashboard/generate-api-key.
// A user holds at most one key.
func NewGenerateUserKeyHandler(users Users, accounts Accounts) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := security.PrincipalFromRequest(r)

		b := make([]byte, userKeyBytes)
		if _, err := rand.Read(b); err != nil {
			slog.Error("failed to generate api key", "error", err)
			response.Text(w, http.StatusInternalServerError, "Failed to generate API key")
			return
		}
		key := hex.EncodeToString(b)

		err := accounts.IssueKey(r.Context(), users.HashEmail(p.Identifier), key)
		switch {
		case err == nil:
			response.Text(w, http.StatusOK, key)
		case errors.Is(err, store.ErrDuplicateKey):
			response.Text(w, http.StatusConflict, "API key already exists")
		case errors.Is(err, store.ErrNotFound):
			response.Text(w, http.StatusNotFound, "User not found")
		default:
			slog.Error("failed to issue api key", "error", err)
			response.Text(w, http.StatusInternalServerError, "Failed to generate API key")
		}
	}
}

// NewLogoutHandler returns an http.HandlerFunc for GET /dashboard/logout.
func NewLogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sess := session.FromRequest(r); sess != nil {
			if err := sess.Invalidate(r.Context()); err != nil {
				slog.Warn("failed to invalidate session", "error", err)
			}
		}
		http.Redirect(w, r, HomePath, http.StatusFound)
	}
}
