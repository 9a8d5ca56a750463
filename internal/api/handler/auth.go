package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kiranshivaraju/crisisapi/internal/api/response"
	"github.com/kiranshivaraju/crisisapi/internal/security"
	"github.com/kiranshivaraju/crisisapi/internal/session"
)

// DashboardPath is where the front end lands after a successful login.
const DashboardPath = "/dashboard/"

type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Token    string `json:"_token" validate:"required"`
}

type signupRequest struct {
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,min=8,max=128"`
	Token           string `json:"_token" validate:"required"`
}

// NewCSRFTokenHandler returns an http.HandlerFunc for GET /csrf-token.
func NewCSRFTokenHandler(tokens CSRFTokens) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromRequest(r)
		if sess == nil {
			response.Error(w, http.StatusInternalServerError, "Session unavailable")
			return
		}
		if err := sess.Ensure(r.Context()); err != nil {
			slog.Error("failed to start session", "error", err)
			response.Error(w, http.StatusInternalServerError, "Session unavailable")
			return
		}
		token, err := tokens.Token(sess.ID(), security.ScopeAuthenticate)
		if err != nil {
			slog.Error("failed to issue csrf token", "error", err)
			response.Error(w, http.StatusInternalServerError, "Session unavailable")
			return
		}
		response.JSON(w, map[string]string{"token": token})
	}
}

// validCSRF checks the X-CSRF-Token header against the caller's session.
func validCSRF(tokens CSRFTokens, r *http.Request) bool {
	sess := session.FromRequest(r)
	if sess == nil {
		return false
	}
	return tokens.Valid(sess.ID(), security.ScopeAuthenticate, r.Header.Get(security.CSRFHeader))
}

// NewLoginHandler returns an http.HandlerFunc for POST /api/login.
func NewLoginHandler(tokens CSRFTokens, users Users, accounts Accounts) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !validCSRF(tokens, r) {
			response.Error(w, http.StatusForbidden, "Invalid CSRF token")
			return
		}

		var req loginRequest
		if err := decodeStrict(r, &req); err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid input data")
			return
		}

		p, err := users.LoadByIdentifier(r.Context(), req.Email)
		if err != nil {
			if !errors.Is(err, security.ErrNotFound) {
				slog.Error("login lookup failed", "error", err)
			}
			response.Error(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		if p.Credential == nil || p.Credential.Password == nil ||
			!security.CheckPassword(*p.Credential.Password, req.Password) {
			response.Error(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		sess := session.FromRequest(r)
		if err := sess.Renew(r.Context()); err != nil {
			slog.Error("failed to renew session", "error", err)
			response.Error(w, http.StatusInternalServerError, "Authentication failed")
			return
		}
		if err := sess.Put(r.Context(), security.SessionEmailKey, req.Email); err != nil {
			slog.Error("failed to store session", "error", err)
			response.Error(w, http.StatusInternalServerError, "Authentication failed")
			return
		}
		if err := accounts.TouchLastConnection(r.Context(), users.HashEmail(req.Email)); err != nil {
			slog.Warn("failed to record last connection", "error", err)
		}

		response.JSON(w, map[string]any{"success": true, "redirect": DashboardPath})
	}
}

// NewSignupHandler returns an http.HandlerFunc for POST /api/signup.
func NewSignupHandler(tokens CSRFTokens, users Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !validCSRF(tokens, r) {
			response.Error(w, http.StatusForbidden, "Invalid CSRF token")
			return
		}

		var req signupRequest
		if err := decodeStrict(r, &req); err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid input data")
			return
		}
		if req.Password != req.ConfirmPassword {
			response.Error(w, http.StatusBadRequest, "Passwords do not match")
			return
		}

		hash, err := security.HashPassword(req.Password)
		if err != nil {
			slog.Error("failed to hash password", "error", err)
			response.Error(w, http.StatusInternalServerError, "Failed to create account")
			return
		}

		_, err = users.Create(r.Context(), req.Email, hash)
		switch {
		case err == nil:
			response.JSON(w, map[string]any{"success": true, "message": "Account created successfully"})
		case errors.Is(err, security.ErrConflict):
			response.Error(w, http.StatusConflict, "User already exists")
		case errors.Is(err, security.ErrTransport):
			slog.Error("signup dispatch failed", "error", err)
			response.Error(w, http.StatusInternalServerError, "Failed to send confirmation email")
		default:
			slog.Error("signup failed", "error", err)
			response.Error(w, http.StatusInternalServerError, "Failed to create account")
		}
	}
}

// NewEmailVerifyHandler returns an http.HandlerFunc for GET /email-verify.
func NewEmailVerifyHandler(users Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			response.Text(w, http.StatusBadRequest, "Missing token")
			return
		}

		err := users.Verify(r.Context(), token)
		if errors.Is(err, security.ErrInvalidToken) {
			response.Text(w, http.StatusBadRequest, "Invalid or expired verification link")
			return
		}
		if err != nil {
			slog.Error("email verification failed", "error", err)
			response.Text(w, http.StatusInternalServerError, "Verification failed")
			return
		}

		http.Redirect(w, r, security.LoginPath+"?emailVerified=true", http.StatusFound)
	}
}
