package handler

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/kiranshivaraju/crisisapi/internal/api/response"
	"github.com/kiranshivaraju/crisisapi/internal/openapi"
	"github.com/kiranshivaraju/crisisapi/internal/security"
	"github.com/kiranshivaraju/crisisapi/internal/store"
	"github.com/kiranshivaraju/crisisapi/pkg/models"
)

// KeyLookup finds active API keys.
type KeyLookup interface {
	FindActiveByKey(ctx context.Context, keyValue string) (*models.Credential, error)
}

// NewDocsAuthHandler returns an http.HandlerFunc for POST /api/docs/auth. It
// exchanges a valid X-API-KEY header for the signed docs cookie.
func NewDocsAuthHandler(keys KeyLookup, signer *security.CookieSigner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(security.APIKeyHeader)
		if key == "" {
			response.Text(w, http.StatusBadRequest, "Missing X-API-KEY")
			return
		}

		if _, err := keys.FindActiveByKey(r.Context(), key); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				slog.Error("docs key lookup failed", "error", err)
			}
			response.Text(w, http.StatusUnauthorized, "Invalid API key")
			return
		}

		http.SetCookie(w, signer.DocsCookie(key, security.IsSecure(r), time.Now()))
		response.NoContent(w)
	}
}

var docsPage = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
  <script>
    window.ui = SwaggerUIBundle({ url: {{.SpecURL}}, dom_id: "#swagger-ui", withCredentials: true });
  </script>
</body>
</html>`))

// NewDocsPageHandler returns an http.HandlerFunc for GET /api/docs.
func NewDocsPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err := docsPage.Execute(w, map[string]string{
			"Title":   openapi.Title,
			"SpecURL": security.DocsPath + "/openapi.json",
		})
		if err != nil {
			slog.Error("failed to render docs page", "error", err)
		}
	}
}

// NewOpenAPIHandler returns an http.HandlerFunc for GET /api/docs/openapi.json.
func NewOpenAPIHandler(baseURL string) http.HandlerFunc {
	doc, err := openapi.JSON(baseURL)
	return func(w http.ResponseWriter, r *http.Request) {
		if err != nil {
			slog.Error("failed to build openapi document", "error", err)
			response.Error(w, http.StatusInternalServerError, "Documentation unavailable")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(doc)
	}
}
