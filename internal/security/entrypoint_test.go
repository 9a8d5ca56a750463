package security

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIEntryPoint(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		path      string
		accept    string
		routeName string
		redirect  bool
	}{
		{"docs page from browser", http.MethodGet, "/api/docs", "text/html,application/xhtml+xml", "", true},
		{"docs page without accept", http.MethodGet, "/api/docs", "", "", true},
		{"docs page with wildcard accept", http.MethodGet, "/api/docs", "*/*", "", true},
		{"docs subpath from browser", http.MethodGet, "/api/docs/openapi.json", "text/html", "", true},
		{"named doc route", http.MethodGet, "/documentation", "text/html", RouteAPIDoc, true},
		{"docs page asking for json", http.MethodGet, "/api/docs", "application/json", "", false},
		{"docs auth endpoint", http.MethodGet, "/api/docs/auth", "text/html", "", false},
		{"docs page via post", http.MethodPost, "/api/docs", "text/html", "", false},
		{"data endpoint from browser", http.MethodGet, "/api/crises/", "text/html", "", false},
	}

	ep := NewAPIEntryPoint()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.accept != "" {
				r.Header.Set("Accept", tt.accept)
			}
			if tt.routeName != "" {
				r = r.WithContext(WithRouteName(r.Context(), tt.routeName))
			}
			w := httptest.NewRecorder()

			ep.Start(w, r, nil)

			if tt.redirect {
				assert.Equal(t, http.StatusFound, w.Code)
				assert.Equal(t, "/login", w.Header().Get("Location"))
				return
			}
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"message":"Authentication required","error":"Unauthorized"}`, w.Body.String())
		})
	}
}

func TestLoginEntryPoint(t *testing.T) {
	ep := NewLoginEntryPoint()

	t.Run("browser is redirected", func(t *testing.T) {
		w := httptest.NewRecorder()
		ep.Start(w, httptest.NewRequest(http.MethodGet, "/dashboard/", nil), nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("xhr gets 401", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/dashboard/", nil)
		r.Header.Set("X-Requested-With", "XMLHttpRequest")
		w := httptest.NewRecorder()
		ep.Start(w, r, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Authentication required", w.Body.String())
	})

	t.Run("json content type gets 401", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/dashboard/generate-api-key", nil)
		r.Header.Set("Content-Type", "application/json; charset=utf-8")
		w := httptest.NewRecorder()
		ep.Start(w, r, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("json accept gets 401", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/dashboard/", nil)
		r.Header.Set("Accept", "application/json, text/plain, */*")
		w := httptest.NewRecorder()
		ep.Start(w, r, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
