package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/crisisapi/internal/api/response"
	"github.com/kiranshivaraju/crisisapi/pkg/models"
)

const keyTimeFormat = "2006-01-02 15:04:05"

// KeyAdmin manages service keys.
type KeyAdmin interface {
	Generate(ctx context.Context) (*models.Credential, error)
	Deactivate(ctx context.Context, key string) (bool, error)
	List(ctx context.Context) ([]*models.Credential, error)
}

type createKeyRequest struct {
	Name string `json:"name" validate:"omitempty,max=255"`
}

type keySummary struct {
	ID         uuid.UUID `json:"id"`
	KeyValue   string    `json:"key_value"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  string    `json:"created_at"`
	LastUsedAt *string   `json:"last_used_at"`
	UsageCount int64     `json:"usage_count"`
}

// NewCreateKeyHandler returns an http.HandlerFunc for POST /api/api-keys.
// The body is optional; name is accepted for labelling only.
func NewCreateKeyHandler(keys KeyAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createKeyRequest
		if err := decodeStrict(r, &req); err != nil && !errors.Is(err, io.EOF) {
			response.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		c, err := keys.Generate(r.Context())
		if err != nil {
			slog.Error("failed to create api key", "error", err)
			response.Error(w, http.StatusInternalServerError, "Failed to create API key")
			return
		}
		slog.Info("api key created", "key", c.MaskedKey(), "name", req.Name)

		response.WriteJSON(w, http.StatusCreated, map[string]string{
			"message":    "API Key successfully created",
			"api_key":    c.Key(),
			"created_at": c.CreatedAt.Format(keyTimeFormat),
		})
	}
}

// NewListKeysHandler returns an http.HandlerFunc for GET /api/api-keys.
// Key values are masked.
func NewListKeysHandler(keys KeyAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := keys.List(r.Context())
		if err != nil {
			slog.Error("failed to list api keys", "error", err)
			response.Error(w, http.StatusInternalServerError, "Failed to list API keys")
			return
		}

		out := make([]keySummary, 0, len(list))
		for _, c := range list {
			out = append(out, keySummary{
				ID:         c.ID,
				KeyValue:   c.MaskedKey(),
				IsActive:   c.IsActive,
				CreatedAt:  c.CreatedAt.Format(keyTimeFormat),
				LastUsedAt: formatOptional(c.LastUsedAt),
				UsageCount: c.UsageCount,
			})
		}
		response.JSON(w, out)
	}
}

// NewDeactivateKeyHandler returns an http.HandlerFunc for
// DELETE /api/api-keys/{keyValue}/deactivate.
func NewDeactivateKeyHandler(keys KeyAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, err := keys.Deactivate(r.Context(), chi.URLParam(r, "keyValue"))
		if err != nil {
			slog.Error("failed to deactivate api key", "error", err)
			response.Error(w, http.StatusInternalServerError, "Failed to deactivate API key")
			return
		}
		if !ok {
			response.Error(w, http.StatusNotFound, "API Key not found")
			return
		}
		response.JSON(w, map[string]string{"message": "API Key successfully deactivated"})
	}
}

func formatOptional(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(keyTimeFormat)
	return &s
}
