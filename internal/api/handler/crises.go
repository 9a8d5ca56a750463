package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kiranshivaraju/crisisapi/internal/api/response"
	"github.com/kiranshivaraju/crisisapi/internal/openapi"
	"github.com/kiranshivaraju/crisisapi/internal/store"
	"github.com/kiranshivaraju/crisisapi/pkg/models"
)

const fetchError = "Error fetching crises"

// NewListCrisesHandler returns an http.HandlerFunc for GET /api/crises/.
func NewListCrisesHandler(crises store.CrisisStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := store.CrisisFilter{Type: q.Get("type")}

		var err error
		if filter.Page, err = intParam(q.Get("page")); err != nil {
			response.Error(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		if filter.Limit, err = intParam(q.Get("limit")); err != nil {
			response.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter = filter.Normalize()

		items, total, err := crises.ListCrises(r.Context(), filter)
		if err != nil {
			slog.Error("failed to list crises", "error", err)
			response.Error(w, http.StatusInternalServerError, fetchError)
			return
		}
		if items == nil {
			items = []*models.Crisis{}
		}

		response.Collection(w, items, response.PaginationMeta{
			Page:    filter.Page,
			Limit:   filter.Limit,
			Total:   total,
			HasNext: filter.Page*filter.Limit < total,
		})
	}
}

// NewGetCrisisHandler returns an http.HandlerFunc for GET /api/crises/{id}.
func NewGetCrisisHandler(crises store.CrisisStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := crises.GetCrisis(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "Crisis not found")
			return
		}
		if err != nil {
			slog.Error("failed to get crisis", "error", err)
			response.Error(w, http.StatusInternalServerError, fetchError)
			return
		}
		response.JSON(w, c)
	}
}

// NewCrisisStatsHandler returns an http.HandlerFunc for GET /api/crises/stats.
func NewCrisisStatsHandler(crises store.CrisisStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		total, err := crises.CountCrises(r.Context())
		if err != nil {
			slog.Error("failed to count crises", "error", err)
			response.Error(w, http.StatusInternalServerError, fetchError)
			return
		}
		response.JSON(w, map[string]any{
			"name":         openapi.Title,
			"version":      openapi.Version,
			"total_crises": total,
			"available_routes": map[string]string{
				"GET /api/crises/":                      "All financial crises, paginated",
				"GET /api/crises/{id}":                  "A single crisis",
				"GET /api/crises/search/by-type/{type}": "Crises of one type",
				"GET /api/docs":                         "API documentation",
			},
			"authentication": map[string]any{
				"required": true,
				"methods":  []string{"X-API-KEY header", "api_docs cookie (documentation only)"},
			},
		})
	}
}

// NewSearchByTypeHandler returns an http.HandlerFunc for GET /api/crises/search/by-type/{type}.
func NewSearchByTypeHandler(crises store.CrisisStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		crisisType := chi.URLParam(r, "type")

		items, err := listAllOfType(r.Context(), crises, crisisType)
		if err != nil {
			slog.Error("failed to search crises", "error", err, "type", crisisType)
			response.Error(w, http.StatusInternalServerError, "Error during search")
			return
		}

		response.JSON(w, map[string]any{
			"type":  crisisType,
			"count": len(items),
			"data":  items,
		})
	}
}

// listAllOfType walks every page of crises matching crisisType.
func listAllOfType(ctx context.Context, crises store.CrisisStore, crisisType string) ([]*models.Crisis, error) {
	items := []*models.Crisis{}
	for page := 1; ; page++ {
		batch, total, err := crises.ListCrises(ctx, store.CrisisFilter{
			Type:  crisisType,
			Page:  page,
			Limit: store.MaxPageSize,
		})
		if err != nil {
			return nil, err
		}
		items = append(items, batch...)
		if len(batch) < store.MaxPageSize || len(items) >= total {
			return items, nil
		}
	}
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.New("not a positive integer")
	}
	return n, nil
}
