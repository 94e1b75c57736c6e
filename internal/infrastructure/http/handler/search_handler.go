package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mrops-br/shopping-browser-api/internal/app/dto"
	"github.com/mrops-br/shopping-browser-api/internal/app/service"
	"github.com/mrops-br/shopping-browser-api/internal/infrastructure/http/response"
)

// SearchHandler handles HTTP requests for the recent search list
type SearchHandler struct {
	history *service.SearchHistory
	logger  *slog.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(history *service.SearchHistory, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		history: history,
		logger:  logger,
	}
}

// ListSearches handles GET /searches
func (h *SearchHandler) ListSearches(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, dto.RecentSearchesResponse{Searches: h.history.RecentSearches()})
}

// RecordSearch handles POST /searches. Empty queries are accepted and ignored.
func (h *SearchHandler) RecordSearch(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to decode request body",
			slog.String("error", err.Error()),
		)
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	h.history.AddSearchQuery(r.Context(), req.Query)

	response.JSON(w, http.StatusOK, dto.RecentSearchesResponse{Searches: h.history.RecentSearches()})
}

// ClearSearches handles DELETE /searches
func (h *SearchHandler) ClearSearches(w http.ResponseWriter, r *http.Request) {
	h.history.Clear(r.Context())

	w.WriteHeader(http.StatusNoContent)
}
