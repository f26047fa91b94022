package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pandyaved98/dotkonekt/searchindex"
)

// SearchCapability is the subset of the index client the handler needs.
type SearchCapability interface {
	Search(ctx context.Context, query map[string]interface{}) ([]searchindex.Hit, error)
}

type SearchHandler struct {
	index  SearchCapability
	limit  int
	logger *slog.Logger
}

func NewSearchHandler(index SearchCapability, limit int, logger *slog.Logger) *SearchHandler {
	if limit <= 0 {
		limit = 5
	}
	return &SearchHandler{
		index:  index,
		limit:  limit,
		logger: logger,
	}
}

// Search runs a content query scoped to the authenticated user's passages.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)

	query := r.URL.Query().Get("query")
	if query == "" {
		writeJSONError(w, "Query parameter is required", http.StatusBadRequest)
		return
	}

	hits, err := h.index.Search(r.Context(), searchindex.ScopedContentQuery(query, user.ID, h.limit))
	if err != nil {
		h.logger.Error("Search failed",
			slog.String("query", query),
			slog.String("error", err.Error()))
		writeJSONError(w, "Search failed", http.StatusInternalServerError)
		return
	}

	results := make([]map[string]interface{}, 0, len(hits))
	for _, hit := range hits {
		results = append(results, map[string]interface{}{
			"score":  hit.Score,
			"source": hit.Source,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"total":   len(results),
	})
}
