package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pandyaved98/dotkonekt/services/llm_service"
	"github.com/pandyaved98/dotkonekt/store"
)

const maxSuggestedCategories = 5

type ProductsHandler struct {
	blogs    *store.BlogStore
	products *store.ProductStore
	llm      llm_service.LLMService
	logger   *slog.Logger
}

func NewProductsHandler(blogs *store.BlogStore, products *store.ProductStore, llm llm_service.LLMService, logger *slog.Logger) *ProductsHandler {
	return &ProductsHandler{
		blogs:    blogs,
		products: products,
		llm:      llm,
		logger:   logger,
	}
}

// Recommend asks the generation capability for product categories
// matching a blog, then looks up products in those categories.
func (h *ProductsHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	blogID := r.URL.Query().Get("blog_id")
	if blogID == "" {
		writeJSONError(w, "Blog ID is required", http.StatusBadRequest)
		return
	}

	blog, err := h.blogs.FindByID(r.Context(), blogID)
	if err != nil {
		writeJSONError(w, "Blog not found", http.StatusNotFound)
		return
	}

	preview := blog.Content
	if len(preview) > 500 {
		preview = preview[:500]
	}

	prompt := fmt.Sprintf(`Based on this blog about '%s', suggest 5 specific product categories.
Blog content: %s...

Requirements:
- List only product category names
- One per line
- Focus on practical items
- Must be relevant to topic

Categories:`, blog.Topic, preview)

	params := llm_service.DefaultSamplingParams()
	params.Temperature = 0.3

	response, err := h.llm.Generate(r.Context(), prompt, 100, params)
	if err != nil {
		h.logger.Error("Category suggestion failed",
			slog.String("blog_id", blogID),
			slog.String("error", err.Error()))
		writeJSONError(w, "Product recommendation failed", http.StatusInternalServerError)
		return
	}

	categories := parseCategories(response)

	products, err := h.products.FindByCategories(r.Context(), categories, 10)
	if err != nil {
		h.logger.Error("Product lookup failed", slog.String("error", err.Error()))
		writeJSONError(w, "Product recommendation failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"products":   products,
		"blog_topic": blog.Topic,
	})
}

// parseCategories extracts category names from the model output,
// dropping echoed prompt header lines.
func parseCategories(response string) []string {
	categories := make([]string, 0, maxSuggestedCategories)
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "Based") || strings.HasPrefix(line, "Categories") ||
			strings.HasPrefix(line, "Requirements") || strings.HasPrefix(line, "Blog") {
			continue
		}
		categories = append(categories, line)
		if len(categories) == maxSuggestedCategories {
			break
		}
	}
	return categories
}
