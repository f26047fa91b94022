package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pandyaved98/dotkonekt/services/embedding"
	"github.com/pandyaved98/dotkonekt/services/notification"
	"github.com/pandyaved98/dotkonekt/services/rag_service"
	"github.com/pandyaved98/dotkonekt/store"
)

type BlogHandler struct {
	pipeline *rag_service.Pipeline
	blogs    *store.BlogStore
	embedder *embedding.Client
	notifier *notification.SMSNotifier
	logger   *slog.Logger
}

func NewBlogHandler(pipeline *rag_service.Pipeline, blogs *store.BlogStore, embedder *embedding.Client, notifier *notification.SMSNotifier, logger *slog.Logger) *BlogHandler {
	return &BlogHandler{
		pipeline: pipeline,
		blogs:    blogs,
		embedder: embedder,
		notifier: notifier,
		logger:   logger,
	}
}

type createBlogRequest struct {
	Topic string `json:"topic"`
}

// Create runs the generation path for a topic and persists the
// resulting artifact. No-context and insufficient-context outcomes are
// user-facing "insufficient knowledge" conditions, not server errors.
func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)

	var req createBlogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Topic == "" {
		writeJSONError(w, "Topic is required", http.StatusBadRequest)
		return
	}

	outcome, err := h.pipeline.GenerateArticle(r.Context(), req.Topic)
	if err != nil {
		h.logger.Error("Blog generation failed",
			slog.String("topic", req.Topic),
			slog.String("error", err.Error()))
		writeJSONError(w, "Blog generation failed", http.StatusInternalServerError)
		return
	}

	switch outcome.Status {
	case rag_service.StatusNoContext:
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "No relevant information found",
			"message": "Cannot generate blog post as no relevant information is available in the knowledge base.",
		})
		return
	case rag_service.StatusInsufficientContext:
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "Insufficient context",
			"message": "Cannot generate blog post as the available information is not sufficient for this topic.",
		})
		return
	}

	artifact := outcome.Artifact

	vector, _, err := h.embedder.EmbedVector(r.Context(), artifact.Content)
	if err != nil {
		h.logger.Warn("Failed to embed blog content", slog.String("error", err.Error()))
	}

	blog := &store.Blog{
		ID:              uuid.NewString(),
		Topic:           req.Topic,
		Content:         artifact.Content,
		AuthorID:        user.ID,
		WordCount:       artifact.WordCount,
		SourceDocuments: artifact.SourcePassageCount,
		Embedding:       vector,
	}
	if err := h.blogs.Create(r.Context(), blog); err != nil {
		h.logger.Error("Failed to store blog", slog.String("error", err.Error()))
		writeJSONError(w, "Failed to store blog", http.StatusInternalServerError)
		return
	}

	// Feed the artifact back into the index so later topics can build on it.
	if err := h.pipeline.IndexArtifact(r.Context(), user.ID, blog.ID, req.Topic, artifact); err != nil {
		h.logger.Warn("Failed to index generated blog", slog.String("error", err.Error()))
	}

	if h.notifier != nil {
		if err := h.notifier.NotifyBlogPublished(req.Topic, artifact.WordCount); err != nil {
			h.logger.Warn("Publish notification failed", slog.String("error", err.Error()))
		}
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":               "Blog created successfully",
		"blog_id":               blog.ID,
		"content":               artifact.Content,
		"word_count":            artifact.WordCount,
		"source_documents_used": artifact.SourcePassageCount,
	})
}

// Get returns a stored blog by id.
func (h *BlogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	blog, err := h.blogs.FindByID(r.Context(), id)
	if err != nil {
		writeJSONError(w, "Blog not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"blog_id":          blog.ID,
		"topic":            blog.Topic,
		"content":          blog.Content,
		"word_count":       blog.WordCount,
		"source_documents": blog.SourceDocuments,
		"created_at":       blog.CreatedAt,
	})
}
