package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/pandyaved98/dotkonekt/services/embedding"
	"github.com/pandyaved98/dotkonekt/services/rag_service"
	"github.com/pandyaved98/dotkonekt/store"
)

type UploadHandler struct {
	pipeline  *rag_service.Pipeline
	extractor *rag_service.DocumentExtractor
	fetcher   *rag_service.WebPageFetcher
	documents *store.DocumentStore
	embedder  *embedding.Client
	maxBytes  int64
	logger    *slog.Logger
}

func NewUploadHandler(pipeline *rag_service.Pipeline, extractor *rag_service.DocumentExtractor, fetcher *rag_service.WebPageFetcher, documents *store.DocumentStore, embedder *embedding.Client, maxBytes int64, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		pipeline:  pipeline,
		extractor: extractor,
		fetcher:   fetcher,
		documents: documents,
		embedder:  embedder,
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

// Upload ingests an uploaded PDF or Word document: extract, chunk,
// embed, index, and persist the full text.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		writeJSONError(w, "Failed to parse multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "No file part in the request", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeJSONError(w, "No file selected", http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		writeJSONError(w, "Failed to read file", http.StatusInternalServerError)
		return
	}

	h.logger.Debug("Starting text extraction",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size))

	text, contentType, err := h.extractor.ExtractText(header.Filename, buf.Bytes())
	if err != nil {
		h.logger.Error("Text extraction failed",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()))
		writeJSONError(w, "Could not extract text from document", http.StatusBadRequest)
		return
	}

	h.ingest(w, r, user.ID, header.Filename, contentType, text)
}

type ingestURLRequest struct {
	URL string `json:"url"`
}

// IngestURL fetches a web page, extracts its readable text and runs it
// through the same ingestion path as uploaded documents.
func (h *UploadHandler) IngestURL(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)

	var req ingestURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeJSONError(w, "URL is required", http.StatusBadRequest)
		return
	}

	text, err := h.fetcher.FetchPageText(r.Context(), req.URL)
	if err != nil {
		h.logger.Error("Page fetch failed",
			slog.String("url", req.URL),
			slog.String("error", err.Error()))
		writeJSONError(w, "Could not extract text from page", http.StatusBadRequest)
		return
	}

	h.ingest(w, r, user.ID, req.URL, "text/html", text)
}

func (h *UploadHandler) ingest(w http.ResponseWriter, r *http.Request, ownerID, filename, contentType, text string) {
	result, err := h.pipeline.IngestText(r.Context(), ownerID, filename, contentType, text)
	if err != nil {
		if errors.Is(err, rag_service.ErrNoExtractableText) {
			writeJSONError(w, "Could not extract text from document", http.StatusBadRequest)
			return
		}
		h.logger.Error("Ingestion failed",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
		writeJSONError(w, "Upload failed", http.StatusInternalServerError)
		return
	}

	// Persist the full text with its embedding alongside the index.
	vector, _, err := h.embedder.EmbedVector(r.Context(), text)
	if err != nil {
		h.logger.Error("Failed to embed document", slog.String("error", err.Error()))
		writeJSONError(w, "Failed to generate embedding", http.StatusInternalServerError)
		return
	}

	doc := &store.Document{
		Filename:    filename,
		Content:     text,
		OwnerID:     ownerID,
		ContentType: contentType,
		Embedding:   vector,
	}
	if err := h.documents.Create(r.Context(), doc); err != nil {
		h.logger.Error("Failed to store document", slog.String("error", err.Error()))
		writeJSONError(w, "Failed to store document", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":          "Document processed successfully",
		"document_id":      doc.ID,
		"filename":         result.Filename,
		"chunks_processed": result.ChunksProcessed,
		"total_characters": result.TotalCharacters,
	})
}
