package rag_service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pandyaved98/dotkonekt/searchindex"
)

// ErrNoExtractableText signals that upstream extraction produced empty
// or unusable text. It is propagated, not retried.
var ErrNoExtractableText = errors.New("no extractable text in document")

// Embedder is the embedding capability used during ingestion.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, int, error)
}

// Indexer accepts passages for indexing and reports how many were accepted.
type Indexer interface {
	BulkIndex(ctx context.Context, passages []searchindex.Passage) (int, error)
}

// IngestResult summarises one ingestion call.
type IngestResult struct {
	Filename        string `json:"filename"`
	ChunksProcessed int    `json:"chunks_processed"`
	TotalCharacters int    `json:"total_characters"`
}

// Pipeline sequences the ingestion path (chunk, embed, index) and the
// generation path (terms, retrieval, grounded generation). It holds no
// mutable state; each invocation is independent given its inputs and
// the injected capability clients.
type Pipeline struct {
	retriever     *ContextRetriever
	generator     *GroundedGenerator
	embedder      Embedder
	indexer       Indexer
	maxChunkChars int
	logger        *slog.Logger
}

func NewPipeline(retriever *ContextRetriever, generator *GroundedGenerator, embedder Embedder, indexer Indexer, maxChunkChars int, logger *slog.Logger) *Pipeline {
	if maxChunkChars <= 0 {
		maxChunkChars = 1000
	}
	return &Pipeline{
		retriever:     retriever,
		generator:     generator,
		embedder:      embedder,
		indexer:       indexer,
		maxChunkChars: maxChunkChars,
		logger:        logger,
	}
}

// IngestText chunks extracted text, embeds each chunk and indexes the
// chunks with their metadata under the owner's tag.
func (p *Pipeline) IngestText(ctx context.Context, ownerID, filename, contentType, text string) (*IngestResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("document %q: %w", filename, ErrNoExtractableText)
	}

	chunks := BuildChunks(text, p.maxChunkChars, filename)
	uploadedAt := time.Now().UTC().Format(time.RFC3339)

	passages := make([]searchindex.Passage, 0, len(chunks))
	for _, chunk := range chunks {
		vector, _, err := p.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk %d of %q: %w", chunk.SequenceIndex, filename, err)
		}
		passages = append(passages, searchindex.Passage{
			Content: chunk.Text,
			Vector:  vector,
			Metadata: map[string]interface{}{
				"filename":         filename,
				"chunk_id":         chunk.SequenceIndex,
				"owner_id":         ownerID,
				"upload_timestamp": uploadedAt,
				"total_chunks":     len(chunks),
				"content_type":     contentType,
			},
		})
	}

	indexed, err := p.indexer.BulkIndex(ctx, passages)
	if err != nil {
		return nil, fmt.Errorf("failed to index chunks of %q: %w", filename, err)
	}

	p.logger.Info("Document ingested",
		slog.String("filename", filename),
		slog.Int("chunks", len(chunks)),
		slog.Int("indexed", indexed))

	return &IngestResult{
		Filename:        filename,
		ChunksProcessed: indexed,
		TotalCharacters: len(text),
	}, nil
}

// GenerateArticle runs the generation path for a topic. If term
// extraction or aggregated retrieval yields nothing, the generator is
// never invoked and a no-context outcome is returned.
func (p *Pipeline) GenerateArticle(ctx context.Context, topic string) (Outcome, error) {
	terms := ExtractSearchTerms(topic)
	if len(terms) == 0 {
		p.logger.Info("No search terms extracted", slog.String("topic", topic))
		return Outcome{Status: StatusNoContext, Topic: topic}, nil
	}

	passages := p.retriever.RetrieveAll(ctx, terms)
	if len(passages) == 0 {
		p.logger.Info("No relevant context found",
			slog.String("topic", topic),
			slog.Int("terms", len(terms)))
		return Outcome{Status: StatusNoContext, Topic: topic}, nil
	}

	return p.generator.Generate(ctx, topic, passages)
}

// IndexArtifact indexes a generated artifact back into the search index
// so later generations can retrieve it as context.
func (p *Pipeline) IndexArtifact(ctx context.Context, ownerID, blogID, topic string, artifact *Artifact) error {
	vector, _, err := p.embedder.Embed(ctx, artifact.Content)
	if err != nil {
		return fmt.Errorf("failed to embed generated artifact: %w", err)
	}

	_, err = p.indexer.BulkIndex(ctx, []searchindex.Passage{{
		Content: artifact.Content,
		Vector:  vector,
		Metadata: map[string]interface{}{
			"category":         "blog",
			"blog_id":          blogID,
			"owner_id":         ownerID,
			"topic":            topic,
			"upload_timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}})
	if err != nil {
		return fmt.Errorf("failed to index generated artifact: %w", err)
	}
	return nil
}
