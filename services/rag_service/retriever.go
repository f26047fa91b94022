package rag_service

import (
	"context"
	"log/slog"

	"github.com/pandyaved98/dotkonekt/searchindex"
)

// Searcher is the ranked-search capability the retriever queries.
type Searcher interface {
	Search(ctx context.Context, query map[string]interface{}) ([]searchindex.Hit, error)
}

// ContextRetriever collects relevant passages for each search term and
// aggregates them across terms.
type ContextRetriever struct {
	searcher Searcher
	limit    int
	logger   *slog.Logger
}

func NewContextRetriever(searcher Searcher, limit int, logger *slog.Logger) *ContextRetriever {
	if limit <= 0 {
		limit = 5
	}
	return &ContextRetriever{
		searcher: searcher,
		limit:    limit,
		logger:   logger,
	}
}

// Retrieve returns the content of ranked hits for a single term. Hits
// missing a content field are skipped. A failed or empty search yields
// no passages; evidence gaps for one term are expected and recoverable
// by aggregation across the remaining terms.
func (r *ContextRetriever) Retrieve(ctx context.Context, term string) []string {
	hits, err := r.searcher.Search(ctx, searchindex.RelevanceQuery(term, r.limit))
	if err != nil {
		r.logger.Error("Error getting context",
			slog.String("term", term),
			slog.String("error", err.Error()))
		return nil
	}

	passages := make([]string, 0, len(hits))
	for _, hit := range hits {
		content, ok := hit.Source["content"].(string)
		if !ok {
			continue
		}
		passages = append(passages, content)
	}
	return passages
}

// RetrieveAll queries each term in order, concatenates the per-term
// results and deduplicates them by exact string equality while
// preserving first-occurrence order. An empty result is a terminal
// no-context condition for the generation path, not a retryable error.
func (r *ContextRetriever) RetrieveAll(ctx context.Context, terms []string) []string {
	seen := make(map[string]struct{})
	var unique []string
	for _, term := range terms {
		for _, passage := range r.Retrieve(ctx, term) {
			if _, dup := seen[passage]; dup {
				continue
			}
			seen[passage] = struct{}{}
			unique = append(unique, passage)
		}
	}
	return unique
}
