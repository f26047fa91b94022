package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pandyaved98/dotkonekt/searchindex"
	"github.com/pandyaved98/dotkonekt/store"
)

type mockSearchCapability struct {
	hits    []searchindex.Hit
	err     error
	queries []map[string]interface{}
}

func (m *mockSearchCapability) Search(ctx context.Context, query map[string]interface{}) ([]searchindex.Hit, error) {
	m.queries = append(m.queries, query)
	return m.hits, m.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func authenticatedRequest(method, target string) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	ctx := context.WithValue(r.Context(), userContextKey, &store.User{ID: "user-7", Email: "dev@example.com"})
	return r.WithContext(ctx)
}

func TestSearchReturnsScopedResults(t *testing.T) {
	index := &mockSearchCapability{
		hits: []searchindex.Hit{
			{Score: 2.5, Source: map[string]interface{}{"content": "alpha"}},
			{Score: 1.2, Source: map[string]interface{}{"content": "beta"}},
		},
	}
	h := NewSearchHandler(index, 5, testLogger())

	w := httptest.NewRecorder()
	h.Search(w, authenticatedRequest(http.MethodGet, "/rag/search?query=caching"))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Results []struct {
			Score  float64                `json:"score"`
			Source map[string]interface{} `json:"source"`
		} `json:"results"`
		Total int `json:"total"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 2 || len(resp.Results) != 2 {
		t.Errorf("expected 2 results, got total=%d len=%d", resp.Total, len(resp.Results))
	}
	if resp.Results[0].Source["content"] != "alpha" {
		t.Errorf("unexpected first result: %+v", resp.Results[0])
	}

	// The query must carry the owner scope, not just the search text.
	if len(index.queries) != 1 {
		t.Fatalf("expected one search, got %d", len(index.queries))
	}
	raw, _ := json.Marshal(index.queries[0])
	var sent map[string]interface{}
	json.Unmarshal(raw, &sent)
	boolClause := sent["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filter := boolClause["filter"].([]interface{})[0].(map[string]interface{})
	term := filter["term"].(map[string]interface{})
	if term["metadata.owner_id"] != "user-7" {
		t.Errorf("expected owner scope user-7, got %v", term["metadata.owner_id"])
	}
}

func TestSearchRequiresQueryParameter(t *testing.T) {
	index := &mockSearchCapability{}
	h := NewSearchHandler(index, 5, testLogger())

	w := httptest.NewRecorder()
	h.Search(w, authenticatedRequest(http.MethodGet, "/rag/search"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if len(index.queries) != 0 {
		t.Errorf("expected no search without a query, got %d", len(index.queries))
	}
}

func TestSearchCapabilityFailure(t *testing.T) {
	index := &mockSearchCapability{err: errors.New("cluster unavailable")}
	h := NewSearchHandler(index, 5, testLogger())

	w := httptest.NewRecorder()
	h.Search(w, authenticatedRequest(http.MethodGet, "/rag/search?query=caching"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestSearchEmptyResults(t *testing.T) {
	h := NewSearchHandler(&mockSearchCapability{}, 5, testLogger())

	w := httptest.NewRecorder()
	h.Search(w, authenticatedRequest(http.MethodGet, "/rag/search?query=nothing"))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Results []interface{} `json:"results"`
		Total   int           `json:"total"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 0 {
		t.Errorf("expected total 0, got %d", resp.Total)
	}
	if resp.Results == nil {
		t.Error("expected empty array, not null results")
	}
}
