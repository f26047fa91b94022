package rag_service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/pandyaved98/dotkonekt/searchindex"
)

type mockSearcher struct {
	responses [][]searchindex.Hit
	errs      []error
	calls     int
	queries   []map[string]interface{}
}

func (m *mockSearcher) Search(ctx context.Context, query map[string]interface{}) ([]searchindex.Hit, error) {
	m.queries = append(m.queries, query)
	call := m.calls
	m.calls++
	var err error
	if call < len(m.errs) {
		err = m.errs[call]
	}
	if err != nil {
		return nil, err
	}
	if call < len(m.responses) {
		return m.responses[call], nil
	}
	return nil, nil
}

func contentHit(content string) searchindex.Hit {
	return searchindex.Hit{Score: 1.0, Source: map[string]interface{}{"content": content}}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRetrieveSkipsHitsWithoutContent(t *testing.T) {
	searcher := &mockSearcher{
		responses: [][]searchindex.Hit{{
			contentHit("first passage"),
			{Score: 0.5, Source: map[string]interface{}{"metadata": "only"}},
			{Score: 0.4, Source: map[string]interface{}{"content": 42}},
			contentHit("second passage"),
		}},
	}
	r := NewContextRetriever(searcher, 5, testLogger())

	got := r.Retrieve(context.Background(), "caching")
	want := []string{"first passage", "second passage"}

	if len(got) != len(want) {
		t.Fatalf("expected %d passages, got: %s", len(want), spew.Sdump(got))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("passage %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestRetrieveSwallowsSearchErrors(t *testing.T) {
	searcher := &mockSearcher{errs: []error{errors.New("cluster unavailable")}}
	r := NewContextRetriever(searcher, 5, testLogger())

	if got := r.Retrieve(context.Background(), "caching"); len(got) != 0 {
		t.Errorf("expected no passages on search error, got %v", got)
	}
}

func TestRetrieveAllDeduplicatesPreservingOrder(t *testing.T) {
	searcher := &mockSearcher{
		responses: [][]searchindex.Hit{
			{contentHit("alpha"), contentHit("beta")},
			{contentHit("beta"), contentHit("gamma"), contentHit("alpha")},
			{contentHit("delta")},
		},
	}
	r := NewContextRetriever(searcher, 5, testLogger())

	got := r.RetrieveAll(context.Background(), []string{"one", "two", "three"})
	want := []string{"alpha", "beta", "gamma", "delta"}

	if len(got) != len(want) {
		t.Fatalf("expected %v, got: %s", want, spew.Sdump(got))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("passage %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if searcher.calls != 3 {
		t.Errorf("expected one query per term, got %d", searcher.calls)
	}
}

func TestRetrieveAllEmptyTerms(t *testing.T) {
	searcher := &mockSearcher{}
	r := NewContextRetriever(searcher, 5, testLogger())

	if got := r.RetrieveAll(context.Background(), nil); len(got) != 0 {
		t.Errorf("expected no passages, got %v", got)
	}
	if searcher.calls != 0 {
		t.Errorf("expected no searches for no terms, got %d", searcher.calls)
	}
}

func TestRetrieveAllPartialEvidenceGaps(t *testing.T) {
	// A term with zero passages is skipped, not an error; aggregation
	// recovers from the remaining terms.
	searcher := &mockSearcher{
		responses: [][]searchindex.Hit{
			nil,
			{contentHit("only passage")},
		},
	}
	r := NewContextRetriever(searcher, 5, testLogger())

	got := r.RetrieveAll(context.Background(), []string{"missing", "present"})
	if len(got) != 1 || got[0] != "only passage" {
		t.Errorf("expected [only passage], got %v", got)
	}
}
