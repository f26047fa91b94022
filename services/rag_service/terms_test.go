package rag_service

import (
	"strings"
	"testing"
)

func TestExtractSearchTerms(t *testing.T) {
	tests := []struct {
		name  string
		topic string
		want  []string
	}{
		{
			name:  "drops stop words and request verbs",
			topic: "Explain me about distributed caching",
			want:  []string{"distributed", "caching"},
		},
		{
			name:  "lowercases terms",
			topic: "Kubernetes Operators",
			want:  []string{"kubernetes", "operators"},
		},
		{
			name:  "preserves order and duplicates",
			topic: "caching strategies for caching layers",
			want:  []string{"caching", "strategies", "caching", "layers"},
		},
		{
			name:  "all tokens filtered",
			topic: "explain me about the",
			want:  []string{},
		},
		{
			name:  "empty topic",
			topic: "",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractSearchTerms(tt.topic)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("term %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestExtractSearchTermsIdempotent(t *testing.T) {
	first := ExtractSearchTerms("explain me about distributed caching in production")
	second := ExtractSearchTerms(strings.Join(first, " "))

	if len(first) != len(second) {
		t.Fatalf("already-filtered text lost terms: %v -> %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("term %d changed: %q -> %q", i, first[i], second[i])
		}
	}
}
