package rag_service

import "strings"

// Chunk is a bounded-size contiguous segment of a larger document,
// indexed independently.
type Chunk struct {
	Text             string
	SequenceIndex    int
	ParentDocumentID string
}

// ChunkText splits text into segments of at most maxChunkChars
// characters. Tokens are never split: a token's cost is its length plus
// one separator character, and when appending the next token would
// exceed the budget the current chunk is closed and a new one started.
// A single token longer than the budget is emitted whole in its own
// chunk. Empty input yields no chunks.
func ChunkText(text string, maxChunkChars int) []string {
	words := strings.Fields(text)

	var chunks []string
	var current []string
	currentSize := 0

	for _, word := range words {
		wordSize := len(word) + 1
		if currentSize+wordSize > maxChunkChars && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = []string{word}
			currentSize = wordSize
		} else {
			current = append(current, word)
			currentSize += wordSize
		}
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	return chunks
}

// BuildChunks wraps ChunkText output with sequence indexes and the
// parent document id for indexing.
func BuildChunks(text string, maxChunkChars int, parentDocumentID string) []Chunk {
	parts := ChunkText(text, maxChunkChars)
	chunks := make([]Chunk, 0, len(parts))
	for i, part := range parts {
		chunks = append(chunks, Chunk{
			Text:             part,
			SequenceIndex:    i,
			ParentDocumentID: parentDocumentID,
		})
	}
	return chunks
}
