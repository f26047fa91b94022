package rag_service

import "strings"

// stopWords are articles, prepositions, conjunctions and generic
// request verbs that carry no retrieval signal.
var stopWords = map[string]struct{}{
	"and": {}, "or": {}, "the": {}, "a": {}, "an": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {},
	"of": {}, "with": {}, "by": {}, "about": {},
	"explain": {}, "me": {},
}

// ExtractSearchTerms lowercases the topic, splits it on whitespace and
// drops stop words. Order of appearance is preserved and duplicates are
// kept. The result may be empty; callers must treat that as "no
// retrievable context" rather than an error.
func ExtractSearchTerms(topic string) []string {
	tokens := strings.Fields(strings.ToLower(topic))
	terms := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, skip := stopWords[token]; skip {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}
