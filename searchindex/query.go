package searchindex

// MinScore excludes weak matches from relevance results.
const MinScore = 0.1

// RelevanceQuery builds the ranked query used for context retrieval.
// Two alternative clauses are combined: a weighted multi-field match
// favouring content over filename metadata with fuzzy matching, and a
// plain content match with an "or" operator requiring at least 2 terms
// or 70% of terms to match. At least one clause must hit.
func RelevanceQuery(term string, limit int) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{
						"multi_match": map[string]interface{}{
							"query":                term,
							"fields":               []string{"content^3", "metadata.filename"},
							"type":                 "best_fields",
							"fuzziness":            "AUTO",
							"minimum_should_match": "30%",
						},
					},
					map[string]interface{}{
						"match": map[string]interface{}{
							"content": map[string]interface{}{
								"query":                term,
								"operator":             "or",
								"minimum_should_match": "2<70%",
							},
						},
					},
				},
				"minimum_should_match": 1,
			},
		},
		"min_score": MinScore,
		"size":      limit,
	}
}

// ScopedContentQuery builds a plain content match restricted to a single
// owner, used by the user-facing search endpoint.
func ScopedContentQuery(query, ownerID string, limit int) map[string]interface{} {
	return map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []interface{}{
					map[string]interface{}{
						"match": map[string]interface{}{"content": query},
					},
				},
				"filter": []interface{}{
					map[string]interface{}{
						"term": map[string]interface{}{"metadata.owner_id": ownerID},
					},
				},
			},
		},
	}
}
