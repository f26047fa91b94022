package searchindex

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// EmbeddingDimension is the width of the dense vector attached to every
// indexed passage. It must match the embedding capability's output.
const EmbeddingDimension = 1536

// Passage is a unit of text to be indexed together with its metadata
// and dense vector.
type Passage struct {
	Content  string                 `json:"content"`
	Vector   []float32              `json:"vector_field,omitempty"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Hit is a single ranked search result.
type Hit struct {
	Score  float64
	Source map[string]interface{}
}

// Client speaks the OpenSearch HTTP API for a single index.
type Client struct {
	baseURL    string
	username   string
	password   string
	index      string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL, username, password, index string, logger *slog.Logger) *Client {
	transport := &http.Transport{
		// Matches the self-signed certificate setup the search cluster
		// ships with by default.
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		index:    index,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		logger: logger,
	}
}

// EnsureIndex creates the index with its mapping if it does not exist yet.
func (c *Client) EnsureIndex(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodHead, "/"+c.index, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}
	if resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("unexpected status checking index: %d", resp.StatusCode)
	}

	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"content": map[string]interface{}{"type": "text"},
				"vector_field": map[string]interface{}{
					"type":      "knn_vector",
					"dimension": EmbeddingDimension,
				},
				"metadata": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"filename":         map[string]interface{}{"type": "keyword"},
						"chunk_id":         map[string]interface{}{"type": "integer"},
						"owner_id":         map[string]interface{}{"type": "keyword"},
						"upload_timestamp": map[string]interface{}{"type": "date"},
						"content_type":     map[string]interface{}{"type": "keyword"},
						"category":         map[string]interface{}{"type": "keyword"},
					},
				},
			},
		},
		"settings": map[string]interface{}{
			"index": map[string]interface{}{
				"knn":                      true,
				"knn.algo_param.ef_search": 100,
				"number_of_shards":         1,
				"number_of_replicas":       1,
			},
		},
	}

	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal index mapping: %w", err)
	}

	req, err = c.newRequest(ctx, http.MethodPut, "/"+c.index, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err = c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("index creation returned status %d: %s", resp.StatusCode, string(raw))
	}

	c.logger.Info("Search index created", slog.String("index", c.index))
	return nil
}

// BulkIndex indexes passages in one bulk request and returns the number
// of passages accepted by the cluster. Individual item failures are
// logged and skipped rather than failing the whole batch.
func (c *Client) BulkIndex(ctx context.Context, passages []Passage) (int, error) {
	if len(passages) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	for _, p := range passages {
		action := map[string]interface{}{
			"index": map[string]interface{}{"_index": c.index},
		}
		actionLine, err := json.Marshal(action)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal bulk action: %w", err)
		}
		sourceLine, err := json.Marshal(p)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal passage: %w", err)
		}
		buf.Write(actionLine)
		buf.WriteByte('\n')
		buf.Write(sourceLine)
		buf.WriteByte('\n')
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/_bulk", &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/x-ndjson")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("bulk indexing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("bulk indexing returned status %d: %s", resp.StatusCode, string(raw))
	}

	var result struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int `json:"status"`
			Error  *struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode bulk response: %w", err)
	}

	indexed := 0
	for _, item := range result.Items {
		for _, status := range item {
			if status.Status >= 200 && status.Status < 300 {
				indexed++
			} else if status.Error != nil {
				c.logger.Warn("Passage failed to index",
					slog.String("type", status.Error.Type),
					slog.String("reason", status.Error.Reason))
			}
		}
	}
	return indexed, nil
}

// Search executes a query body against the index and returns the ranked hits.
func (c *Client) Search(ctx context.Context, query map[string]interface{}) ([]Hit, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/"+c.index+"/_search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search returned status %d: %s", resp.StatusCode, string(raw))
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Score  float64                `json:"_score"`
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]Hit, 0, len(result.Hits.Hits))
	for _, h := range result.Hits.Hits {
		hits = append(hits, Hit{Score: h.Score, Source: h.Source})
	}
	return hits, nil
}

// DeleteOlderThan removes passages uploaded more than the given number
// of days ago and returns how many were deleted.
func (c *Client) DeleteOlderThan(ctx context.Context, days int) (int, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"range": map[string]interface{}{
				"metadata.upload_timestamp": map[string]interface{}{
					"lt": fmt.Sprintf("now-%dd", days),
				},
			},
		},
	}

	body, err := json.Marshal(query)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal delete query: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/"+c.index+"/_delete_by_query", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("delete by query request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("delete by query returned status %d: %s", resp.StatusCode, string(raw))
	}

	var result struct {
		Deleted int `json:"deleted"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode delete response: %w", err)
	}
	return result.Deleted, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	return req, nil
}
