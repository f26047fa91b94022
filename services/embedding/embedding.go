package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pgvector/pgvector-go"
)

type request struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type response struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Client calls an OpenAI-compatible embeddings endpoint.
type Client struct {
	apiURL     string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(apiURL, apiKey, model string) *Client {
	return &Client{
		apiURL:     apiURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Embed returns the dense vector for a single text along with the token
// count the embedding service reported.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, int, error) {
	if c.apiKey == "" {
		return nil, 0, fmt.Errorf("embedding API key not set")
	}

	body, err := json.Marshal(request{Input: text, Model: c.model})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal embedding request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create HTTP request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to send HTTP request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, 0, fmt.Errorf("embedding service returned status %d: %s", resp.StatusCode, string(raw))
	}

	var embeddingResp response
	if err := json.NewDecoder(resp.Body).Decode(&embeddingResp); err != nil {
		return nil, 0, fmt.Errorf("failed to decode embedding response: %v", err)
	}

	if len(embeddingResp.Data) == 0 {
		return nil, 0, fmt.Errorf("no embedding data received")
	}

	return embeddingResp.Data[0].Embedding, embeddingResp.Usage.TotalTokens, nil
}

// EmbedVector is a convenience wrapper returning a pgvector value for
// direct storage in Postgres.
func (c *Client) EmbedVector(ctx context.Context, text string) (*pgvector.Vector, int, error) {
	raw, tokens, err := c.Embed(ctx, text)
	if err != nil {
		return nil, 0, err
	}
	v := pgvector.NewVector(raw)
	return &v, tokens, nil
}
