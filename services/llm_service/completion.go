package llm_service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// CompletionService calls an HF-pipeline style inference server that
// exposes raw text completion with sampling controls.
type CompletionService struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewCompletionService(apiURL, apiKey string, logger *zap.Logger) *CompletionService {
	return &CompletionService{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		logger:     logger,
	}
}

type completionRequest struct {
	Inputs     string               `json:"inputs"`
	Parameters completionParameters `json:"parameters"`
}

type completionParameters struct {
	MaxNewTokens      int     `json:"max_new_tokens"`
	Temperature       float64 `json:"temperature"`
	TopP              float64 `json:"top_p"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
	NoRepeatNgramSize int     `json:"no_repeat_ngram_size"`
	DoSample          bool    `json:"do_sample"`
}

type completionResponse struct {
	GeneratedText string `json:"generated_text"`
	Error         string `json:"error"`
}

func (s *CompletionService) Generate(ctx context.Context, prompt string, maxNewTokens int, params SamplingParams) (string, error) {
	maxRetries := 3
	retryDelay := 5 * time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		response, err := s.callCompletion(ctx, prompt, maxNewTokens, params)
		if err == nil {
			return response, nil
		}

		if attempt == maxRetries {
			s.logger.Error("Error calling generation API after multiple attempts",
				zap.Int("attempts", maxRetries),
				zap.Error(err))
			return "", fmt.Errorf("failed to call generation API after %d attempts: %w", maxRetries, err)
		}

		s.logger.Warn("Attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("retryDelay", retryDelay),
			zap.Error(err))
		time.Sleep(retryDelay)
	}

	return "", fmt.Errorf("failed to call generation API after exhausting all retry attempts")
}

func (s *CompletionService) callCompletion(ctx context.Context, prompt string, maxNewTokens int, params SamplingParams) (string, error) {
	requestBody, err := json.Marshal(completionRequest{
		Inputs: prompt,
		Parameters: completionParameters{
			MaxNewTokens:      maxNewTokens,
			Temperature:       params.Temperature,
			TopP:              params.TopP,
			RepetitionPenalty: params.RepetitionPenalty,
			NoRepeatNgramSize: params.NoRepeatNgramSize,
			DoSample:          params.DoSample,
		},
	})
	if err != nil {
		return "", fmt.Errorf("error marshaling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result completionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %w", err)
	}

	if result.Error != "" {
		return "", fmt.Errorf("generation API reported error: %s", result.Error)
	}

	return result.GeneratedText, nil
}
