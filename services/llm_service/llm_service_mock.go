package llm_service

import (
	"context"
)

type MockLLMService struct {
	GenerateFunc func(ctx context.Context, prompt string, maxNewTokens int, params SamplingParams) (string, error)
}

func (m *MockLLMService) Generate(ctx context.Context, prompt string, maxNewTokens int, params SamplingParams) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, maxNewTokens, params)
	}
	return "mock response", nil
}
