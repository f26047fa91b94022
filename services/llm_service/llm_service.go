package llm_service

import "context"

// SamplingParams bound the generation capability's output behaviour.
// RepetitionPenalty and NoRepeatNgramSize guard against degenerate loops.
type SamplingParams struct {
	Temperature       float64
	TopP              float64
	RepetitionPenalty float64
	NoRepeatNgramSize int
	DoSample          bool
}

// DefaultSamplingParams are the settings used for grounded long-form output.
func DefaultSamplingParams() SamplingParams {
	return SamplingParams{
		Temperature:       0.6,
		TopP:              0.85,
		RepetitionPenalty: 1.2,
		NoRepeatNgramSize: 3,
		DoSample:          true,
	}
}

// LLMService is the text-generation capability boundary. Implementations
// may block for the duration of the remote model call.
type LLMService interface {
	Generate(ctx context.Context, prompt string, maxNewTokens int, params SamplingParams) (string, error)
}
