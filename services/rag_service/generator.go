package rag_service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pandyaved98/dotkonekt/services/llm_service"
)

// InsufficientContextSentinel is the distinguished token the generation
// capability emits when the supplied context cannot ground the topic.
const InsufficientContextSentinel = "INSUFFICIENT_CONTEXT"

// promptCloseMarker ends the generation prompt; if the model echoes the
// prompt, everything up to and including the marker is stripped.
const promptCloseMarker = "Write the blog post:"

const (
	// DefaultTargetWordCount is the length generated articles converge to.
	DefaultTargetWordCount = 800
	firstPassMaxNewTokens  = 1500
)

// Artifact is a finished grounded generation result. WordCount is the
// literal whitespace-delimited token count of Content.
type Artifact struct {
	Content            string `json:"content"`
	WordCount          int    `json:"word_count"`
	SourcePassageCount int    `json:"source_passage_count"`
}

// Outcome statuses for the generation path. Insufficient evidence is an
// expected, frequent result and is modelled as a value, not an error.
const (
	StatusGenerated           = "generated"
	StatusNoContext           = "no_context"
	StatusInsufficientContext = "insufficient_context"
)

// Outcome is the tagged result of a generation attempt. Artifact is
// non-nil only when Status is StatusGenerated.
type Outcome struct {
	Status   string
	Topic    string
	Artifact *Artifact
}

// GroundedGenerator produces long-form text constrained to retrieved
// context, detecting insufficient evidence and converging output length
// to the configured target word count.
type GroundedGenerator struct {
	llm               llm_service.LLMService
	targetWordCount   int
	contextCharBudget int
	logger            *slog.Logger
}

func NewGroundedGenerator(llm llm_service.LLMService, targetWordCount, contextCharBudget int, logger *slog.Logger) *GroundedGenerator {
	if targetWordCount <= 0 {
		targetWordCount = DefaultTargetWordCount
	}
	if contextCharBudget <= 0 {
		contextCharBudget = 2000
	}
	return &GroundedGenerator{
		llm:               llm,
		targetWordCount:   targetWordCount,
		contextCharBudget: contextCharBudget,
		logger:            logger,
	}
}

// Generate runs one grounded generation pass for the topic over the
// supplied passages. The sentinel check runs on the raw model output
// before any cleanup, since cleanup could otherwise bury the sentinel
// inside valid-looking prose. Length correction is a single bounded
// round: over-length output is hard-truncated, under-length output gets
// exactly one continuation call before the final truncation.
func (g *GroundedGenerator) Generate(ctx context.Context, topic string, passages []string) (Outcome, error) {
	if len(passages) == 0 {
		return Outcome{Status: StatusNoContext, Topic: topic}, nil
	}

	prompt := g.buildPrompt(topic, passages)
	raw, err := g.llm.Generate(ctx, prompt, firstPassMaxNewTokens, llm_service.DefaultSamplingParams())
	if err != nil {
		return Outcome{}, fmt.Errorf("generation failed for topic %q: %w", topic, err)
	}

	if strings.Contains(raw, InsufficientContextSentinel) {
		g.logger.Info("Generation reported insufficient context",
			slog.String("topic", topic),
			slog.Int("passages", len(passages)))
		return Outcome{Status: StatusInsufficientContext, Topic: topic}, nil
	}

	content := stripPromptEcho(raw)
	words := strings.Fields(content)

	switch {
	case len(words) > g.targetWordCount:
		words = words[:g.targetWordCount]
		content = strings.Join(words, " ")
	case len(words) < g.targetWordCount:
		remaining := g.targetWordCount - len(words)
		continuation := g.buildContinuationPrompt(content, remaining)

		additional, err := g.llm.Generate(ctx, continuation, remaining*2, llm_service.DefaultSamplingParams())
		if err != nil {
			return Outcome{}, fmt.Errorf("continuation failed for topic %q: %w", topic, err)
		}

		words = strings.Fields(content + " " + additional)
		if len(words) > g.targetWordCount {
			words = words[:g.targetWordCount]
		}
		content = strings.Join(words, " ")
	}

	return Outcome{
		Status: StatusGenerated,
		Topic:  topic,
		Artifact: &Artifact{
			Content:            content,
			WordCount:          len(words),
			SourcePassageCount: len(passages),
		},
	}, nil
}

func (g *GroundedGenerator) buildPrompt(topic string, passages []string) string {
	contextText := strings.Join(passages, "\n")
	if len(contextText) > g.contextCharBudget {
		contextText = contextText[:g.contextCharBudget]
	}

	return fmt.Sprintf(`Based on ONLY the following context information, write about %s.
If you cannot find enough relevant information in the context, respond with '%s'.

CONTEXT:
%s

RULES:
1. Use ONLY information from the context
2. Do not add external knowledge
3. Write exactly %d words
4. Include technical details from context
5. Be specific and accurate
6. No general statements
7. Focus on factual content

%s`, topic, InsufficientContextSentinel, contextText, g.targetWordCount, promptCloseMarker)
}

func (g *GroundedGenerator) buildContinuationPrompt(content string, remaining int) string {
	return fmt.Sprintf(`Continue using ONLY the original context. DO NOT add new information.
Previous content: %s
Continue for %d more words:`, content, remaining)
}

// stripPromptEcho removes an echoed prompt prefix: everything up to and
// including the last occurrence of the closing marker.
func stripPromptEcho(raw string) string {
	if idx := strings.LastIndex(raw, promptCloseMarker); idx >= 0 {
		raw = raw[idx+len(promptCloseMarker):]
	}
	return strings.TrimSpace(raw)
}
