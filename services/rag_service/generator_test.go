package rag_service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pandyaved98/dotkonekt/services/llm_service"
)

func nWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

type llmCall struct {
	prompt       string
	maxNewTokens int
}

func recordingLLM(outputs ...string) (*llm_service.MockLLMService, *[]llmCall) {
	calls := &[]llmCall{}
	mock := &llm_service.MockLLMService{
		GenerateFunc: func(ctx context.Context, prompt string, maxNewTokens int, params llm_service.SamplingParams) (string, error) {
			*calls = append(*calls, llmCall{prompt: prompt, maxNewTokens: maxNewTokens})
			idx := len(*calls) - 1
			if idx < len(outputs) {
				return outputs[idx], nil
			}
			return "", nil
		},
	}
	return mock, calls
}

func TestGenerateSentinelAbortsBeforeCleanup(t *testing.T) {
	// The sentinel must be detected on the raw output, even when buried
	// inside otherwise plausible prose.
	raw := "Some plausible prose INSUFFICIENT_CONTEXT more prose"
	llm, calls := recordingLLM(raw)
	g := NewGroundedGenerator(llm, 800, 2000, testLogger())

	outcome, err := g.Generate(context.Background(), "obscure topic", []string{"passage"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Status != StatusInsufficientContext {
		t.Errorf("expected insufficient context status, got %q", outcome.Status)
	}
	if outcome.Topic != "obscure topic" {
		t.Errorf("expected topic carried in outcome, got %q", outcome.Topic)
	}
	if outcome.Artifact != nil {
		t.Errorf("expected no artifact, got %+v", outcome.Artifact)
	}
	if len(*calls) != 1 {
		t.Errorf("expected no continuation after sentinel, got %d calls", len(*calls))
	}
}

func TestGenerateTruncatesOverlongOutput(t *testing.T) {
	llm, calls := recordingLLM(nWords(1000))
	g := NewGroundedGenerator(llm, 800, 2000, testLogger())

	outcome, err := g.Generate(context.Background(), "topic", []string{"passage"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Status != StatusGenerated {
		t.Fatalf("expected generated status, got %q", outcome.Status)
	}
	if outcome.Artifact.WordCount != 800 {
		t.Errorf("expected exactly 800 words, got %d", outcome.Artifact.WordCount)
	}
	if got := len(strings.Fields(outcome.Artifact.Content)); got != 800 {
		t.Errorf("content word count mismatch: %d", got)
	}
	if len(*calls) != 1 {
		t.Errorf("expected no continuation for overlong output, got %d calls", len(*calls))
	}
}

func TestGenerateExtendsShortOutput(t *testing.T) {
	llm, calls := recordingLLM(nWords(600), nWords(300))
	g := NewGroundedGenerator(llm, 800, 2000, testLogger())

	outcome, err := g.Generate(context.Background(), "topic", []string{"p1", "p2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Artifact.WordCount != 800 {
		t.Errorf("expected exactly 800 words after continuation, got %d", outcome.Artifact.WordCount)
	}
	if len(*calls) != 2 {
		t.Fatalf("expected exactly one continuation call, got %d calls", len(*calls))
	}

	continuation := (*calls)[1]
	if continuation.maxNewTokens != 400 {
		t.Errorf("expected continuation budget of double the shortfall (400), got %d", continuation.maxNewTokens)
	}
	if !strings.Contains(continuation.prompt, "Continue for 200 more words") {
		t.Errorf("continuation prompt missing shortfall: %q", continuation.prompt)
	}
	if !strings.Contains(continuation.prompt, "DO NOT add new information") {
		t.Errorf("continuation prompt missing grounding constraint: %q", continuation.prompt)
	}
	if outcome.Artifact.SourcePassageCount != 2 {
		t.Errorf("expected source passage count 2, got %d", outcome.Artifact.SourcePassageCount)
	}
}

func TestGenerateSinglePassContinuationAcceptsUndershoot(t *testing.T) {
	// One bounded continuation round only; a short continuation leaves
	// the final count below target.
	llm, calls := recordingLLM(nWords(600), nWords(50))
	g := NewGroundedGenerator(llm, 800, 2000, testLogger())

	outcome, err := g.Generate(context.Background(), "topic", []string{"passage"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Artifact.WordCount != 650 {
		t.Errorf("expected 650 words after short continuation, got %d", outcome.Artifact.WordCount)
	}
	if len(*calls) != 2 {
		t.Errorf("expected exactly two calls, got %d", len(*calls))
	}
}

func TestGenerateExactTargetNeedsNoCorrection(t *testing.T) {
	llm, calls := recordingLLM(nWords(800))
	g := NewGroundedGenerator(llm, 800, 2000, testLogger())

	outcome, err := g.Generate(context.Background(), "topic", []string{"passage"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Artifact.WordCount != 800 {
		t.Errorf("expected 800 words, got %d", outcome.Artifact.WordCount)
	}
	if len(*calls) != 1 {
		t.Errorf("expected a single call for exact-length output, got %d", len(*calls))
	}
}

func TestGenerateStripsPromptEcho(t *testing.T) {
	body := nWords(800)
	llm, _ := recordingLLM("echoed instructions\nWrite the blog post: " + body)
	g := NewGroundedGenerator(llm, 800, 2000, testLogger())

	outcome, err := g.Generate(context.Background(), "topic", []string{"passage"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Artifact.Content != body {
		t.Errorf("prompt echo not stripped:\nexpected %q\ngot      %q",
			body[:40], outcome.Artifact.Content[:40])
	}
}

func TestGenerateTruncatesContextToBudget(t *testing.T) {
	longPassage := strings.Repeat("x", 5000)
	llm, calls := recordingLLM(nWords(800))
	g := NewGroundedGenerator(llm, 800, 2000, testLogger())

	_, err := g.Generate(context.Background(), "topic", []string{longPassage})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := (*calls)[0].prompt
	if strings.Contains(prompt, strings.Repeat("x", 2001)) {
		t.Error("context exceeded character budget in prompt")
	}
	if !strings.Contains(prompt, strings.Repeat("x", 2000)) {
		t.Error("context prefix missing from prompt")
	}
}

func TestGenerateEmptyContext(t *testing.T) {
	llm, calls := recordingLLM()
	g := NewGroundedGenerator(llm, 800, 2000, testLogger())

	outcome, err := g.Generate(context.Background(), "topic", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Status != StatusNoContext {
		t.Errorf("expected no-context status, got %q", outcome.Status)
	}
	if len(*calls) != 0 {
		t.Errorf("generation capability must not be called without context, got %d calls", len(*calls))
	}
}

func TestGenerateCapabilityFailure(t *testing.T) {
	llm := &llm_service.MockLLMService{
		GenerateFunc: func(ctx context.Context, prompt string, maxNewTokens int, params llm_service.SamplingParams) (string, error) {
			return "", errors.New("model unavailable")
		},
	}
	g := NewGroundedGenerator(llm, 800, 2000, testLogger())

	_, err := g.Generate(context.Background(), "some topic", []string{"passage"})
	if err == nil {
		t.Fatal("expected error from capability failure")
	}
	if !strings.Contains(err.Error(), "some topic") {
		t.Errorf("error should carry the topic for the caller: %v", err)
	}
}

func TestGeneratePromptContainsGroundingRules(t *testing.T) {
	llm, calls := recordingLLM(nWords(800))
	g := NewGroundedGenerator(llm, 800, 2000, testLogger())

	_, err := g.Generate(context.Background(), "distributed caching", []string{"a passage"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := (*calls)[0].prompt
	for _, fragment := range []string{
		"ONLY the following context",
		InsufficientContextSentinel,
		"Write exactly 800 words",
		"distributed caching",
		"Write the blog post:",
	} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("prompt missing %q", fragment)
		}
	}
}
