package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/tmc/langchaingo/llms"

	"github.com/docchat-labs/docchat/internal/metrics"
)

type fakeLLM struct {
	resp *llms.ContentResponse
	err  error
}

func (f *fakeLLM) GenerateContent(_ context.Context, _ []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	return f.resp, f.err
}

func (f *fakeLLM) Call(_ context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return "", nil
}

func TestTokenUsage(t *testing.T) {
	tests := []struct {
		name    string
		info    map[string]any
		wantIn  int64
		wantOut int64
	}{
		{"nil info", nil, 0, 0},
		{"openai keys", map[string]any{"PromptTokens": 12, "CompletionTokens": 34, "TotalTokens": 46}, 12, 34},
		{"anthropic keys", map[string]any{"InputTokens": 7, "OutputTokens": 3}, 7, 3},
		{"float values", map[string]any{"PromptTokens": float64(5), "CompletionTokens": float64(9)}, 5, 9},
		{"unrelated keys ignored", map[string]any{"FinishReason": "stop"}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, out := tokenUsage(tt.info)
			if in != tt.wantIn || out != tt.wantOut {
				t.Errorf("tokenUsage = (%d, %d), want (%d, %d)", in, out, tt.wantIn, tt.wantOut)
			}
		})
	}
}

func TestGenerateMessagesRecordsUsage(t *testing.T) {
	stats := metrics.NewCollector()
	m := &Model{
		llm: &fakeLLM{resp: &llms.ContentResponse{
			Choices: []*llms.ContentChoice{{
				Content:        "answer",
				GenerationInfo: map[string]any{"PromptTokens": 120, "CompletionTokens": 40},
			}},
		}},
		modelName: "test-model",
		stats:     stats,
	}

	out, err := m.GenerateMessages(context.Background(), []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, "question"),
	})
	if err != nil {
		t.Fatalf("GenerateMessages failed: %v", err)
	}
	if out != "answer" {
		t.Errorf("output = %q, want %q", out, "answer")
	}

	stage := stats.Snapshot().Stages[metrics.StageLLM]
	if stage == nil {
		t.Fatal("expected llm stage in snapshot")
	}
	if stage.Count != 1 {
		t.Errorf("llm stage count = %d, want 1", stage.Count)
	}
	if stage.TotalInputTokens == nil || *stage.TotalInputTokens != 120 {
		t.Errorf("total input tokens = %v, want 120", stage.TotalInputTokens)
	}
	if stage.TotalOutputTokens == nil || *stage.TotalOutputTokens != 40 {
		t.Errorf("total output tokens = %v, want 40", stage.TotalOutputTokens)
	}
}

func TestGenerateMessagesFailureRecordsNothing(t *testing.T) {
	stats := metrics.NewCollector()
	m := &Model{
		llm:       &fakeLLM{err: errors.New("invalid api key")},
		modelName: "test-model",
		stats:     stats,
	}

	_, err := m.GenerateMessages(context.Background(), []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, "question"),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := stats.Snapshot().Stages[metrics.StageLLM]; ok {
		t.Error("failed generation must not count as a model call")
	}
}
