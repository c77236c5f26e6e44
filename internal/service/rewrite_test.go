package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat-labs/docchat/internal/metrics"
	"github.com/docchat-labs/docchat/internal/models"
)

type fakeTextGenerator struct {
	out    string
	err    error
	called bool
	prompt string
}

func (f *fakeTextGenerator) GenerateWithSystem(_ context.Context, _, userPrompt string) (string, error) {
	f.called = true
	f.prompt = userPrompt
	return f.out, f.err
}

func newRewriter(model *fakeTextGenerator) *Rewriter {
	return NewRewriter(model, 3, metrics.NewCollector(), slog.New(slog.DiscardHandler))
}

func TestRewrite_ShortCircuit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		skip  bool
	}{
		{name: "greeting", input: "hello", skip: true},
		{name: "courtesy", input: "thanks a lot", skip: true},
		{name: "three plain words", input: "sounds good then", skip: true},
		{name: "question mark", input: "and pricing?", skip: false},
		{name: "interrogative starter", input: "what about deductibles", skip: false},
		{name: "embedded interrogative", input: "the total what", skip: false},
		{name: "trailing interrogative", input: "deductibles are what.", skip: false},
		{name: "four words", input: "tell me more please", skip: false},
		{name: "capitalized interrogative", input: "How much", skip: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeTextGenerator{out: "rewritten"}
			r := newRewriter(model)

			out, err := r.Rewrite(context.Background(), nil, tt.input)
			require.NoError(t, err)

			if tt.skip {
				assert.False(t, model.called, "model should not be called")
				assert.Equal(t, tt.input, out)
			} else {
				assert.True(t, model.called, "model should be called")
				assert.Equal(t, "rewritten", out)
			}
		})
	}
}

func TestRewrite_EmptyInput(t *testing.T) {
	r := newRewriter(&fakeTextGenerator{})

	_, err := r.Rewrite(context.Background(), nil, "   ")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestRewrite_EmptyModelOutputKeepsInput(t *testing.T) {
	model := &fakeTextGenerator{out: "  "}
	r := newRewriter(model)

	out, err := r.Rewrite(context.Background(), nil, "and the second one?")
	require.NoError(t, err)
	assert.Equal(t, "and the second one?", out)
}

func TestRewrite_HistoryInPrompt(t *testing.T) {
	model := &fakeTextGenerator{out: "What does the gold plan cost?"}
	r := newRewriter(model)

	history := []models.Message{
		models.NewTextMessage(models.RoleUser, "tell me about the gold plan"),
		models.NewTextMessage(models.RoleAssistant, "The gold plan covers storm damage."),
	}

	_, err := r.Rewrite(context.Background(), history, "and the price?")
	require.NoError(t, err)

	assert.True(t, strings.Contains(model.prompt, "user: tell me about the gold plan"))
	assert.True(t, strings.Contains(model.prompt, "assistant: The gold plan covers storm damage."))
	assert.True(t, strings.Contains(model.prompt, "and the price?"))
}

func TestRewrite_ModelError(t *testing.T) {
	r := newRewriter(&fakeTextGenerator{err: errors.New("rate limited")})

	_, err := r.Rewrite(context.Background(), nil, "what about the deductible?")
	assert.Error(t, err)
}
