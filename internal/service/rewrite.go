package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/docchat-labs/docchat/internal/llm"
	"github.com/docchat-labs/docchat/internal/metrics"
	"github.com/docchat-labs/docchat/internal/models"
)

// interrogatives are words that mark an input as a question even without
// a question mark.
var interrogatives = map[string]bool{
	"what": true, "who": true, "whom": true, "whose": true, "which": true,
	"when": true, "where": true, "why": true, "how": true,
	"is": true, "are": true, "was": true, "were": true,
	"do": true, "does": true, "did": true,
	"can": true, "could": true, "will": true, "would": true,
	"should": true, "shall": true, "may": true, "might": true,
}

// textGenerator is the single-prompt model surface the rewriter needs.
type textGenerator interface {
	GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Rewriter turns context-dependent follow-ups into standalone questions
// using the conversation history. Trivial inputs skip the model entirely.
type Rewriter struct {
	model    textGenerator
	maxWords int
	stats    *metrics.Collector
	log      *slog.Logger
}

// NewRewriter creates a Rewriter. maxWords bounds the short-circuit: inputs
// of at most that many words that don't look like questions pass through
// unchanged without a model call.
func NewRewriter(model textGenerator, maxWords int, stats *metrics.Collector, log *slog.Logger) *Rewriter {
	if maxWords <= 0 {
		maxWords = 3
	}
	return &Rewriter{model: model, maxWords: maxWords, stats: stats, log: log}
}

// Rewrite returns a standalone form of input given the conversation so
// far. Inputs that can't depend on context ("thanks", "hello") are
// returned unchanged; so is input when the model returns an empty string.
func (r *Rewriter) Rewrite(ctx context.Context, history []models.Message, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", Validationf("message must not be empty")
	}

	if r.shortCircuit(input) {
		r.log.Debug("rewrite skipped", "input", input)
		return input, nil
	}

	start := time.Now()
	out, err := r.model.GenerateWithSystem(ctx, llm.RewriteSystemPrompt, renderRewritePrompt(history, input))
	r.stats.RecordTiming(metrics.StageRewrite, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("rewriting question: %w", err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return input, nil
	}

	if out != input {
		r.log.Debug("question rewritten", "input", input, "rewritten", out)
	}
	return out, nil
}

// shortCircuit reports whether input is too trivial to be a
// context-dependent question: at most maxWords words, no question mark,
// and no interrogative anywhere in it.
func (r *Rewriter) shortCircuit(input string) bool {
	if strings.Contains(input, "?") {
		return false
	}
	words := strings.Fields(input)
	if len(words) > r.maxWords {
		return false
	}
	for _, w := range words {
		if interrogatives[strings.ToLower(strings.Trim(w, ".,!:;"))] {
			return false
		}
	}
	return true
}

// renderRewritePrompt lays out the conversation followed by the latest
// input, the shape the rewrite prompt expects.
func renderRewritePrompt(history []models.Message, input string) string {
	var sb strings.Builder
	sb.WriteString("Conversation:\n")
	for _, msg := range history {
		if msg.Role == models.RoleSystem {
			continue
		}
		sb.WriteString(string(msg.Role))
		sb.WriteString(": ")
		sb.WriteString(msg.Text())
		sb.WriteString("\n")
	}
	sb.WriteString("\nLatest input:\n")
	sb.WriteString(input)
	return sb.String()
}
