package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/docchat-labs/docchat/internal/llm"
	"github.com/docchat-labs/docchat/internal/metrics"
	"github.com/docchat-labs/docchat/internal/models"
)

// chatModel is the multi-message model surface the generator needs.
type chatModel interface {
	GenerateMessages(ctx context.Context, messages []llms.MessageContent) (string, error)
	StreamMessages(ctx context.Context, messages []llms.MessageContent, fn func(chunk string)) (string, error)
}

// Generator produces grounded answers from retrieved context, conversation
// history and user memories.
type Generator struct {
	model chatModel
	stats *metrics.Collector
	log   *slog.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(model chatModel, stats *metrics.Collector, log *slog.Logger) *Generator {
	return &Generator{model: model, stats: stats, log: log}
}

// AnswerRequest carries everything the answer prompt is built from.
type AnswerRequest struct {
	// Context is the joined retrieved chunks the answer must be grounded in.
	Context string
	// History is the conversation so far, oldest first.
	History []models.Message
	// Memories are recalled user facts, may be empty.
	Memories []models.UserMemory
	// Question is the (possibly rewritten) standalone question.
	Question string
}

// Answer generates a grounded answer. When the context doesn't contain the
// answer the model replies with the fixed fallback sentence, followed by a
// follow-up question either way.
func (g *Generator) Answer(ctx context.Context, req AnswerRequest) (string, error) {
	start := time.Now()
	out, err := g.model.GenerateMessages(ctx, buildAnswerMessages(req))
	g.stats.RecordTiming(metrics.StageGenerate, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// AnswerStream is Answer with token streaming; fn receives each chunk as
// it arrives and the full text is returned at the end.
func (g *Generator) AnswerStream(ctx context.Context, req AnswerRequest, fn func(chunk string)) (string, error) {
	start := time.Now()
	out, err := g.model.StreamMessages(ctx, buildAnswerMessages(req), fn)
	g.stats.RecordTiming(metrics.StageGenerate, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// IsFallback reports whether an answer is the no-context fallback,
// ignoring the trailing follow-up question.
func IsFallback(answer string) bool {
	return strings.HasPrefix(strings.TrimSpace(answer), llm.FallbackAnswer)
}

// buildAnswerMessages lays out system prompt + context + memories, then
// the conversation history, then the standalone question.
func buildAnswerMessages(req AnswerRequest) []llms.MessageContent {
	var sys strings.Builder
	sys.WriteString(llm.AnswerSystemPrompt)
	sys.WriteString("\n\nSYSTEM CONTEXT:\n")
	sys.WriteString(req.Context)

	if len(req.Memories) > 0 {
		sys.WriteString("\n\nUSER MEMORY:\n")
		for _, m := range req.Memories {
			sys.WriteString("- ")
			sys.WriteString(m.Content)
			sys.WriteString("\n")
		}
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, sys.String()),
	}

	for _, msg := range req.History {
		switch msg.Role {
		case models.RoleUser:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, msg.Text()))
		case models.RoleAssistant:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeAI, msg.Text()))
		}
	}

	return append(messages, llms.TextParts(llms.ChatMessageTypeHuman, req.Question))
}
