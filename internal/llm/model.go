// Package llm provides chat-model and embedding services using langchaingo.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/docchat-labs/docchat/internal/config"
	"github.com/docchat-labs/docchat/internal/metrics"
)

// Model wraps a langchaingo LLM for text generation.
type Model struct {
	llm       llms.Model
	modelName string
	stats     *metrics.Collector
}

// NewModel creates an LLM model based on configuration. Each call is
// recorded against the collector; stats may be nil.
func NewModel(cfg config.Config, stats *metrics.Collector) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAzureOpenAI:
		if cfg.OpenAIAPIKey == "" || cfg.AzureEndpoint == "" {
			return nil, fmt.Errorf("Azure OpenAI requires API key and endpoint")
		}
		model, err = openai.New(
			openai.WithAPIType(openai.APITypeAzure),
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithBaseURL(cfg.AzureEndpoint),
			openai.WithAPIVersion(cfg.AzureAPIVersion),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create azure openai model: %w", err)
		}

	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Model{
		llm:       model,
		modelName: cfg.LLMModel,
		stats:     stats,
	}, nil
}

// Model returns the LLM model name.
func (m *Model) Model() string {
	return m.modelName
}

// GenerateWithSystem generates text with a system prompt and a single user
// prompt.
func (m *Model) GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}
	return m.GenerateMessages(ctx, messages)
}

// GenerateMessages generates a completion for an arbitrary message list.
func (m *Model) GenerateMessages(ctx context.Context, messages []llms.MessageContent) (string, error) {
	start := time.Now()
	var response *llms.ContentResponse
	err := withRetry(ctx, func() error {
		var genErr error
		response, genErr = m.llm.GenerateContent(ctx, messages)
		return genErr
	})
	duration := time.Since(start)

	if err != nil {
		slog.Warn("generation failed", "model", m.modelName, "duration_ms", duration.Milliseconds(), "error", err)
		return "", fmt.Errorf("generate: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	choice := response.Choices[0]
	if m.stats != nil {
		in, out := tokenUsage(choice.GenerationInfo)
		m.stats.RecordModelUsage(metrics.StageLLM, duration, in, out)
	}

	slog.Debug("generation complete", "model", m.modelName, "duration_ms", duration.Milliseconds())
	return choice.Content, nil
}

// tokenUsage extracts prompt/completion token counts from a choice's
// generation info. OpenAI reports PromptTokens/CompletionTokens,
// Anthropic InputTokens/OutputTokens; absent keys count as zero.
func tokenUsage(info map[string]any) (in, out int64) {
	for key, val := range info {
		n, ok := asInt64(val)
		if !ok {
			continue
		}
		switch key {
		case "PromptTokens", "InputTokens":
			in += n
		case "CompletionTokens", "OutputTokens":
			out += n
		}
	}
	return in, out
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	}
	return 0, false
}

// StreamMessages generates a completion while feeding each token chunk to
// fn. Returns the full accumulated text.
func (m *Model) StreamMessages(ctx context.Context, messages []llms.MessageContent, fn func(chunk string)) (string, error) {
	var sb strings.Builder

	start := time.Now()
	resp, err := m.llm.GenerateContent(ctx, messages,
		llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			sb.Write(chunk)
			fn(string(chunk))
			return nil
		}),
	)
	if err != nil {
		return "", fmt.Errorf("stream: %w", err)
	}

	if m.stats != nil {
		// Providers rarely report usage on streamed responses; record
		// whatever arrived.
		var in, out int64
		if len(resp.Choices) > 0 {
			in, out = tokenUsage(resp.Choices[0].GenerationInfo)
		}
		m.stats.RecordModelUsage(metrics.StageLLM, time.Since(start), in, out)
	}
	return sb.String(), nil
}
