package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name    string
		overlay Config
		check   func(t *testing.T, cfg Config)
	}{
		{
			name:    "empty overlay keeps defaults",
			overlay: Config{},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "ws://localhost:8000/rpc", cfg.SurrealDBURL)
				assert.Equal(t, 500, cfg.ChunkSize)
				assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
			},
		},
		{
			name: "set fields override",
			overlay: Config{
				SurrealDBURL: "ws://db.internal:8000/rpc",
				LLMProvider:  ProviderAnthropic,
				LLMModel:     "claude-sonnet-4",
				ChunkSize:    800,
			},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "ws://db.internal:8000/rpc", cfg.SurrealDBURL)
				assert.Equal(t, ProviderAnthropic, cfg.LLMProvider)
				assert.Equal(t, "claude-sonnet-4", cfg.LLMModel)
				assert.Equal(t, 800, cfg.ChunkSize)
				// Untouched fields survive.
				assert.Equal(t, 100, cfg.ChunkOverlap)
				assert.Equal(t, "text-embedding-3-small", cfg.EmbedModel)
			},
		},
		{
			name:    "zero ints do not clobber",
			overlay: Config{ChunkSize: 0, RetrievalTopK: 0, MaxUploadBytes: 0},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, 500, cfg.ChunkSize)
				assert.Equal(t, 5, cfg.RetrievalTopK)
				assert.Equal(t, int64(2*1024*1024), cfg.MaxUploadBytes)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			merge(&cfg, tt.overlay)
			tt.check(t, cfg)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docchat.yaml")
	yaml := `surrealdb_url: ws://prod-db:8000/rpc
llm_provider: ollama
llm_model: llama3
chunk_size: 750
retrieval_top_k: 8
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "ws://prod-db:8000/rpc", cfg.SurrealDBURL)
	assert.Equal(t, ProviderOllama, cfg.LLMProvider)
	assert.Equal(t, "llama3", cfg.LLMModel)
	assert.Equal(t, 750, cfg.ChunkSize)
	assert.Equal(t, 8, cfg.RetrievalTopK)
	// Fields the file omits keep the environment defaults.
	assert.Equal(t, 100, cfg.ChunkOverlap)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"garbage", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.in), tt.in)
	}
}
