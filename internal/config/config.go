// Package config loads application configuration from the environment
// with an optional YAML overlay file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider identifies an LLM or embedding backend.
type Provider string

const (
	ProviderOpenAI      Provider = "openai"
	ProviderAzureOpenAI Provider = "azure-openai"
	ProviderOllama      Provider = "ollama"
	ProviderAnthropic   Provider = "anthropic"
)

// Config holds all configuration values. It is constructed once at startup
// and passed explicitly to every component.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string `yaml:"surrealdb_url"`
	SurrealDBNamespace string `yaml:"surrealdb_namespace"`
	SurrealDBDatabase  string `yaml:"surrealdb_database"`
	SurrealDBUser      string `yaml:"surrealdb_user"`
	SurrealDBPass      string `yaml:"surrealdb_pass"`
	SurrealDBAuthLevel string `yaml:"surrealdb_auth_level"`

	// Chat LLM
	LLMProvider Provider `yaml:"llm_provider"`
	LLMModel    string   `yaml:"llm_model"`

	// Embeddings
	EmbedProvider  Provider `yaml:"embed_provider"`
	EmbedModel     string   `yaml:"embed_model"`
	EmbedDimension int      `yaml:"embed_dimension"`

	// Provider credentials/endpoints
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	OllamaHost      string `yaml:"ollama_host"`
	AzureEndpoint   string `yaml:"azure_endpoint"`
	AzureAPIVersion string `yaml:"azure_api_version"`

	// Blob storage
	BlobRoot       string `yaml:"blob_root"`
	BlobContainer  string `yaml:"blob_container"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`

	// Extraction
	PdftotextPath string `yaml:"pdftotext_path"`

	// Chunking
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`

	// Retrieval
	RetrievalTopK int `yaml:"retrieval_top_k"`
	MemoryTopK    int `yaml:"memory_top_k"`

	// Question rewriting: inputs at or below this word count with no
	// question mark and no interrogative term skip the model call.
	RewriteMaxWords int `yaml:"rewrite_max_words"`

	// HTTP server
	HTTPAddr string `yaml:"http_addr"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`
}

// Load reads configuration from environment variables with defaults
// matching the production deployment.
func Load() Config {
	return Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "docchat"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "docchat"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		LLMProvider: Provider(getEnv("DOCCHAT_LLM_PROVIDER", string(ProviderOpenAI))),
		LLMModel:    getEnv("DOCCHAT_LLM_MODEL", "gpt-4o-mini"),

		EmbedProvider:  Provider(getEnv("DOCCHAT_EMBED_PROVIDER", string(ProviderOpenAI))),
		EmbedModel:     getEnv("DOCCHAT_EMBED_MODEL", "text-embedding-3-small"),
		EmbedDimension: getEnvInt("DOCCHAT_EMBED_DIMENSION", 1536),

		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		AzureEndpoint:   getEnv("AZURE_OPENAI_ENDPOINT", ""),
		AzureAPIVersion: getEnv("AZURE_OPENAI_API_VERSION", "2024-02-01"),

		BlobRoot:       getEnv("DOCCHAT_BLOB_ROOT", "./blobs"),
		BlobContainer:  getEnv("DOCCHAT_BLOB_CONTAINER", "document-chat"),
		MaxUploadBytes: int64(getEnvInt("DOCCHAT_MAX_UPLOAD_BYTES", 2*1024*1024)),

		PdftotextPath: getEnv("DOCCHAT_PDFTOTEXT", "pdftotext"),

		ChunkSize:    getEnvInt("DOCCHAT_CHUNK_SIZE", 500),
		ChunkOverlap: getEnvInt("DOCCHAT_CHUNK_OVERLAP", 100),

		RetrievalTopK:   getEnvInt("DOCCHAT_RETRIEVAL_TOP_K", 5),
		MemoryTopK:      getEnvInt("DOCCHAT_MEMORY_TOP_K", 5),
		RewriteMaxWords: getEnvInt("DOCCHAT_REWRITE_MAX_WORDS", 3),

		HTTPAddr: getEnv("DOCCHAT_HTTP_ADDR", ":8080"),

		LogFile:  getEnv("DOCCHAT_LOG_FILE", "/tmp/docchat.log"),
		LogLevel: parseLogLevel(getEnv("DOCCHAT_LOG_LEVEL", "INFO")),
	}
}

// LoadFile returns Load() overlaid with values from a YAML file.
// Zero-valued YAML fields keep the environment/default value.
func LoadFile(path string) (Config, error) {
	cfg := Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}

	merge(&cfg, overlay)
	return cfg, nil
}

func merge(dst *Config, src Config) {
	mergeStr := func(d *string, s string) {
		if s != "" {
			*d = s
		}
	}
	mergeInt := func(d *int, s int) {
		if s != 0 {
			*d = s
		}
	}

	mergeStr(&dst.SurrealDBURL, src.SurrealDBURL)
	mergeStr(&dst.SurrealDBNamespace, src.SurrealDBNamespace)
	mergeStr(&dst.SurrealDBDatabase, src.SurrealDBDatabase)
	mergeStr(&dst.SurrealDBUser, src.SurrealDBUser)
	mergeStr(&dst.SurrealDBPass, src.SurrealDBPass)
	mergeStr(&dst.SurrealDBAuthLevel, src.SurrealDBAuthLevel)
	if src.LLMProvider != "" {
		dst.LLMProvider = src.LLMProvider
	}
	mergeStr(&dst.LLMModel, src.LLMModel)
	if src.EmbedProvider != "" {
		dst.EmbedProvider = src.EmbedProvider
	}
	mergeStr(&dst.EmbedModel, src.EmbedModel)
	mergeInt(&dst.EmbedDimension, src.EmbedDimension)
	mergeStr(&dst.OpenAIAPIKey, src.OpenAIAPIKey)
	mergeStr(&dst.AnthropicAPIKey, src.AnthropicAPIKey)
	mergeStr(&dst.OllamaHost, src.OllamaHost)
	mergeStr(&dst.AzureEndpoint, src.AzureEndpoint)
	mergeStr(&dst.AzureAPIVersion, src.AzureAPIVersion)
	mergeStr(&dst.BlobRoot, src.BlobRoot)
	mergeStr(&dst.BlobContainer, src.BlobContainer)
	if src.MaxUploadBytes != 0 {
		dst.MaxUploadBytes = src.MaxUploadBytes
	}
	mergeStr(&dst.PdftotextPath, src.PdftotextPath)
	mergeInt(&dst.ChunkSize, src.ChunkSize)
	mergeInt(&dst.ChunkOverlap, src.ChunkOverlap)
	mergeInt(&dst.RetrievalTopK, src.RetrievalTopK)
	mergeInt(&dst.MemoryTopK, src.MemoryTopK)
	mergeInt(&dst.RewriteMaxWords, src.RewriteMaxWords)
	mergeStr(&dst.HTTPAddr, src.HTTPAddr)
	mergeStr(&dst.LogFile, src.LogFile)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
