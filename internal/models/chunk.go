// Package models defines data structures for the document-chat backend.
package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Chunk is a bounded-size fragment of document text, the unit of indexing
// and retrieval. Immutable once created.
type Chunk struct {
	Content    string `json:"content"`
	SourcePage int    `json:"source_page"`
	IsTable    bool   `json:"is_table"`
}

// StoredChunk is a chunk as persisted in the vector index, with its
// embedding and tenant scope.
type StoredChunk struct {
	ID surrealmodels.RecordID `json:"id"`

	ClientID  string `json:"client_id"`
	ProductID string `json:"product_id"`

	// Version ties the chunk to one index build. Readers only see the
	// active version recorded on the doc_index row.
	Version  string `json:"version"`
	Position int    `json:"position"`

	Content    string `json:"content"`
	SourcePage int    `json:"source_page"`
	IsTable    bool   `json:"is_table"`

	Embedding []float32 `json:"embedding"`

	CreatedAt time.Time `json:"created_at"`
}

// IndexRecord is the per-tenant pointer to the active index version.
// Exactly one row exists per (client_id, product_id).
type IndexRecord struct {
	ID surrealmodels.RecordID `json:"id"`

	ClientID      string    `json:"client_id"`
	ProductID     string    `json:"product_id"`
	ActiveVersion string    `json:"active_version"`
	ChunkCount    int       `json:"chunk_count"`
	Dimension     int       `json:"dimension"`
	EmbedModel    string    `json:"embed_model"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ScoredChunk is a search hit with its similarity score.
type ScoredChunk struct {
	Content    string  `json:"content"`
	SourcePage int     `json:"source_page"`
	IsTable    bool    `json:"is_table"`
	Position   int     `json:"position"`
	Score      float64 `json:"score"`
}
