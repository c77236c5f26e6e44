package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// DocumentRecord holds the chunked documents for one tenant+product,
// used to (re)build the embedding index. Exactly one row exists per
// (client_id, product_id); vectorization replaces it wholesale.
type DocumentRecord struct {
	ID surrealmodels.RecordID `json:"id"`

	ClientID  string `json:"client_id"`
	ProductID string `json:"product_id"`

	Chunks     []Chunk `json:"chunks"`
	ChunkCount int     `json:"chunk_count"`

	UpdatedAt time.Time `json:"updated_at"`
}

// UserMemory is a single remembered fact about a user, searchable by
// vector similarity for answer personalization.
type UserMemory struct {
	ID surrealmodels.RecordID `json:"id"`

	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
	CreatedAt time.Time `json:"created_at"`
}
