// Package memory stores durable per-user facts and recalls the ones
// relevant to a question, so answers can take prior context into account.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docchat-labs/docchat/internal/models"
)

// Store is the persistence surface for user memories.
type Store interface {
	PutUserMemory(ctx context.Context, userID, content string, embedding []float32) error
	SearchUserMemories(ctx context.Context, userID string, embedding []float32, k int) ([]models.UserMemory, error)
}

// Embedder embeds memory content and recall queries.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Service writes and recalls user memories.
type Service struct {
	store    Store
	embedder Embedder
	topK     int
	log      *slog.Logger
}

// New creates a memory Service. topK bounds how many memories Recall
// returns.
func New(store Store, embedder Embedder, topK int, log *slog.Logger) *Service {
	if topK <= 0 {
		topK = 5
	}
	return &Service{store: store, embedder: embedder, topK: topK, log: log}
}

// Remember stores one fact about a user.
func (s *Service) Remember(ctx context.Context, userID, content string) error {
	content = strings.TrimSpace(content)
	if userID == "" || content == "" {
		return fmt.Errorf("remember: user id and content required")
	}

	embedding, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("embedding memory for user %s: %w", userID, err)
	}
	if err := s.store.PutUserMemory(ctx, userID, content, embedding); err != nil {
		return fmt.Errorf("storing memory for user %s: %w", userID, err)
	}

	s.log.Debug("memory stored", "user_id", userID, "len", len(content))
	return nil
}

// Recall returns the stored facts most relevant to the query, most
// relevant first. An empty user id recalls nothing.
func (s *Service) Recall(ctx context.Context, userID, query string) ([]models.UserMemory, error) {
	if userID == "" || strings.TrimSpace(query) == "" {
		return nil, nil
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding recall query for user %s: %w", userID, err)
	}

	memories, err := s.store.SearchUserMemories(ctx, userID, embedding, s.topK)
	if err != nil {
		return nil, fmt.Errorf("recalling memories for user %s: %w", userID, err)
	}
	return memories, nil
}
