package db

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"

	"github.com/docchat-labs/docchat/internal/models"
)

// PutUserMemory stores one remembered fact about a user.
func (c *Client) PutUserMemory(ctx context.Context, userID, content string, embedding []float32) error {
	defer c.observe(time.Now())

	_, err := surrealdb.Query[any](ctx, c.db, `
		CREATE user_memory CONTENT {
			user_id: $user_id,
			content: $content,
			embedding: $embedding
		}
	`, map[string]any{
		"user_id":   userID,
		"content":   content,
		"embedding": embedding,
	})
	if err != nil {
		return fmt.Errorf("put user memory: %w", wrapQueryError(err))
	}
	return nil
}

// SearchUserMemories returns the k memories most similar to the query
// embedding for one user.
func (c *Client) SearchUserMemories(ctx context.Context, userID string, embedding []float32, k int) ([]models.UserMemory, error) {
	defer c.observe(time.Now())

	sql := fmt.Sprintf(`
		SELECT *, vector::similarity::cosine(embedding, $emb) AS score
		FROM user_memory
		WHERE user_id = $user_id AND embedding <|%d,%d|> $emb
		ORDER BY score DESC
		LIMIT $k
	`, k, knnEF)

	results, err := surrealdb.Query[[]models.UserMemory](ctx, c.db, sql, map[string]any{
		"user_id": userID,
		"emb":     embedding,
		"k":       k,
	})
	if err != nil {
		return nil, fmt.Errorf("search user memories: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.UserMemory{}, nil
	}
	return (*results)[0].Result, nil
}
