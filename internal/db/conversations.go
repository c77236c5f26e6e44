package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go"

	"github.com/docchat-labs/docchat/internal/models"
)

// CreateConversation allocates a new conversation with an empty message
// list for the given tenant+product.
func (c *Client) CreateConversation(ctx context.Context, clientID, productID string, userID *string) (*models.Conversation, error) {
	defer c.observe(time.Now())

	id := uuid.NewString()

	results, err := surrealdb.Query[[]models.Conversation](ctx, c.db, `
		CREATE type::record("conversation", $id) CONTENT {
			client_id: $client_id,
			product_id: $product_id,
			user_id: $user_id,
			messages: []
		}
	`, map[string]any{
		"id":         id,
		"client_id":  clientID,
		"product_id": productID,
		"user_id":    userID,
	})
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create conversation: no record returned")
	}
	conv := (*results)[0].Result[0]
	return &conv, nil
}

// GetConversation retrieves a conversation by ID.
// Returns ErrNotFound if it does not exist.
func (c *Client) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	defer c.observe(time.Now())

	results, err := surrealdb.Query[[]models.Conversation](ctx, c.db, `
		SELECT * FROM type::record("conversation", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("conversation %q: %w", id, ErrNotFound)
	}
	conv := (*results)[0].Result[0]
	return &conv, nil
}

// AppendTurn atomically appends one user and one assistant message to a
// conversation and bumps updated_at. The append happens in a single UPDATE
// statement, so concurrent turns on the same conversation interleave but
// never lose messages. Returns ErrNotFound when the conversation does not
// exist; it is never created implicitly.
func (c *Client) AppendTurn(ctx context.Context, id, userText, assistantText string) error {
	defer c.observe(time.Now())

	msgs := []models.Message{
		models.NewTextMessage(models.RoleUser, userText),
		models.NewTextMessage(models.RoleAssistant, assistantText),
	}
	for _, m := range msgs {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("append turn: %w", err)
		}
	}

	results, err := surrealdb.Query[[]models.Conversation](ctx, c.db, `
		UPDATE type::record("conversation", $id) SET
			messages += $msgs,
			updated_at = time::now()
	`, map[string]any{
		"id":   id,
		"msgs": msgs,
	})
	if err != nil {
		return fmt.Errorf("append turn: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return fmt.Errorf("conversation %q: %w", id, ErrNotFound)
	}
	return nil
}
