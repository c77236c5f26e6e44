package db

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"

	"github.com/docchat-labs/docchat/internal/models"
)

// UpsertDocumentRecord replaces the chunked-document list for a
// tenant+product. Vectorization is replace-only: any prior record for the
// key is overwritten wholesale.
func (c *Client) UpsertDocumentRecord(ctx context.Context, clientID, productID string, chunks []models.Chunk) error {
	defer c.observe(time.Now())

	_, err := surrealdb.Query[any](ctx, c.db, `
		DELETE document_record WHERE client_id = $client_id AND product_id = $product_id;
		CREATE document_record CONTENT {
			client_id: $client_id,
			product_id: $product_id,
			chunks: $chunks,
			chunk_count: $count
		};
	`, map[string]any{
		"client_id":  clientID,
		"product_id": productID,
		"chunks":     chunks,
		"count":      len(chunks),
	})
	if err != nil {
		return fmt.Errorf("upsert document record: %w", wrapQueryError(err))
	}
	return nil
}

// GetDocumentRecord returns the document record for a tenant+product.
// Returns ErrNotFound when no record exists and ErrInvariantViolation when
// more than one exists.
func (c *Client) GetDocumentRecord(ctx context.Context, clientID, productID string) (*models.DocumentRecord, error) {
	defer c.observe(time.Now())

	results, err := surrealdb.Query[[]models.DocumentRecord](ctx, c.db, `
		SELECT * FROM document_record
		WHERE client_id = $client_id AND product_id = $product_id
	`, map[string]any{
		"client_id":  clientID,
		"product_id": productID,
	})
	if err != nil {
		return nil, fmt.Errorf("get document record: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("document record for %s/%s: %w", clientID, productID, ErrNotFound)
	}
	records := (*results)[0].Result
	if len(records) > 1 {
		return nil, fmt.Errorf("%w: %d document records for %s/%s",
			ErrInvariantViolation, len(records), clientID, productID)
	}
	return &records[0], nil
}
