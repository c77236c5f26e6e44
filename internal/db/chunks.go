package db

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"

	"github.com/docchat-labs/docchat/internal/models"
)

// knnEF is the HNSW search effort factor. 40 trades a little latency for
// better recall on small per-tenant indexes.
const knnEF = 40

// InsertChunks stores chunk payloads with their embeddings under the given
// index version. The version stays invisible to readers until
// ActivateIndexVersion repoints the doc_index row at it.
func (c *Client) InsertChunks(ctx context.Context, clientID, productID, version string, chunks []models.Chunk, embeddings [][]float32) error {
	defer c.observe(time.Now())

	if len(chunks) != len(embeddings) {
		return fmt.Errorf("insert chunks: %d chunks but %d embeddings", len(chunks), len(embeddings))
	}

	rows := make([]map[string]any, len(chunks))
	for i, ch := range chunks {
		rows[i] = map[string]any{
			"client_id":   clientID,
			"product_id":  productID,
			"version":     version,
			"position":    i,
			"content":     ch.Content,
			"source_page": ch.SourcePage,
			"is_table":    ch.IsTable,
			"embedding":   embeddings[i],
		}
	}

	_, err := surrealdb.Query[any](ctx, c.db, `
		FOR $row IN $rows {
			CREATE doc_chunk CONTENT $row;
		}
	`, map[string]any{"rows": rows})
	if err != nil {
		return fmt.Errorf("insert chunks: %w", wrapQueryError(err))
	}
	return nil
}

// ActivateIndexVersion atomically repoints the tenant+product index at a
// new version. A single UPSERT statement performs the swap, so concurrent
// readers see either the old version or the new one, never a mix.
func (c *Client) ActivateIndexVersion(ctx context.Context, clientID, productID, version string, chunkCount, dimension int, embedModel string) error {
	defer c.observe(time.Now())

	_, err := surrealdb.Query[any](ctx, c.db, `
		UPSERT doc_index SET
			client_id = $client_id,
			product_id = $product_id,
			active_version = $version,
			chunk_count = $count,
			dimension = $dim,
			embed_model = $model,
			updated_at = time::now()
		WHERE client_id = $client_id AND product_id = $product_id
	`, map[string]any{
		"client_id":  clientID,
		"product_id": productID,
		"version":    version,
		"count":      chunkCount,
		"dim":        dimension,
		"model":      embedModel,
	})
	if err != nil {
		return fmt.Errorf("activate index version: %w", wrapQueryError(err))
	}
	return nil
}

// GetIndexRecord returns the active index pointer for a tenant+product.
// Returns ErrNotFound when the tenant has never been vectorized and
// ErrInvariantViolation when more than one pointer row exists.
func (c *Client) GetIndexRecord(ctx context.Context, clientID, productID string) (*models.IndexRecord, error) {
	defer c.observe(time.Now())

	results, err := surrealdb.Query[[]models.IndexRecord](ctx, c.db, `
		SELECT * FROM doc_index
		WHERE client_id = $client_id AND product_id = $product_id
	`, map[string]any{
		"client_id":  clientID,
		"product_id": productID,
	})
	if err != nil {
		return nil, fmt.Errorf("get index record: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("index for %s/%s: %w", clientID, productID, ErrNotFound)
	}
	records := (*results)[0].Result
	if len(records) > 1 {
		return nil, fmt.Errorf("%w: %d index records for %s/%s",
			ErrInvariantViolation, len(records), clientID, productID)
	}
	return &records[0], nil
}

// SearchChunks runs a KNN query against one index version and returns the
// k nearest chunks, most similar first. Ties are broken by insertion
// position for stable ordering.
func (c *Client) SearchChunks(ctx context.Context, clientID, productID, version string, embedding []float32, k int) ([]models.ScoredChunk, error) {
	defer c.observe(time.Now())

	sql := fmt.Sprintf(`
		SELECT content, source_page, is_table, position,
			vector::similarity::cosine(embedding, $emb) AS score
		FROM doc_chunk
		WHERE client_id = $client_id AND product_id = $product_id
			AND version = $version
			AND embedding <|%d,%d|> $emb
		ORDER BY score DESC, position ASC
		LIMIT $k
	`, k, knnEF)

	results, err := surrealdb.Query[[]models.ScoredChunk](ctx, c.db, sql, map[string]any{
		"client_id":  clientID,
		"product_id": productID,
		"version":    version,
		"emb":        embedding,
		"k":          k,
	})
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.ScoredChunk{}, nil
	}
	return (*results)[0].Result, nil
}

// PruneStaleVersions deletes chunk rows from superseded index versions.
func (c *Client) PruneStaleVersions(ctx context.Context, clientID, productID, activeVersion string) error {
	defer c.observe(time.Now())

	_, err := surrealdb.Query[any](ctx, c.db, `
		DELETE doc_chunk
		WHERE client_id = $client_id AND product_id = $product_id
			AND version != $version
	`, map[string]any{
		"client_id":  clientID,
		"product_id": productID,
		"version":    activeVersion,
	})
	if err != nil {
		return fmt.Errorf("prune stale versions: %w", wrapQueryError(err))
	}
	return nil
}
