// Package index builds and queries per-tenant embedding indexes. An index
// is identified by (client_id, product_id); rebuilding one swaps in a new
// version atomically so readers never see a half-built index.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/docchat-labs/docchat/internal/db"
	"github.com/docchat-labs/docchat/internal/models"
)

// ErrNotIndexed indicates no active index exists for the tenant.
var ErrNotIndexed = errors.New("no index for client/product")

// ErrNoChunks indicates Build was called with nothing to index. A caller
// mistake, not an internal failure.
var ErrNoChunks = errors.New("no chunks to index")

// Store is the persistence surface the index service needs.
type Store interface {
	InsertChunks(ctx context.Context, clientID, productID, version string, chunks []models.Chunk, embeddings [][]float32) error
	ActivateIndexVersion(ctx context.Context, clientID, productID, version string, chunkCount, dimension int, embedModel string) error
	GetIndexRecord(ctx context.Context, clientID, productID string) (*models.IndexRecord, error)
	SearchChunks(ctx context.Context, clientID, productID, version string, embedding []float32, k int) ([]models.ScoredChunk, error)
	PruneStaleVersions(ctx context.Context, clientID, productID, activeVersion string) error
}

// Embedder produces embeddings for chunk content and queries.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
	Dimension() int
}

// Service builds, loads and searches tenant indexes.
type Service struct {
	store    Store
	embedder Embedder
	log      *slog.Logger
}

// New creates an index Service.
func New(store Store, embedder Embedder, log *slog.Logger) *Service {
	return &Service{store: store, embedder: embedder, log: log}
}

// Handle is a loaded, queryable index version.
type Handle struct {
	svc *Service

	ClientID   string
	ProductID  string
	Version    string
	ChunkCount int
}

// Build embeds the chunks and swaps them in as the tenant's active index.
// The previous version stays queryable until the swap completes; its
// chunks are pruned afterwards.
func (s *Service) Build(ctx context.Context, clientID, productID string, chunks []models.Chunk) (*Handle, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("building index for %s/%s: %w", clientID, productID, ErrNoChunks)
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding %d chunks for %s/%s: %w", len(chunks), clientID, productID, err)
	}

	version := uuid.NewString()

	if err := s.store.InsertChunks(ctx, clientID, productID, version, chunks, embeddings); err != nil {
		return nil, fmt.Errorf("storing chunks for %s/%s: %w", clientID, productID, err)
	}
	if err := s.store.ActivateIndexVersion(ctx, clientID, productID, version, len(chunks), s.embedder.Dimension(), s.embedder.Model()); err != nil {
		return nil, fmt.Errorf("activating index version for %s/%s: %w", clientID, productID, err)
	}

	if err := s.store.PruneStaleVersions(ctx, clientID, productID, version); err != nil {
		// The new version is already active; stale chunks only waste space.
		s.log.Warn("pruning stale index versions failed",
			"client_id", clientID, "product_id", productID, "error", err)
	}

	s.log.Info("index built",
		"client_id", clientID, "product_id", productID,
		"version", version, "chunks", len(chunks))

	return &Handle{
		svc:        s,
		ClientID:   clientID,
		ProductID:  productID,
		Version:    version,
		ChunkCount: len(chunks),
	}, nil
}

// Load resolves the tenant's active index version.
func (s *Service) Load(ctx context.Context, clientID, productID string) (*Handle, error) {
	rec, err := s.store.GetIndexRecord(ctx, clientID, productID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("loading index for %s/%s: %w", clientID, productID, ErrNotIndexed)
	}
	if err != nil {
		return nil, fmt.Errorf("loading index for %s/%s: %w", clientID, productID, err)
	}

	return &Handle{
		svc:        s,
		ClientID:   rec.ClientID,
		ProductID:  rec.ProductID,
		Version:    rec.ActiveVersion,
		ChunkCount: rec.ChunkCount,
	}, nil
}

// Search embeds the query and returns the k nearest chunks of this index
// version by cosine similarity, most similar first.
func (h *Handle) Search(ctx context.Context, query string, k int) ([]models.ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	embedding, err := h.svc.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	scored, err := h.svc.store.SearchChunks(ctx, h.ClientID, h.ProductID, h.Version, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("searching index %s/%s: %w", h.ClientID, h.ProductID, err)
	}
	return scored, nil
}
