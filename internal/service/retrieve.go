package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/docchat-labs/docchat/internal/index"
	"github.com/docchat-labs/docchat/internal/metrics"
	"github.com/docchat-labs/docchat/internal/models"
)

// indexLoader resolves a tenant's active index.
type indexLoader interface {
	Load(ctx context.Context, clientID, productID string) (*index.Handle, error)
}

// Retriever finds the document chunks most relevant to a question.
type Retriever struct {
	index indexLoader
	topK  int
	stats *metrics.Collector
	log   *slog.Logger
}

// NewRetriever creates a Retriever returning at most topK chunks per query.
func NewRetriever(idx indexLoader, topK int, stats *metrics.Collector, log *slog.Logger) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{index: idx, topK: topK, stats: stats, log: log}
}

// Retrieve searches the tenant's active index for the query and returns
// the scored chunks, most similar first. Returns index.ErrNotIndexed when
// the tenant has no index.
func (r *Retriever) Retrieve(ctx context.Context, clientID, productID, query string) ([]models.ScoredChunk, error) {
	start := time.Now()
	defer func() {
		r.stats.RecordTiming(metrics.StageRetrieve, time.Since(start))
	}()

	h, err := r.index.Load(ctx, clientID, productID)
	if err != nil {
		return nil, err
	}

	chunks, err := h.Search(ctx, query, r.topK)
	if err != nil {
		return nil, err
	}

	r.log.Debug("retrieval complete",
		"client_id", clientID, "product_id", productID,
		"results", len(chunks))
	return chunks, nil
}

// JoinContext renders retrieved chunks into the single context block the
// answer prompt consumes, preserving retrieval order.
func JoinContext(chunks []models.ScoredChunk) string {
	parts := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		parts = append(parts, ch.Content)
	}
	return strings.Join(parts, "\n\n")
}
