package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docchat-labs/docchat/internal/blob"
	"github.com/docchat-labs/docchat/internal/chunker"
	"github.com/docchat-labs/docchat/internal/db"
	"github.com/docchat-labs/docchat/internal/extract"
	"github.com/docchat-labs/docchat/internal/index"
	"github.com/docchat-labs/docchat/internal/metrics"
	"github.com/docchat-labs/docchat/internal/models"
)

var pdfMagic = []byte("%PDF-")

// documentStore persists and reloads the per-tenant chunk snapshot.
type documentStore interface {
	UpsertDocumentRecord(ctx context.Context, clientID, productID string, chunks []models.Chunk) error
	GetDocumentRecord(ctx context.Context, clientID, productID string) (*models.DocumentRecord, error)
}

// indexBuilder builds a tenant's embedding index.
type indexBuilder interface {
	Build(ctx context.Context, clientID, productID string, chunks []models.Chunk) (*index.Handle, error)
}

// documentChunker splits an extracted document into chunks.
type documentChunker interface {
	ChunkDocument(ctx context.Context, doc *extract.Document) ([]models.Chunk, error)
}

// IngestService handles document upload and index building.
type IngestService struct {
	blobs     blob.Store
	extractor extract.Extractor
	chunker   documentChunker
	documents documentStore
	indexes   indexBuilder
	maxBytes  int64
	stats     *metrics.Collector
	log       *slog.Logger
}

// NewIngestService wires the ingestion pipeline. maxBytes caps accepted
// upload size.
func NewIngestService(
	blobs blob.Store,
	extractor extract.Extractor,
	ch documentChunker,
	documents documentStore,
	indexes indexBuilder,
	maxBytes int64,
	stats *metrics.Collector,
	log *slog.Logger,
) *IngestService {
	return &IngestService{
		blobs:     blobs,
		extractor: extractor,
		chunker:   ch,
		documents: documents,
		indexes:   indexes,
		maxBytes:  maxBytes,
		stats:     stats,
		log:       log,
	}
}

// tenantPrefix scopes blobs to one client/product.
func tenantPrefix(clientID, productID string) string {
	return clientID + "/" + productID
}

// Upload validates and stores one PDF. The stored name is a fresh UUID so
// re-uploads never collide; the returned name identifies the blob.
func (s *IngestService) Upload(ctx context.Context, clientID, productID, filename string, r io.Reader) (string, error) {
	if clientID == "" || productID == "" {
		return "", Validationf("client_id and product_id are required")
	}
	if !strings.EqualFold(path.Ext(filename), ".pdf") {
		return "", Validationf("only PDF files are accepted, got %q", filename)
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading upload %q: %w", filename, err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", Validationf("file exceeds the maximum size of %d bytes", s.maxBytes)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return "", Validationf("file %q is not a valid PDF", filename)
	}

	name := uuid.NewString() + ".pdf"
	if err := s.blobs.Upload(ctx, tenantPrefix(clientID, productID), name, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("storing upload %q: %w", filename, err)
	}

	s.stats.RecordUpload()
	s.log.Info("document uploaded",
		"client_id", clientID, "product_id", productID,
		"name", name, "bytes", len(data))
	return name, nil
}

// Vectorize extracts and chunks every uploaded document for the tenant,
// snapshots the chunks, and swaps in a freshly built index. The previous
// index stays live until the swap.
func (s *IngestService) Vectorize(ctx context.Context, clientID, productID string) (*index.Handle, error) {
	if clientID == "" || productID == "" {
		return nil, Validationf("client_id and product_id are required")
	}

	prefix := tenantPrefix(clientID, productID)
	names, err := s.blobs.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing documents for %s/%s: %w", clientID, productID, err)
	}
	if len(names) == 0 {
		return nil, Validationf("no documents uploaded for %s/%s", clientID, productID)
	}

	var chunks []models.Chunk
	for _, name := range names {
		docChunks, err := s.processDocument(ctx, prefix, name)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, docChunks...)
	}
	if len(chunks) == 0 {
		return nil, Validationf("no text chunks found in the uploaded documents")
	}

	if err := s.documents.UpsertDocumentRecord(ctx, clientID, productID, chunks); err != nil {
		return nil, fmt.Errorf("storing chunk snapshot for %s/%s: %w", clientID, productID, err)
	}

	start := time.Now()
	h, err := s.indexes.Build(ctx, clientID, productID, chunks)
	if err != nil {
		return nil, err
	}
	s.stats.RecordTiming(metrics.StageIndexBuild, time.Since(start))
	s.stats.RecordIndexBuild()

	s.log.Info("vectorize complete",
		"client_id", clientID, "product_id", productID,
		"documents", len(names), "chunks", len(chunks), "version", h.Version)
	return h, nil
}

// Reindex rebuilds the tenant's index from the stored chunk snapshot,
// skipping extraction and chunking. Useful after switching embedding
// models, since the chunks themselves are unchanged.
func (s *IngestService) Reindex(ctx context.Context, clientID, productID string) (*index.Handle, error) {
	if clientID == "" || productID == "" {
		return nil, Validationf("client_id and product_id are required")
	}

	rec, err := s.documents.GetDocumentRecord(ctx, clientID, productID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, Validationf("no chunk snapshot exists for %s/%s, run vectorize first", clientID, productID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading chunk snapshot for %s/%s: %w", clientID, productID, err)
	}

	start := time.Now()
	h, err := s.indexes.Build(ctx, clientID, productID, rec.Chunks)
	if err != nil {
		return nil, err
	}
	s.stats.RecordTiming(metrics.StageIndexBuild, time.Since(start))
	s.stats.RecordIndexBuild()

	s.log.Info("reindex complete",
		"client_id", clientID, "product_id", productID,
		"chunks", len(rec.Chunks), "version", h.Version)
	return h, nil
}

// processDocument extracts and chunks one stored blob. A document with no
// extractable content contributes zero chunks rather than failing the run.
func (s *IngestService) processDocument(ctx context.Context, prefix, name string) ([]models.Chunk, error) {
	rc, err := s.blobs.Open(ctx, prefix, name)
	if err != nil {
		return nil, fmt.Errorf("opening document %q: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading document %q: %w", name, err)
	}

	extractStart := time.Now()
	doc, err := s.extractor.Extract(ctx, data)
	s.stats.RecordTiming(metrics.StageExtract, time.Since(extractStart))
	if err != nil {
		return nil, fmt.Errorf("extracting document %q: %w", name, err)
	}

	chunkStart := time.Now()
	chunks, err := s.chunker.ChunkDocument(ctx, doc)
	s.stats.RecordTiming(metrics.StageChunk, time.Since(chunkStart))
	if errors.Is(err, chunker.ErrNoContent) {
		s.log.Warn("document has no extractable content", "name", name)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("chunking document %q: %w", name, err)
	}
	return chunks, nil
}
