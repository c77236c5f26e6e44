package llm

import (
	"context"
	"testing"

	"github.com/docchat-labs/docchat/internal/metrics"
)

type fakeEmbeddingModel struct {
	vectors [][]float32
	err     error
}

func (f *fakeEmbeddingModel) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors[:len(texts)], nil
}

func (f *fakeEmbeddingModel) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors[0], nil
}

func TestEmbedBatchRecordsTiming(t *testing.T) {
	stats := metrics.NewCollector()
	e := &Embedder{
		model:     &fakeEmbeddingModel{vectors: [][]float32{{1, 0, 0}, {0, 1, 0}}},
		dimension: 3,
		modelName: "test-embed",
		stats:     stats,
	}

	vectors, err := e.EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vectors))
	}

	stage := stats.Snapshot().Stages[metrics.StageEmbed]
	if stage == nil {
		t.Fatal("expected embed stage in snapshot")
	}
	if stage.Count != 1 {
		t.Errorf("embed stage count = %d, want 1", stage.Count)
	}
}

func TestEmbedBatchDimensionMismatch(t *testing.T) {
	e := &Embedder{
		model:     &fakeEmbeddingModel{vectors: [][]float32{{1, 0}}},
		dimension: 3,
		modelName: "test-embed",
	}

	if _, err := e.EmbedBatch(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	e := &Embedder{model: &fakeEmbeddingModel{}, dimension: 3}

	vectors, err := e.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
	if len(vectors) != 0 {
		t.Errorf("got %d vectors, want 0", len(vectors))
	}
}
