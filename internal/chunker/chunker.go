// Package chunker splits extracted documents into bounded, overlapping
// text fragments, the unit of indexing and retrieval. Prose and tables are
// chunked independently: prose with a fixed sliding window, tables with a
// window sized to the largest table so tables are not fragmented below
// their natural size.
package chunker

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/docchat-labs/docchat/internal/extract"
	"github.com/docchat-labs/docchat/internal/models"
)

// ErrNoContent indicates a document produced zero chunks. Callers surface
// this as a validation error rather than building a degenerate index.
var ErrNoContent = errors.New("no content to index")

// TableCleaner optionally restructures a serialized table using a model:
// detecting logical sub-tables, dropping empty rows/columns, and
// deduplicating repeated headers.
type TableCleaner interface {
	Clean(ctx context.Context, tableText string) (string, error)
}

// Config defines prose chunking parameters.
type Config struct {
	// Size is the target prose window size in characters.
	Size int
	// Overlap is the character overlap between consecutive prose chunks.
	Overlap int
}

// DefaultConfig returns the production chunking parameters.
func DefaultConfig() Config {
	return Config{
		Size:    500,
		Overlap: 100,
	}
}

// Chunker turns extracted documents into ordered chunk sequences.
// Pure aside from the optional table-cleanup model call.
type Chunker struct {
	cfg     Config
	cleaner TableCleaner
}

// New creates a Chunker. cleaner may be nil to skip model-assisted table
// cleanup.
func New(cfg Config, cleaner TableCleaner) *Chunker {
	if cfg.Size <= 0 {
		cfg.Size = DefaultConfig().Size
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.Size {
		cfg.Overlap = cfg.Size / 5
	}
	return &Chunker{cfg: cfg, cleaner: cleaner}
}

// segment is a page's prose or one serialized table, in document order.
type segment struct {
	page    int
	text    string
	isTable bool
}

// ChunkDocument splits a document into ordered chunks. Empty pages yield
// no chunks; a document yielding zero chunks overall returns ErrNoContent.
func (c *Chunker) ChunkDocument(ctx context.Context, doc *extract.Document) ([]models.Chunk, error) {
	if doc == nil {
		return nil, ErrNoContent
	}

	// First pass: collect segments in document order and clean tables, so
	// the table window can be sized to the largest cleaned table.
	var segments []segment
	maxTableLen := 0

	for _, page := range doc.Pages {
		if text := strings.TrimSpace(page.Text); text != "" {
			segments = append(segments, segment{page: page.Number, text: text})
		}

		for _, tbl := range page.Tables {
			text := serializeTable(tbl)
			if text == "" {
				continue
			}
			if c.cleaner != nil {
				cleaned, err := c.cleaner.Clean(ctx, text)
				if err != nil {
					slog.Warn("table cleanup failed, keeping raw rows", "page", page.Number, "error", err)
				} else if s := normalizeCleanerOutput(cleaned); s != "" {
					text = s
				}
			}
			segments = append(segments, segment{page: page.Number, text: text, isTable: true})
			if len(text) > maxTableLen {
				maxTableLen = len(text)
			}
		}
	}

	tableSize := maxTableLen
	if tableSize == 0 {
		tableSize = c.cfg.Size
	}
	tableOverlap := tableSize / 5

	// Second pass: window each segment.
	var chunks []models.Chunk
	for _, seg := range segments {
		size, overlap := c.cfg.Size, c.cfg.Overlap
		if seg.isTable {
			size, overlap = tableSize, tableOverlap
		}
		for _, w := range splitWindows(seg.text, size, overlap) {
			chunks = append(chunks, models.Chunk{
				Content:    w,
				SourcePage: seg.page,
				IsTable:    seg.isTable,
			})
		}
	}

	if len(chunks) == 0 {
		return nil, ErrNoContent
	}
	return chunks, nil
}

// splitWindows slides a fixed-size character window over text with the
// given overlap. Windows are measured in runes so multi-byte characters
// are never split.
func splitWindows(text string, size, overlap int) []string {
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	step := size - overlap
	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}
