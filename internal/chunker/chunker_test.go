package chunker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/docchat-labs/docchat/internal/extract"
)

func TestChunkDocument_EmptyPages(t *testing.T) {
	c := New(DefaultConfig(), nil)

	doc := &extract.Document{Pages: []extract.Page{
		{Number: 1, Text: ""},
		{Number: 2, Text: "   \n\t  "},
	}}

	chunks, err := c.ChunkDocument(context.Background(), doc)
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("ChunkDocument() error = %v, want ErrNoContent", err)
	}
	if len(chunks) != 0 {
		t.Errorf("got %d chunks, want 0", len(chunks))
	}
}

func TestChunkDocument_NilDocument(t *testing.T) {
	c := New(DefaultConfig(), nil)

	if _, err := c.ChunkDocument(context.Background(), nil); !errors.Is(err, ErrNoContent) {
		t.Fatalf("ChunkDocument(nil) error = %v, want ErrNoContent", err)
	}
}

func TestChunkDocument_EmptyPageYieldsNoChunkForThatPage(t *testing.T) {
	c := New(DefaultConfig(), nil)

	doc := &extract.Document{Pages: []extract.Page{
		{Number: 1, Text: ""},
		{Number: 2, Text: "Invoice Total: $100"},
	}}

	chunks, err := c.ChunkDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("ChunkDocument() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].SourcePage != 2 {
		t.Errorf("SourcePage = %d, want 2", chunks[0].SourcePage)
	}
}

func TestChunkDocument_ShortProseSingleChunk(t *testing.T) {
	c := New(DefaultConfig(), nil)

	doc := &extract.Document{Pages: []extract.Page{
		{Number: 1, Text: "A short paragraph."},
	}}

	chunks, err := c.ChunkDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("ChunkDocument() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Content != "A short paragraph." {
		t.Errorf("Content = %q", chunks[0].Content)
	}
	if chunks[0].IsTable {
		t.Error("prose chunk marked as table")
	}
}

func TestSplitWindows_OverlapContract(t *testing.T) {
	const size, overlap = 50, 10

	text := strings.Repeat("abcdefghij", 20) // 200 chars
	windows := splitWindows(text, size, overlap)

	if len(windows) < 2 {
		t.Fatalf("expected multiple windows, got %d", len(windows))
	}

	for i, w := range windows {
		if len([]rune(w)) > size {
			t.Errorf("window %d exceeds size: %d > %d", i, len([]rune(w)), size)
		}
	}

	// Consecutive windows overlap by exactly `overlap` characters.
	for i := 1; i < len(windows); i++ {
		prev := []rune(windows[i-1])
		cur := []rune(windows[i])
		tail := string(prev[len(prev)-overlap:])
		head := string(cur[:overlap])
		if tail != head {
			t.Errorf("windows %d/%d overlap mismatch: %q vs %q", i-1, i, tail, head)
		}
	}

	// Dropping each window's leading overlap reconstructs the original.
	var sb strings.Builder
	sb.WriteString(windows[0])
	for i := 1; i < len(windows); i++ {
		sb.WriteString(string([]rune(windows[i])[overlap:]))
	}
	if sb.String() != text {
		t.Error("concatenation without overlap does not reconstruct original text")
	}
}

func TestSplitWindows_ShortTextSingleWindow(t *testing.T) {
	windows := splitWindows("tiny", 500, 100)
	if len(windows) != 1 || windows[0] != "tiny" {
		t.Errorf("splitWindows() = %v, want [tiny]", windows)
	}
}

func TestSplitWindows_MultibyteSafe(t *testing.T) {
	text := strings.Repeat("日本語テキスト処理", 30)
	for _, w := range splitWindows(text, 40, 8) {
		if strings.ContainsRune(w, '�') {
			t.Fatalf("window contains replacement character: %q", w)
		}
	}
}

func TestChunkDocument_TableWindowSizedToLargest(t *testing.T) {
	c := New(DefaultConfig(), nil)

	big := extract.Table{}
	for i := 0; i < 80; i++ {
		big = append(big, []string{"policy-name-long-enough", "coverage amount", "annual premium"})
	}
	small := extract.Table{
		{"code", "meaning"},
		{"E100", "expired"},
	}

	doc := &extract.Document{Pages: []extract.Page{
		{Number: 1, Text: "intro text", Tables: []extract.Table{big}},
		{Number: 2, Tables: []extract.Table{small}},
	}}

	chunks, err := c.ChunkDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("ChunkDocument() error = %v", err)
	}

	var tableChunks int
	for _, ch := range chunks {
		if ch.IsTable {
			tableChunks++
		}
	}
	// The window is sized to the largest table, so neither table is
	// fragmented: exactly one chunk per table.
	if tableChunks != 2 {
		t.Errorf("got %d table chunks, want 2", tableChunks)
	}
}

func TestChunkDocument_PreservesDocumentOrder(t *testing.T) {
	c := New(DefaultConfig(), nil)

	doc := &extract.Document{Pages: []extract.Page{
		{Number: 1, Text: "page one prose", Tables: []extract.Table{{{"a", "b"}}}},
		{Number: 2, Text: "page two prose"},
	}}

	chunks, err := c.ChunkDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("ChunkDocument() error = %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	if chunks[0].IsTable || !chunks[1].IsTable || chunks[2].IsTable {
		t.Errorf("unexpected order: %+v", chunks)
	}
	if chunks[2].SourcePage != 2 {
		t.Errorf("last chunk page = %d, want 2", chunks[2].SourcePage)
	}
}

// fakeCleaner returns a canned response or error.
type fakeCleaner struct {
	out string
	err error
}

func (f *fakeCleaner) Clean(_ context.Context, _ string) (string, error) {
	return f.out, f.err
}

func TestChunkDocument_TableCleanerOutputUsed(t *testing.T) {
	cleaner := &fakeCleaner{out: "```json\n[{\"code\":\"E100\",\"meaning\":\"expired\"}]\n```"}
	c := New(DefaultConfig(), cleaner)

	doc := &extract.Document{Pages: []extract.Page{
		{Number: 1, Tables: []extract.Table{{{"code", "meaning"}, {"E100", "expired"}}}},
	}}

	chunks, err := c.ChunkDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("ChunkDocument() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if !strings.Contains(chunks[0].Content, `"code":"E100"`) {
		t.Errorf("cleaner output not used: %q", chunks[0].Content)
	}
}

func TestChunkDocument_TableCleanerFailureKeepsRawRows(t *testing.T) {
	cleaner := &fakeCleaner{err: errors.New("model unavailable")}
	c := New(DefaultConfig(), cleaner)

	doc := &extract.Document{Pages: []extract.Page{
		{Number: 1, Tables: []extract.Table{{{"code", "meaning"}, {"E100", "expired"}}}},
	}}

	chunks, err := c.ChunkDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("ChunkDocument() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Content != "code | meaning\nE100 | expired" {
		t.Errorf("raw rows not preserved: %q", chunks[0].Content)
	}
}
