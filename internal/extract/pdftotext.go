package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// CommandRunner abstracts external command execution so tests can stub the
// pdftotext binary.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Pdftotext extracts page text by shelling out to the poppler pdftotext
// binary. It performs no table detection; Tables stay empty and table-aware
// extractors can be plugged in behind the Extractor interface.
type Pdftotext struct {
	bin    string
	runner CommandRunner
}

// Compile-time check that Pdftotext implements Extractor.
var _ Extractor = (*Pdftotext)(nil)

// NewPdftotext creates a pdftotext-backed extractor. bin defaults to
// "pdftotext" on PATH when empty.
func NewPdftotext(bin string) *Pdftotext {
	if bin == "" {
		bin = "pdftotext"
	}
	return &Pdftotext{bin: bin, runner: execRunner{}}
}

// NewPdftotextWithRunner creates an extractor with a custom runner (tests).
func NewPdftotextWithRunner(bin string, runner CommandRunner) *Pdftotext {
	if bin == "" {
		bin = "pdftotext"
	}
	return &Pdftotext{bin: bin, runner: runner}
}

// Extract writes the PDF bytes to a temp file, runs pdftotext with layout
// preservation, and splits the output into pages on form feeds.
func (p *Pdftotext) Extract(ctx context.Context, data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	tmp, err := os.CreateTemp("", "docchat-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	out, err := p.runner.Run(ctx, p.bin, "-layout", "-enc", "UTF-8", tmp.Name(), "-")
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", p.bin, err)
	}

	return parsePages(string(out)), nil
}

// parsePages splits pdftotext output on form feeds into pages.
func parsePages(out string) *Document {
	raw := strings.Split(out, "\f")

	doc := &Document{}
	for i, text := range raw {
		text = strings.TrimRight(text, "\n")
		if i == len(raw)-1 && strings.TrimSpace(text) == "" {
			// pdftotext emits a trailing form feed after the last page
			continue
		}
		doc.Pages = append(doc.Pages, Page{
			Number: i + 1,
			Text:   text,
		})
	}
	return doc
}
