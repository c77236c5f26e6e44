// Package extract turns uploaded document bytes into per-page text and
// tables. Extraction is a pluggable external concern; the chunker only
// depends on the Document shape produced here.
package extract

import "context"

// Table is a raw extracted table: rows of cells, possibly ragged, possibly
// containing empty cells. Cleanup happens downstream in the chunker.
type Table [][]string

// Page holds the extracted content of a single document page.
type Page struct {
	// Number is 1-based.
	Number int
	Text   string
	Tables []Table
}

// Document is the extraction result for one uploaded file.
type Document struct {
	Pages []Page
}

// Extractor extracts text and tables from raw document bytes.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (*Document, error)
}
