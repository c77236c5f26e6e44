// Package blob stores uploaded document files. Blobs are grouped by
// container and tenant prefix, mirroring how uploads are later enumerated
// for indexing.
package blob

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound indicates the requested blob does not exist.
var ErrNotFound = errors.New("blob not found")

// Store persists uploaded files.
type Store interface {
	// Upload writes a blob under the given prefix, replacing any existing
	// blob of the same name.
	Upload(ctx context.Context, prefix, name string, r io.Reader) error

	// List returns the blob names under a prefix, in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Open returns a reader for a blob. The caller closes it.
	Open(ctx context.Context, prefix, name string) (io.ReadCloser, error)
}
