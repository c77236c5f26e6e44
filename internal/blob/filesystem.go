package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FilesystemStore keeps blobs on the local filesystem under
// root/container/prefix/name. Writes go through a temp file and rename so
// readers never observe partial uploads.
type FilesystemStore struct {
	root string
}

var _ Store = (*FilesystemStore)(nil)

// NewFilesystemStore creates a store rooted at root/container, creating
// the directory if needed.
func NewFilesystemStore(root, container string) (*FilesystemStore, error) {
	dir := filepath.Join(root, sanitize(container))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob root: %w", err)
	}
	return &FilesystemStore{root: dir}, nil
}

func (s *FilesystemStore) Upload(ctx context.Context, prefix, name string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Join(s.root, sanitize(prefix))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating blob prefix %q: %w", prefix, err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("creating temp blob: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("writing blob %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing blob %q: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(dir, sanitize(name))); err != nil {
		return fmt.Errorf("finalizing blob %q: %w", name, err)
	}
	return nil
}

func (s *FilesystemStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(s.root, sanitize(prefix)))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing blobs under %q: %w", prefix, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *FilesystemStore) Open(ctx context.Context, prefix, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.root, sanitize(prefix), sanitize(name)))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("opening blob %q/%q: %w", prefix, name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("opening blob %q/%q: %w", prefix, name, err)
	}
	return f, nil
}

// sanitize collapses path components so a prefix or name can never escape
// the store root.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\\", "/")
	s = filepath.Clean("/" + s)
	return strings.TrimPrefix(s, "/")
}
