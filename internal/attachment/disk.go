package attachment

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DiskProvider stores uploads on the local filesystem under a root directory.
type DiskProvider struct {
	root string
}

// NewDiskProvider creates a provider rooted at dir, creating it if needed.
func NewDiskProvider(dir string) (*DiskProvider, error) {
	root := strings.TrimSpace(dir)
	if root == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	return &DiskProvider{root: abs}, nil
}

func (p *DiskProvider) resolve(key string) (string, error) {
	full := filepath.Join(p.root, filepath.FromSlash(key))
	if !strings.HasPrefix(full, p.root+string(os.PathSeparator)) {
		return "", ErrPathTraversal
	}
	return full, nil
}

// Put writes data to storage under the given key.
func (p *DiskProvider) Put(ctx context.Context, key string, reader io.Reader) error {
	full, err := p.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err := io.Copy(tmp, reader); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return fmt.Errorf("finalize object: %w", err)
	}
	return nil
}

// Open returns a reader for the given storage key.
func (p *DiskProvider) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	full, err := p.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrAttachmentNotFound
		}
		return nil, fmt.Errorf("open object: %w", err)
	}
	return f, nil
}

// Delete removes the object at key. Missing objects are not an error.
func (p *DiskProvider) Delete(ctx context.Context, key string) error {
	full, err := p.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
