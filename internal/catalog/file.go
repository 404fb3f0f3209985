package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/renameio"
)

// FileStore keeps the catalog in a JSON file as an array of
// {"nombre": ..., "embedding": [...]} objects.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the JSON file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the catalog. A missing file yields an empty catalog.
func (s *FileStore) Load(_ context.Context) (*Catalog, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Catalog{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", s.path, err)
	}

	var identities []Identity
	if err := json.Unmarshal(data, &identities); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptCatalog, s.path, err)
	}

	c, err := New(identities)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptCatalog, s.path, err)
	}
	return c, nil
}

// Save writes the full catalog, atomically replacing the previous file.
func (s *FileStore) Save(_ context.Context, c *Catalog) error {
	identities := c.Identities()
	if identities == nil {
		identities = []Identity{}
	}
	data, err := json.Marshal(identities)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := renameio.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write catalog %s: %w", s.path, err)
	}
	return nil
}
