// Package catalog holds the enrolled identities that detections are matched against.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Vallit0/asistencia-senoriales/internal/facematch"
)

var (
	// ErrCorruptCatalog is returned when a persisted catalog exists but cannot be decoded.
	ErrCorruptCatalog = errors.New("corrupt catalog")
	// ErrEnrollmentAmbiguous is returned when enrollment gets anything but exactly one embedding.
	ErrEnrollmentAmbiguous = errors.New("enrollment requires exactly one face")
	// ErrDimensionMismatch is returned when two embeddings have different lengths.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrInvalidName is returned when an enrollment name is blank.
	ErrInvalidName = errors.New("name is required")
)

// Identity is one enrolled sample. Name is the display name and is not unique:
// the same person may be enrolled several times with independent embeddings.
type Identity struct {
	Name      string    `json:"nombre"`
	Embedding []float32 `json:"embedding"`
}

// Store persists a catalog.
type Store interface {
	// Load returns the persisted catalog, or an empty one if nothing was persisted yet.
	Load(ctx context.Context) (*Catalog, error)
	// Save replaces the persisted catalog with c.
	Save(ctx context.Context, c *Catalog) error
}

// Catalog is an ordered list of identities sharing one embedding dimension.
type Catalog struct {
	identities []Identity
}

// New creates a catalog from identities, validating that they share a dimension.
func New(identities []Identity) (*Catalog, error) {
	c := &Catalog{}
	for i, id := range identities {
		if len(id.Embedding) == 0 {
			return nil, fmt.Errorf("identity %d (%q) has an empty embedding", i, id.Name)
		}
		if dim := c.Dim(); dim != 0 && len(id.Embedding) != dim {
			return nil, fmt.Errorf("identity %d (%q) has %d dimensions, expected %d: %w",
				i, id.Name, len(id.Embedding), dim, ErrDimensionMismatch)
		}
		c.identities = append(c.identities, Identity{Name: id.Name, Embedding: slices.Clone(id.Embedding)})
	}
	return c, nil
}

// Len returns the number of enrolled samples.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.identities)
}

// Dim returns the shared embedding dimension, or 0 for an empty catalog.
func (c *Catalog) Dim() int {
	if c == nil || len(c.identities) == 0 {
		return 0
	}
	return len(c.identities[0].Embedding)
}

// At returns the identity at position i. The embedding must not be modified.
func (c *Catalog) At(i int) Identity {
	return c.identities[i]
}

// Identities returns a copy of the enrolled identities in catalog order.
func (c *Catalog) Identities() []Identity {
	if c == nil {
		return nil
	}
	out := make([]Identity, len(c.identities))
	for i, id := range c.identities {
		out[i] = Identity{Name: id.Name, Embedding: slices.Clone(id.Embedding)}
	}
	return out
}

// Enroll appends a new identity. embeddings holds every face the caller detected
// in the enrollment frame; anything but exactly one fails with ErrEnrollmentAmbiguous.
// Nothing is persisted here, callers follow up with Store.Save.
func (c *Catalog) Enroll(name string, embeddings [][]float32) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	if len(embeddings) != 1 {
		return fmt.Errorf("%d faces detected: %w", len(embeddings), ErrEnrollmentAmbiguous)
	}
	emb := embeddings[0]
	if len(emb) == 0 {
		return errors.New("empty embedding")
	}
	if dim := c.Dim(); dim != 0 && len(emb) != dim {
		return fmt.Errorf("embedding has %d dimensions, catalog uses %d: %w", len(emb), dim, ErrDimensionMismatch)
	}
	c.identities = append(c.identities, Identity{Name: name, Embedding: slices.Clone(emb)})
	return nil
}

// Find returns every identity whose name matches after normalization
// (case, diacritics, dashes), in catalog order.
func (c *Catalog) Find(name string) []Identity {
	if c == nil {
		return nil
	}
	want := facematch.NormalizePersonName(name)
	var out []Identity
	for _, id := range c.identities {
		if facematch.NormalizePersonName(id.Name) == want {
			out = append(out, id)
		}
	}
	return out
}

// NameCount is a distinct name and how many samples are enrolled for it.
type NameCount struct {
	Name    string `json:"name"`
	Samples int    `json:"samples"`
}

// Names returns the distinct names in first-enrollment order with sample counts.
func (c *Catalog) Names() []NameCount {
	if c == nil {
		return nil
	}
	index := make(map[string]int)
	var out []NameCount
	for _, id := range c.identities {
		if i, ok := index[id.Name]; ok {
			out[i].Samples++
			continue
		}
		index[id.Name] = len(out)
		out = append(out, NameCount{Name: id.Name, Samples: 1})
	}
	return out
}
