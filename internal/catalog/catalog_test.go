package catalog

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEnroll_Success(t *testing.T) {
	c := &Catalog{}

	if err := c.Enroll("Ana", [][]float32{{1, 0, 0}}); err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}
	if err := c.Enroll("Luis", [][]float32{{0, 1, 0}}); err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}

	if c.Len() != 2 {
		t.Errorf("expected 2 identities, got %d", c.Len())
	}
	if c.Dim() != 3 {
		t.Errorf("expected dim 3, got %d", c.Dim())
	}
	if c.At(1).Name != "Luis" {
		t.Errorf("expected insertion order to be kept, got %q", c.At(1).Name)
	}
}

func TestEnroll_Ambiguous(t *testing.T) {
	tests := []struct {
		name       string
		embeddings [][]float32
	}{
		{"no faces", nil},
		{"two faces", [][]float32{{1, 0}, {0, 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Catalog{}
			err := c.Enroll("Ana", tt.embeddings)
			if !errors.Is(err, ErrEnrollmentAmbiguous) {
				t.Errorf("expected ErrEnrollmentAmbiguous, got %v", err)
			}
			if c.Len() != 0 {
				t.Errorf("expected nothing enrolled, got %d", c.Len())
			}
		})
	}
}

func TestEnroll_DimensionMismatch(t *testing.T) {
	c := &Catalog{}
	if err := c.Enroll("Ana", [][]float32{{1, 0, 0}}); err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}

	err := c.Enroll("Luis", [][]float32{{1, 0}})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("expected catalog unchanged, got %d entries", c.Len())
	}
}

func TestEnroll_EmptyName(t *testing.T) {
	c := &Catalog{}
	if err := c.Enroll("   ", [][]float32{{1}}); !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName for blank name, got %v", err)
	}
}

func TestEnroll_CopiesEmbedding(t *testing.T) {
	c := &Catalog{}
	emb := []float32{1, 2, 3}
	if err := c.Enroll("Ana", [][]float32{emb}); err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}
	emb[0] = 99
	if c.At(0).Embedding[0] != 1 {
		t.Error("catalog should not alias the caller's slice")
	}
}

func TestEnroll_DuplicateNamesAllowed(t *testing.T) {
	c := &Catalog{}
	_ = c.Enroll("Ana", [][]float32{{1, 0}})
	_ = c.Enroll("Luis", [][]float32{{0, 1}})
	if err := c.Enroll("Ana", [][]float32{{0.9, 0.1}}); err != nil {
		t.Fatalf("duplicate name should be accepted: %v", err)
	}

	want := []NameCount{{Name: "Ana", Samples: 2}, {Name: "Luis", Samples: 1}}
	if diff := cmp.Diff(want, c.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestFind_Normalized(t *testing.T) {
	c := &Catalog{}
	_ = c.Enroll("José Peña", [][]float32{{1, 0}})
	_ = c.Enroll("Ana", [][]float32{{0, 1}})

	found := c.Find("jose-pena")
	if len(found) != 1 || found[0].Name != "José Peña" {
		t.Errorf("Find() = %v, want José Peña", found)
	}
	if got := c.Find("nobody"); len(got) != 0 {
		t.Errorf("expected no match, got %v", got)
	}
}

func TestNew_RejectsMixedDimensions(t *testing.T) {
	_, err := New([]Identity{
		{Name: "A", Embedding: []float32{1, 2}},
		{Name: "B", Embedding: []float32{1, 2, 3}},
	})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestNilCatalog(t *testing.T) {
	var c *Catalog
	if c.Len() != 0 || c.Dim() != 0 || c.Identities() != nil || c.Names() != nil {
		t.Error("nil catalog should behave as empty")
	}
}
