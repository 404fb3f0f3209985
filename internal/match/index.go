package match

import (
	"slices"

	"github.com/coder/hnsw"

	"github.com/Vallit0/asistencia-senoriales/internal/catalog"
)

// HNSWMaxNeighbors (M) is the maximum number of neighbors per node.
// Higher values improve recall but increase memory and build time.
const HNSWMaxNeighbors = 16

// Index is an approximate nearest-neighbor index over catalog positions.
// It only narrows the candidates; every candidate is re-scored exactly.
type Index struct {
	graph   *hnsw.Graph[int]
	size    int
	dim     int
	minSize int
	k       int
}

// BuildIndex builds an HNSW graph over every catalog entry.
// Catalogs with fewer than minSize entries are scanned linearly instead
// (minSize <= 0 disables the index). k is the number of candidates re-scored.
func BuildIndex(c *catalog.Catalog, minSize, k int) *Index {
	idx := &Index{size: c.Len(), dim: c.Dim(), minSize: minSize, k: k}
	if minSize <= 0 || c.Len() < minSize || k <= 0 {
		return idx
	}

	g := hnsw.NewGraph[int]()
	g.M = HNSWMaxNeighbors
	g.Ml = 1.0 / float64(HNSWMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.CosineDistance

	for i := range c.Len() {
		id := c.At(i)
		if len(id.Embedding) != idx.dim {
			continue
		}
		g.Add(hnsw.MakeNode(i, id.Embedding))
	}

	idx.graph = g
	return idx
}

// Usable reports whether the index was built for c and can answer query.
func (idx *Index) Usable(c *catalog.Catalog, query []float32) bool {
	return idx.graph != nil && idx.size == c.Len() && len(query) == idx.dim
}

// Candidates returns up to k catalog positions nearest to query, in catalog order.
func (idx *Index) Candidates(query []float32) []int {
	neighbors := idx.graph.Search(query, idx.k)
	out := make([]int, 0, len(neighbors))
	for _, n := range neighbors {
		out = append(out, n.Key)
	}
	slices.Sort(out)
	return out
}

// Enabled reports whether the graph was built.
func (idx *Index) Enabled() bool {
	return idx != nil && idx.graph != nil
}
