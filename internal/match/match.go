// Package match finds the enrolled identity closest to a face embedding.
package match

import (
	"github.com/Vallit0/asistencia-senoriales/internal/catalog"
)

// Result is the outcome of matching one embedding against a catalog.
// Name and Score are the best candidate even when it does not pass the
// threshold, which is what calibration needs.
type Result struct {
	Name    string  `json:"name,omitempty"`
	Score   float64 `json:"score"`
	Matched bool    `json:"matched"`
	// Skipped counts catalog entries whose embedding length differs from the query.
	Skipped int `json:"skipped,omitempty"`
}

// Identity returns the matched name, or false when the score is not above the threshold.
func (r Result) Identity() (string, bool) {
	if !r.Matched {
		return "", false
	}
	return r.Name, true
}

// Matcher scores embeddings against a catalog by cosine similarity.
type Matcher struct {
	threshold float64
	index     *Index
}

// New creates a matcher that accepts scores strictly above threshold.
func New(threshold float64) *Matcher {
	return &Matcher{threshold: threshold}
}

// NewWithIndex creates a matcher that narrows the scan to the index candidates.
// The index must have been built from the catalog passed to Match.
func NewWithIndex(threshold float64, index *Index) *Matcher {
	return &Matcher{threshold: threshold, index: index}
}

// Threshold returns the acceptance threshold.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Match returns the best identity for embedding. The first identity to reach
// the maximum wins; later identities with an equal score do not replace it.
// Only positive scores can become the best, so an empty catalog yields score 0.
func (m *Matcher) Match(embedding []float32, c *catalog.Catalog) Result {
	var res Result

	positions := m.candidates(embedding, c)
	for _, i := range positions {
		id := c.At(i)
		score, err := CosineSimilarity(embedding, id.Embedding)
		if err != nil {
			res.Skipped++
			continue
		}
		if score > res.Score {
			res.Score = score
			res.Name = id.Name
		}
	}

	res.Matched = res.Name != "" && res.Score > m.threshold
	return res
}

// candidates returns the catalog positions to score, in catalog order.
func (m *Matcher) candidates(embedding []float32, c *catalog.Catalog) []int {
	if m.index != nil && m.index.Usable(c, embedding) {
		return m.index.Candidates(embedding)
	}
	all := make([]int, c.Len())
	for i := range all {
		all[i] = i
	}
	return all
}
