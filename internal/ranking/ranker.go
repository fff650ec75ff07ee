// Package ranking scores document vectors against a query vector and orders them.
package ranking

import (
	"sort"

	"github.com/hyperjump/bunseki/internal/vector"
)

// DefaultLimit is the number of results a search returns.
const DefaultLimit = 10

// Scored is a corpus position with its similarity to the query.
type Scored struct {
	Index int
	Score float64
}

// Ranker orders documents by cosine similarity to a query.
type Ranker struct {
	limit int
}

// NewRanker creates a Ranker returning at most limit results. A non-positive limit
// returns every document.
func NewRanker(limit int) *Ranker {
	return &Ranker{limit: limit}
}

// Limit returns the result cap, 0 meaning unlimited.
func (r *Ranker) Limit() int {
	if r.limit < 0 {
		return 0
	}
	return r.limit
}

// Score returns the cosine similarity of every document vector to the query vector,
// clamped to [0, 1].
func Score(query []float64, docs [][]float64) []float64 {
	scores := make([]float64, len(docs))
	for i, d := range docs {
		s := vector.Cosine(query, d)
		if s < 0 {
			s = 0
		}
		scores[i] = s
	}
	return scores
}

// Rank scores docs against query and returns them best first. Equal scores keep
// their corpus order.
func (r *Ranker) Rank(query []float64, docs [][]float64) []Scored {
	return r.Order(Score(query, docs))
}

// Order sorts precomputed scores in descending order with a stable tie-break on
// position and truncates to the limit.
func (r *Ranker) Order(scores []float64) []Scored {
	ranked := make([]Scored, len(scores))
	for i, s := range scores {
		ranked[i] = Scored{Index: i, Score: s}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if limit := r.Limit(); limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
