package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument is returned for requests that can never succeed (e.g. k <= 0).
var ErrInvalidArgument = errors.New("invalid argument")

// SearchRequest is a free-text relevance search over the caller's accessible documents.
// An empty or whitespace-only query is valid and yields the unranked fallback.
type SearchRequest struct {
	Query      string `json:"query"`
	WithScores bool   `json:"with_scores,omitempty"`
}

// Normalize trims surrounding whitespace from the query.
func (r *SearchRequest) Normalize() {
	r.Query = strings.TrimSpace(r.Query)
}

// ClusterRequest asks for the caller's accessible documents partitioned into K clusters.
// A nil K means "use the configured default".
type ClusterRequest struct {
	K *int `json:"k,omitempty"`
}

// Resolve returns the effective cluster count, falling back to defaultK when K is unset.
// It returns ErrInvalidArgument when the effective count is not positive.
func (r *ClusterRequest) Resolve(defaultK int) (int, error) {
	k := defaultK
	if r != nil && r.K != nil {
		k = *r.K
	}
	if k <= 0 {
		return 0, fmt.Errorf("%w: cluster count k must be positive, got %d", ErrInvalidArgument, k)
	}
	return k, nil
}
