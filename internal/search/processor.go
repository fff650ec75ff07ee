package search

import (
	"fmt"

	"github.com/hyperjump/bunseki/internal/models"
)

// ProcessSearchRequest validates a search request and trims its query.
func ProcessSearchRequest(req *models.SearchRequest) error {
	if req == nil {
		return fmt.Errorf("%w: missing search request", ErrInvalidArgument)
	}
	req.Normalize()
	return nil
}

// ProcessClusterRequest resolves the effective cluster count against the configured default.
func ProcessClusterRequest(req *models.ClusterRequest, defaultK int) (int, error) {
	return req.Resolve(defaultK)
}
