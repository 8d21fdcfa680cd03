// Package venue defines the external venue lookup capabilities the pipelines
// consume and their concrete adapters. Both providers are best-effort: they
// may return fewer results than requested, and callers degrade to empty
// candidate lists on error rather than failing a pipeline run.
package venue

import (
	"context"

	"github.com/FACorreiaa/seoul-connect-api/internal/types"
)

// Catalog is the semantic/fuzzy venue lookup (attractions and themed spots).
type Catalog interface {
	Search(ctx context.Context, query string, limit int) ([]types.VenueCandidate, error)
}

// NearbySearch is the keyword-based place lookup anchored at a location
// (dining and lodging candidates).
type NearbySearch interface {
	Search(ctx context.Context, query string, near types.Location, limit int) ([]types.VenueCandidate, error)
}
