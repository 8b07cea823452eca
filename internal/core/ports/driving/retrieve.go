package driving

import (
	"context"

	"github.com/prism-labs/memogen/internal/core/domain"
)

// RetrievalService answers queries against the index pair.
type RetrievalService interface {
	// Retrieve runs both retrieval paths, fuses them by reciprocal
	// rank, and returns the candidate pool. One path failing or timing
	// out yields a pool marked Partial, never an error.
	Retrieve(ctx context.Context, query domain.Query) (domain.CandidateSet, error)

	// Answer runs Retrieve followed by re-ranking and hydration,
	// capped to the query's result bound.
	Answer(ctx context.Context, query domain.Query) (domain.RankedSet, error)
}
