package driven

import (
	"context"

	"github.com/prism-labs/memogen/internal/core/domain"
)

// VectorIndex provides dense similarity retrieval over chunk embeddings.
//
// Similarity semantics are cosine over L2-normalised vectors, fixed at
// index creation. Dimensionality is likewise fixed at creation; adding
// a vector of a different length is an error, and reopening an index
// against a store embedded with a different model is fatal at startup
// (domain.ErrDimensionMismatch), never handled at request time.
type VectorIndex interface {
	// Add inserts or replaces the vector for the given chunk ID.
	Add(ctx context.Context, chunkID string, embedding []float32) error

	// Search returns up to k nearest chunks to the query vector by
	// cosine similarity, best first.
	Search(ctx context.Context, query []float32, k int) ([]domain.Candidate, error)

	// Dimensions returns the fixed vector size of the index.
	Dimensions() int

	// Close releases resources.
	Close() error
}
