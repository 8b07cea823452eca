package driven

import "context"

// RerankService scores (query, candidate text) pairs jointly with a
// cross-encoder. More expensive per item than either retrieval path,
// which is why it only runs over the bounded fused candidate pool.
//
// Scores are deterministic given identical model weights and inputs,
// and live on a single comparable scale across candidates of one query.
type RerankService interface {
	// Score returns one relevance score per candidate text, in input
	// order, for the given query.
	Score(ctx context.Context, query string, texts []string) ([]float64, error)

	// ModelName returns the name of the cross-encoder in use.
	ModelName() string

	// Close releases resources.
	Close() error
}
