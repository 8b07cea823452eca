package driven

import (
	"context"

	"github.com/prism-labs/memogen/internal/core/domain"
)

// SearchEngine provides sparse lexical retrieval over chunk text.
// Backed by an in-process BM25 inverted index.
type SearchEngine interface {
	// Index adds or updates a chunk in the search index. Re-indexing
	// the same chunk replaces its postings; search results are
	// unchanged by duplicate indexing.
	Index(ctx context.Context, chunk domain.Chunk) error

	// Search scores chunks against the query text by BM25 and returns
	// up to k candidates, best first.
	Search(ctx context.Context, query string, k int) ([]domain.Candidate, error)

	// Close releases resources.
	Close() error
}
