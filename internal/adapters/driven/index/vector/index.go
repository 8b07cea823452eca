// Package vector provides an in-process dense index using exact cosine
// similarity over L2-normalised vectors.
//
// Similarity semantics are cosine, fixed at creation; vectors are
// normalised on insert so search reduces to an inner product. Exact
// scan keeps scores deterministic, which matters for fusion tests; the
// corpora here (one financial document plus golden chunks) stay far
// below the point where an approximate structure would pay off.
package vector

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/prism-labs/memogen/internal/core/domain"
	"github.com/prism-labs/memogen/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is the in-memory cosine similarity index.
type Index struct {
	mu         sync.RWMutex
	dimensions int
	vectors    map[string][]float32
}

// New creates an index with fixed dimensionality. Changing the
// embedding model's dimensionality requires a full reindex into a new
// Index, never an incremental update.
func New(dimensions int) (*Index, error) {
	if dimensions <= 0 {
		return nil, domain.ErrDimensionMismatch
	}
	return &Index{
		dimensions: dimensions,
		vectors:    make(map[string][]float32),
	}, nil
}

// Add inserts or replaces the vector for a chunk ID. The vector is
// L2-normalised on insert; re-adding the same chunk is idempotent.
func (idx *Index) Add(_ context.Context, chunkID string, embedding []float32) error {
	if len(embedding) != idx.dimensions {
		return domain.ErrDimensionMismatch
	}

	normalised := normalise(embedding)

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.vectors[chunkID] = normalised
	return nil
}

// Search returns up to k nearest chunks by cosine similarity, best
// first, ties broken by chunk ID.
func (idx *Index) Search(_ context.Context, query []float32, k int) ([]domain.Candidate, error) {
	if len(query) != idx.dimensions {
		return nil, domain.ErrDimensionMismatch
	}
	if k <= 0 {
		return nil, nil
	}

	q := normalise(query)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	results := make([]domain.Candidate, 0, len(idx.vectors))
	for chunkID, vec := range idx.vectors {
		results = append(results, domain.Candidate{
			ChunkID: chunkID,
			Score:   float64(dot(q, vec)),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ChunkID < results[j].ChunkID
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Dimensions returns the fixed vector size of the index.
func (idx *Index) Dimensions() int {
	return idx.dimensions
}

// Len returns the number of indexed vectors.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.vectors)
}

// Close releases resources.
func (idx *Index) Close() error {
	return nil
}

func normalise(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	if norm == 0 {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
