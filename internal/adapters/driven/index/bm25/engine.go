// Package bm25 provides an in-process inverted index with BM25 scoring
// for the sparse retrieval path.
//
// Document-frequency and average-length statistics are updated on every
// Index call, so query-time scores are never stale. The index is a
// derived projection of the chunk store: on reopen it is rebuilt by
// re-tokenising stored chunk text, which is cheap compared to the
// embedding work the dense path avoids.
package bm25

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/prism-labs/memogen/internal/core/domain"
	"github.com/prism-labs/memogen/internal/core/ports/driven"
)

// BM25 parameters: term-frequency saturation and length normalisation.
const (
	k1 = 1.2
	b  = 0.75
)

// Ensure Engine implements the interface.
var _ driven.SearchEngine = (*Engine)(nil)

// posting records one chunk's occurrences of a term.
type posting struct {
	frequency int
}

// Engine is the in-memory BM25 inverted index.
type Engine struct {
	mu       sync.RWMutex
	postings map[string]map[string]*posting // term -> chunkID -> posting
	docTerms map[string][]string            // chunkID -> distinct terms
	docLen   map[string]int                 // chunkID -> token count
	totalLen int64
}

// New creates an empty BM25 engine.
func New() *Engine {
	return &Engine{
		postings: make(map[string]map[string]*posting),
		docTerms: make(map[string][]string),
		docLen:   make(map[string]int),
	}
}

// Index adds or updates a chunk. Re-indexing the same chunk replaces
// its postings, so duplicate indexing leaves search results unchanged.
func (e *Engine) Index(_ context.Context, chunk domain.Chunk) error {
	terms := tokenize(chunk.Text)

	freq := make(map[string]int, len(terms))
	for _, term := range terms {
		freq[term]++
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.remove(chunk.ID)

	distinct := make([]string, 0, len(freq))
	for term, f := range freq {
		docs, ok := e.postings[term]
		if !ok {
			docs = make(map[string]*posting)
			e.postings[term] = docs
		}
		docs[chunk.ID] = &posting{frequency: f}
		distinct = append(distinct, term)
	}
	e.docTerms[chunk.ID] = distinct
	e.docLen[chunk.ID] = len(terms)
	e.totalLen += int64(len(terms))

	return nil
}

// remove deletes a chunk's postings and statistics. Caller holds the lock.
func (e *Engine) remove(chunkID string) {
	terms, ok := e.docTerms[chunkID]
	if !ok {
		return
	}
	for _, term := range terms {
		if docs, ok := e.postings[term]; ok {
			delete(docs, chunkID)
			if len(docs) == 0 {
				delete(e.postings, term)
			}
		}
	}
	e.totalLen -= int64(e.docLen[chunkID])
	delete(e.docLen, chunkID)
	delete(e.docTerms, chunkID)
}

// Search scores chunks against the query by BM25 and returns up to k
// candidates, best first. Ties break by chunk ID for determinism.
func (e *Engine) Search(_ context.Context, query string, k int) ([]domain.Candidate, error) {
	terms := tokenize(query)
	if len(terms) == 0 || k <= 0 {
		return nil, nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	totalDocs := len(e.docLen)
	if totalDocs == 0 {
		return nil, nil
	}
	avgLen := float64(e.totalLen) / float64(totalDocs)

	scores := make(map[string]float64)
	for _, term := range terms {
		docs, ok := e.postings[term]
		if !ok {
			continue
		}
		idf := idf(totalDocs, len(docs))
		for chunkID, p := range docs {
			tf := tfNorm(float64(p.frequency), float64(e.docLen[chunkID]), avgLen)
			scores[chunkID] += idf * tf
		}
	}

	results := make([]domain.Candidate, 0, len(scores))
	for chunkID, score := range scores {
		results = append(results, domain.Candidate{ChunkID: chunkID, Score: score})
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

// DocCount returns the number of indexed chunks.
func (e *Engine) DocCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.docLen)
}

// Close releases resources.
func (e *Engine) Close() error {
	return nil
}

func idf(totalDocs, docFreq int) float64 {
	numerator := float64(totalDocs) - float64(docFreq) + 0.5
	denominator := float64(docFreq) + 0.5
	return math.Log(numerator/denominator + 1)
}

func tfNorm(termFreq, docLength, avgDocLength float64) float64 {
	if avgDocLength == 0 {
		return 0
	}
	lengthRatio := docLength / avgDocLength
	denominator := termFreq + k1*(1-b+b*lengthRatio)
	return (termFreq * (k1 + 1)) / denominator
}
