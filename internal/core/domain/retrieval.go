package domain

// DefaultResultCount is the number of final results returned when the
// query does not specify one.
const DefaultResultCount = 5

// Query is a request against the index pair.
type Query struct {
	// Text is the query text.
	Text string

	// Section optionally targets a memo section (e.g. "total assets")
	// to bias sub-query dispatch during generation.
	Section string

	// NResults bounds the number of final results. Zero means
	// DefaultResultCount.
	NResults int
}

// ResultCount returns the effective result bound.
func (q Query) ResultCount() int {
	if q.NResults <= 0 {
		return DefaultResultCount
	}
	return q.NResults
}

// Candidate is a (chunk, score) pair produced by one retrieval path.
// Scores from the dense and sparse paths live on different scales and
// must only be combined by rank, never by raw value.
type Candidate struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the path-local relevance score: cosine similarity for
	// the dense path, BM25 for the sparse path, reciprocal-rank sum
	// after fusion.
	Score float64
}

// CandidateSet is the fused candidate pool handed to the re-ranker.
type CandidateSet struct {
	// Candidates is ordered descending by fused score, ties broken by
	// chunk ID for determinism.
	Candidates []Candidate

	// Partial is true when one retrieval path timed out or failed and
	// the pool was built from the surviving path alone. This is an
	// expected operating condition, not an error.
	Partial bool
}

// RankedResult is a re-ranked chunk with a score on a single comparable
// scale across all results.
type RankedResult struct {
	// Chunk is the full retrieved chunk.
	Chunk Chunk

	// Score is the cross-encoder relevance score, or the fused RRF
	// score when re-ranking was unavailable.
	Score float64
}

// RankedSet is the re-ranker output for one query.
type RankedSet struct {
	// Results is ordered best-first, capped to the query's result bound.
	Results []RankedResult

	// Partial carries the candidate pool's partial flag through.
	Partial bool

	// Reranked is false when the rerank backend was unavailable and
	// the fusion order was returned as-is.
	Reranked bool
}

// TopScore returns the best result's score, or zero when empty.
func (r RankedSet) TopScore() float64 {
	if len(r.Results) == 0 {
		return 0
	}
	return r.Results[0].Score
}
