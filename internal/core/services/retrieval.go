package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prism-labs/memogen/internal/core/domain"
	"github.com/prism-labs/memogen/internal/core/ports/driven"
	"github.com/prism-labs/memogen/internal/core/ports/driving"
	"github.com/prism-labs/memogen/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// DefaultRRFConstant dampens the contribution gap between adjacent
// ranks during fusion.
const DefaultRRFConstant = 60

// DefaultPoolSize bounds the fused candidate pool handed to the
// re-ranker.
const DefaultPoolSize = 100

// DefaultPathTimeout bounds each retrieval path. A path missing the
// deadline degrades the pool to partial instead of failing the query.
const DefaultPathTimeout = 2 * time.Second

// RetrievalOptions tunes fusion behaviour.
type RetrievalOptions struct {
	// RRFConstant is the reciprocal-rank damping constant.
	RRFConstant int

	// PoolSize bounds the fused candidate pool.
	PoolSize int

	// PathTimeout bounds each retrieval path.
	PathTimeout time.Duration

	// GoldenBoost is added to the fused score of golden chunks. Zero
	// means golden chunks compete on relevance alone.
	GoldenBoost float64
}

// RetrievalService answers queries by fusing the dense and sparse
// retrieval paths with reciprocal-rank fusion, then re-ranking the
// pooled candidates with a cross-encoder.
type RetrievalService struct {
	store    driven.ChunkStore
	search   driven.SearchEngine
	vector   driven.VectorIndex
	embedder driven.EmbeddingService
	reranker driven.RerankService
	opts     RetrievalOptions
}

// NewRetrievalService creates a retrieval service. vector, embedder,
// and reranker may each be nil; the service degrades accordingly.
func NewRetrievalService(
	store driven.ChunkStore,
	search driven.SearchEngine,
	vector driven.VectorIndex,
	embedder driven.EmbeddingService,
	reranker driven.RerankService,
	opts RetrievalOptions,
) *RetrievalService {
	if opts.RRFConstant <= 0 {
		opts.RRFConstant = DefaultRRFConstant
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = DefaultPoolSize
	}
	if opts.PathTimeout <= 0 {
		opts.PathTimeout = DefaultPathTimeout
	}

	return &RetrievalService{
		store:    store,
		search:   search,
		vector:   vector,
		embedder: embedder,
		reranker: reranker,
		opts:     opts,
	}
}

// Retrieve runs both retrieval paths in parallel and fuses them by
// reciprocal rank. One path failing or timing out yields a partial
// pool; both failing is an error.
func (s *RetrievalService) Retrieve(ctx context.Context, query domain.Query) (domain.CandidateSet, error) {
	logger.Section("Retrieval")
	logger.Debug("Query: %q, results: %d", query.Text, query.ResultCount())

	text := strings.TrimSpace(query.Text)
	if text == "" {
		return domain.CandidateSet{}, fmt.Errorf("retrieve: %w", domain.ErrInvalidInput)
	}

	// The pool must at least cover the final result bound.
	pool := s.opts.PoolSize
	if pool < query.ResultCount() {
		pool = query.ResultCount()
	}

	var dense, sparse []domain.Candidate
	var denseErr, sparseErr error

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		pathCtx, cancel := context.WithTimeout(ctx, s.opts.PathTimeout)
		defer cancel()
		dense, denseErr = s.denseSearch(pathCtx, text, pool)
	}()

	go func() {
		defer wg.Done()
		pathCtx, cancel := context.WithTimeout(ctx, s.opts.PathTimeout)
		defer cancel()
		sparse, sparseErr = s.search.Search(pathCtx, text, pool)
	}()

	wg.Wait()

	if denseErr != nil && sparseErr != nil {
		logger.Warn("Both retrieval paths failed: dense=%v, sparse=%v", denseErr, sparseErr)
		return domain.CandidateSet{}, fmt.Errorf("retrieve: dense=%w, sparse=%w", denseErr, sparseErr)
	}

	partial := false
	if denseErr != nil {
		logger.Warn("Dense path failed, continuing sparse only: %v", denseErr)
		dense = nil
		partial = true
	}
	if sparseErr != nil {
		logger.Warn("Sparse path failed, continuing dense only: %v", sparseErr)
		sparse = nil
		partial = true
	}

	fused := s.fuse(dense, sparse)
	if s.opts.GoldenBoost > 0 {
		fused = s.boostGolden(ctx, fused)
	}
	if len(fused) > pool {
		fused = fused[:pool]
	}

	logger.Debug("Fused %d dense + %d sparse into %d candidates (partial=%t)",
		len(dense), len(sparse), len(fused), partial)

	return domain.CandidateSet{Candidates: fused, Partial: partial}, nil
}

// Answer runs Retrieve, re-ranks the pool, hydrates the winners from
// the chunk store, and caps to the query's result bound.
func (s *RetrievalService) Answer(ctx context.Context, query domain.Query) (domain.RankedSet, error) {
	set, err := s.Retrieve(ctx, query)
	if err != nil {
		return domain.RankedSet{}, err
	}

	hydrated, err := s.hydrate(ctx, set.Candidates)
	if err != nil {
		return domain.RankedSet{}, err
	}

	ranked, rerankErr := s.rerank(ctx, query.Text, hydrated)
	reranked := rerankErr == nil
	if errors.Is(rerankErr, domain.ErrRerankUnavailable) {
		// Degrade to fusion order rather than failing the query.
		logger.Warn("Keeping fusion order: %v", rerankErr)
		ranked = hydrated
	}

	n := query.ResultCount()
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	logger.Info("Answer: %d results (reranked=%t, partial=%t)", len(ranked), reranked, set.Partial)

	return domain.RankedSet{
		Results:  ranked,
		Partial:  set.Partial,
		Reranked: reranked,
	}, nil
}

// denseSearch embeds the query and searches the vector index.
func (s *RetrievalService) denseSearch(ctx context.Context, text string, k int) ([]domain.Candidate, error) {
	if s.vector == nil || s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	candidates, err := s.vector.Search(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("dense search: %w", err)
	}
	return candidates, nil
}

// fuse merges two ranked lists by reciprocal-rank fusion. Each
// candidate contributes 1/(c+rank) per list it appears in, rank
// counted from 1. Ties break by chunk ID ascending so fusion output
// is deterministic regardless of input order.
func (s *RetrievalService) fuse(a, b []domain.Candidate) []domain.Candidate {
	c := float64(s.opts.RRFConstant)
	scores := make(map[string]float64)

	for rank, cand := range a {
		scores[cand.ChunkID] += 1.0 / (c + float64(rank+1))
	}
	for rank, cand := range b {
		scores[cand.ChunkID] += 1.0 / (c + float64(rank+1))
	}

	fused := make([]domain.Candidate, 0, len(scores))
	for id, score := range scores {
		fused = append(fused, domain.Candidate{ChunkID: id, Score: score})
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		return fused[i].ChunkID < fused[j].ChunkID
	})

	return fused
}

// boostGolden adds the configured bonus to golden chunks and re-sorts.
func (s *RetrievalService) boostGolden(ctx context.Context, candidates []domain.Candidate) []domain.Candidate {
	for i, cand := range candidates {
		chunk, err := s.store.GetChunk(ctx, cand.ChunkID)
		if err != nil {
			continue
		}
		if chunk.Provenance == domain.ProvenanceGolden {
			candidates[i].Score += s.opts.GoldenBoost
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].ChunkID < candidates[j].ChunkID
	})
	return candidates
}

// hydrate resolves candidates to full chunks, preserving order.
// Chunks deleted since indexing are skipped.
func (s *RetrievalService) hydrate(ctx context.Context, candidates []domain.Candidate) ([]domain.RankedResult, error) {
	results := make([]domain.RankedResult, 0, len(candidates))
	for _, cand := range candidates {
		chunk, err := s.store.GetChunk(ctx, cand.ChunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("hydrating chunk %s: %w", cand.ChunkID, err)
		}
		results = append(results, domain.RankedResult{Chunk: *chunk, Score: cand.Score})
	}
	return results, nil
}

// rerank scores (query, chunk) pairs with the cross-encoder and
// reorders best first. A missing or failing backend is reported as
// domain.ErrRerankUnavailable for the caller to degrade on. Rerank
// ties break by fusion rank, which the input order already encodes.
func (s *RetrievalService) rerank(ctx context.Context, query string, results []domain.RankedResult) ([]domain.RankedResult, error) {
	if s.reranker == nil {
		return nil, domain.ErrRerankUnavailable
	}
	if len(results) == 0 {
		return results, nil
	}

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Chunk.Text
	}

	scores, err := s.reranker.Score(ctx, query, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRerankUnavailable, err)
	}
	if len(scores) != len(results) {
		return nil, fmt.Errorf("%w: %d scores for %d candidates",
			domain.ErrRerankUnavailable, len(scores), len(results))
	}

	reranked := make([]domain.RankedResult, len(results))
	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})
	for i, idx := range order {
		reranked[i] = domain.RankedResult{Chunk: results[idx].Chunk, Score: scores[idx]}
	}

	return reranked, nil
}
