package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/prism-labs/memogen/internal/core/domain"
	"github.com/prism-labs/memogen/internal/core/ports/driven"
	"github.com/prism-labs/memogen/internal/logger"
)

// Ensure Indexer implements the listener interface.
var _ driven.ChunkListener = (*Indexer)(nil)

// Indexer fans a persisted chunk out to both index projections. The
// dense and sparse sides of one chunk run in parallel; neither side
// ever sees a chunk that is not already durable in the store.
type Indexer struct {
	search driven.SearchEngine
	vector driven.VectorIndex
}

// NewIndexer creates the index fan-out. vector may be nil when no
// embedding backend is configured; dense retrieval is simply absent.
func NewIndexer(search driven.SearchEngine, vector driven.VectorIndex) *Indexer {
	return &Indexer{
		search: search,
		vector: vector,
	}
}

// ChunkAdded indexes one chunk into both projections. Indexing is
// idempotent per chunk ID, so redelivery is harmless.
func (ix *Indexer) ChunkAdded(ctx context.Context, chunk domain.Chunk) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := ix.search.Index(ctx, chunk); err != nil {
			return fmt.Errorf("sparse index chunk %s: %w", chunk.ID, err)
		}
		return nil
	})

	if ix.vector != nil && len(chunk.Embedding) > 0 {
		g.Go(func() error {
			if err := ix.vector.Add(ctx, chunk.ID, chunk.Embedding); err != nil {
				return fmt.Errorf("dense index chunk %s: %w", chunk.ID, err)
			}
			return nil
		})
	}

	return g.Wait()
}

// Rebuild repopulates both projections from the chunk store. Vectors
// reload from their stored embedding blobs; nothing is re-embedded.
// Chunks of superseded documents stay in the store for audit but are
// not reindexed, so stale extractions cannot compete with the current
// version of their source.
func (ix *Indexer) Rebuild(ctx context.Context, store driven.ChunkStore) error {
	chunks, err := store.AllChunks(ctx)
	if err != nil {
		return fmt.Errorf("loading chunks for rebuild: %w", err)
	}

	docs, err := store.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("loading documents for rebuild: %w", err)
	}
	superseded := make(map[string]struct{})
	for _, doc := range docs {
		if doc.Supersedes != "" {
			superseded[doc.Supersedes] = struct{}{}
		}
	}

	logger.Debug("Rebuilding indexes from %d chunks", len(chunks))

	indexed := 0
	for _, chunk := range chunks {
		if _, stale := superseded[chunk.DocumentID]; stale {
			continue
		}
		if err := ix.ChunkAdded(ctx, chunk); err != nil {
			return err
		}
		indexed++
	}

	logger.Info("Index rebuild complete: %d chunks indexed, %d stale skipped",
		indexed, len(chunks)-indexed)
	return nil
}
