package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prism-labs/memogen/internal/chunker"
	"github.com/prism-labs/memogen/internal/core/domain"
	"github.com/prism-labs/memogen/internal/core/ports/driven"
	"github.com/prism-labs/memogen/internal/core/ports/driving"
	"github.com/prism-labs/memogen/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService turns normalised documents into retrievable chunks:
// validate, split, embed, persist, index. The chunk store is written
// before either index so that a crash between the two steps loses only
// rebuildable projections.
type IngestService struct {
	store    driven.ChunkStore
	splitter *chunker.Chunker
	embedder driven.EmbeddingService
	indexer  *Indexer
}

// NewIngestService creates an ingest service. embedder may be nil;
// chunks are then indexed for sparse retrieval only.
func NewIngestService(
	store driven.ChunkStore,
	splitter *chunker.Chunker,
	embedder driven.EmbeddingService,
	indexer *Indexer,
) *IngestService {
	return &IngestService{
		store:    store,
		splitter: splitter,
		embedder: embedder,
		indexer:  indexer,
	}
}

// Ingest validates, chunks, persists, and indexes a document. It
// returns the IDs of the created chunks.
func (s *IngestService) Ingest(ctx context.Context, doc *domain.Document) ([]string, error) {
	logger.Section("Document Ingestion")

	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("validating document: %w", err)
	}
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}

	// Re-ingesting a known source supersedes the previous document
	// rather than mutating it.
	if prev, err := s.findBySource(ctx, doc.SourceURI); err == nil && prev != "" && prev != doc.ID {
		doc.Supersedes = prev
		logger.Info("Document %s supersedes %s", doc.ID, prev)
	}

	chunks := s.splitter.Split(doc)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("splitting document %s: %w", doc.ID, domain.ErrInvalidInput)
	}
	logger.Debug("Split into %d chunks", len(chunks))

	if s.embedder != nil {
		if err := s.embed(ctx, chunks); err != nil {
			// Sparse retrieval still works without embeddings, and a
			// later reindex can fill them in.
			logger.Warn("Embedding failed, indexing sparse only: %v", err)
		}
	}

	if err := s.store.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving document: %w", err)
	}
	if err := s.store.SaveChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("saving chunks: %w", err)
	}

	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		ids[i] = chunk.ID
		if err := s.indexer.ChunkAdded(ctx, chunk); err != nil {
			return nil, fmt.Errorf("indexing chunk: %w", err)
		}
	}

	logger.Info("Ingested document %s: %d chunks", doc.ID, len(ids))
	return ids, nil
}

// Reindex rebuilds both index projections from the chunk store.
func (s *IngestService) Reindex(ctx context.Context) error {
	logger.Section("Reindex")
	return s.indexer.Rebuild(ctx, s.store)
}

// embed fills in embeddings for all chunks in one batch call.
func (s *IngestService) embed(ctx context.Context, chunks []domain.Chunk) error {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding batch: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding batch returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}
	return nil
}

// findBySource returns the ID of the current head of the supersession
// chain for the given source URI, or empty when none exists.
func (s *IngestService) findBySource(ctx context.Context, sourceURI string) (string, error) {
	if sourceURI == "" {
		return "", nil
	}

	docs, err := s.store.ListDocuments(ctx)
	if err != nil {
		return "", err
	}

	// The head is the one same-source document no other document
	// supersedes. This holds in any listing order.
	superseded := make(map[string]struct{})
	var matches []string
	for _, doc := range docs {
		if doc.SourceURI != sourceURI {
			continue
		}
		matches = append(matches, doc.ID)
		if doc.Supersedes != "" {
			superseded[doc.Supersedes] = struct{}{}
		}
	}

	for _, id := range matches {
		if _, ok := superseded[id]; !ok {
			return id, nil
		}
	}
	return "", nil
}
