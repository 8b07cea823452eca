package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prism-labs/memogen/internal/core/domain"
	"github.com/prism-labs/memogen/internal/core/ports/driven"
	"github.com/prism-labs/memogen/internal/core/ports/driving"
	"github.com/prism-labs/memogen/internal/logger"
	"github.com/prism-labs/memogen/internal/sections"
)

// Ensure FeedbackService implements the interface.
var _ driving.FeedbackService = (*FeedbackService)(nil)

// FeedbackService closes the human-review loop. A rejected section's
// correction is persisted to the append-only audit trail and minted
// into a golden chunk, which both indexes pick up incrementally so the
// very next retrieval can surface it.
type FeedbackService struct {
	store     driven.ChunkStore
	feedback  driven.FeedbackStore
	embedder  driven.EmbeddingService
	indexer   *Indexer
	catalogue *sections.Catalogue
}

// NewFeedbackService creates a feedback service. embedder may be nil;
// golden chunks are then retrievable through the sparse path only.
func NewFeedbackService(
	store driven.ChunkStore,
	feedback driven.FeedbackStore,
	embedder driven.EmbeddingService,
	indexer *Indexer,
	catalogue *sections.Catalogue,
) *FeedbackService {
	return &FeedbackService{
		store:     store,
		feedback:  feedback,
		embedder:  embedder,
		indexer:   indexer,
		catalogue: catalogue,
	}
}

// SubmitCorrection records a rejection and mints its golden chunk.
func (s *FeedbackService) SubmitCorrection(ctx context.Context, rec *domain.FeedbackRecord) (string, error) {
	logger.Section("Feedback Correction")

	if err := rec.Validate(); err != nil {
		return "", fmt.Errorf("validating correction: %w", err)
	}
	if _, ok := s.catalogue.Lookup(rec.Section); !ok {
		return "", fmt.Errorf("correction for %q: %w", rec.Section, domain.ErrUnknownSection)
	}

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.Status = domain.ReviewRejected

	golden, err := s.mintGolden(ctx, rec)
	if err != nil {
		return "", err
	}
	rec.GoldenChunkID = golden.ID

	if err := s.feedback.SaveFeedback(ctx, rec); err != nil {
		return "", fmt.Errorf("saving feedback record: %w", err)
	}

	if err := s.indexer.ChunkAdded(ctx, *golden); err != nil {
		return "", fmt.Errorf("indexing golden chunk: %w", err)
	}

	logger.Info("Correction %s recorded, golden chunk %s indexed", rec.ID, golden.ID)
	return golden.ID, nil
}

// Approve records that a reviewer confirmed a generated section.
func (s *FeedbackService) Approve(ctx context.Context, memoID, section, original string) error {
	if _, ok := s.catalogue.Lookup(section); !ok {
		return fmt.Errorf("approval for %q: %w", section, domain.ErrUnknownSection)
	}

	rec := &domain.FeedbackRecord{
		ID:       uuid.New().String(),
		MemoID:   memoID,
		Section:  section,
		Original: original,
		Status:   domain.ReviewApproved,
	}
	if err := s.feedback.SaveFeedback(ctx, rec); err != nil {
		return fmt.Errorf("saving approval: %w", err)
	}

	logger.Info("Approval %s recorded for section %q", rec.ID, section)
	return nil
}

// Pending lists records awaiting review, newest first.
func (s *FeedbackService) Pending(ctx context.Context) ([]domain.FeedbackRecord, error) {
	return s.feedback.ListFeedback(ctx, domain.ReviewPending)
}

// Stats returns aggregate review outcomes.
func (s *FeedbackService) Stats(ctx context.Context) (domain.FeedbackStats, error) {
	return s.feedback.FeedbackStats(ctx)
}

// mintGolden persists the corrected text as a chunk under the synthetic
// feedback document. Golden chunks are never mutations of the chunks
// they correct; the stale extraction stays in place and loses on
// relevance.
func (s *FeedbackService) mintGolden(ctx context.Context, rec *domain.FeedbackRecord) (*domain.Chunk, error) {
	if err := s.ensureFeedbackDocument(ctx); err != nil {
		return nil, err
	}

	existing, err := s.store.ListChunks(ctx, domain.FeedbackDocumentID)
	if err != nil {
		return nil, fmt.Errorf("listing golden chunks: %w", err)
	}

	chunk := domain.Chunk{
		ID:         uuid.New().String(),
		DocumentID: domain.FeedbackDocumentID,
		Position:   len(existing),
		Text:       rec.Corrected,
		Provenance: domain.ProvenanceGolden,
		CreatedAt:  time.Now().UTC(),
	}

	if s.embedder != nil {
		embedding, err := s.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			logger.Warn("Golden chunk embedding failed, sparse only: %v", err)
		} else {
			chunk.Embedding = embedding
		}
	}

	if err := s.store.SaveChunks(ctx, []domain.Chunk{chunk}); err != nil {
		return nil, fmt.Errorf("saving golden chunk: %w", err)
	}
	return &chunk, nil
}

// ensureFeedbackDocument lazily creates the synthetic document that
// owns all golden chunks.
func (s *FeedbackService) ensureFeedbackDocument(ctx context.Context) error {
	_, err := s.store.GetDocument(ctx, domain.FeedbackDocumentID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("checking feedback document: %w", err)
	}

	doc := &domain.Document{
		ID:          domain.FeedbackDocumentID,
		Title:       "Reviewer Corrections",
		Content:     "Container for chunks minted from human corrections.",
		ExtractedAt: time.Now().UTC(),
	}
	if err := s.store.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("creating feedback document: %w", err)
	}
	return nil
}
