// Package memory provides an in-memory chunk store used in tests and
// for ephemeral runs. Behaviour mirrors the sqlite adapter.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/prism-labs/memogen/internal/core/domain"
	"github.com/prism-labs/memogen/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.ChunkStore    = (*Store)(nil)
	_ driven.FeedbackStore = (*Store)(nil)
)

// Store is an in-memory implementation of the chunk and feedback stores.
// Reads proceed under a read lock, so searches are never blocked or
// corrupted by concurrent inserts.
type Store struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string]domain.Chunk
	feedback  []domain.FeedbackRecord
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string]domain.Chunk),
	}
}

// SaveDocument stores a document.
func (s *Store) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns all stored documents, oldest first.
func (s *Store) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].ExtractedAt.Equal(docs[j].ExtractedAt) {
			return docs[i].ExtractedAt.Before(docs[j].ExtractedAt)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

// SaveChunks stores chunks, replacing any with the same ID.
func (s *Store) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chunk := range chunks {
		s.chunks[chunk.ID] = chunk
	}
	return nil
}

// GetChunk retrieves a chunk by ID.
func (s *Store) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunk, ok := s.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &chunk, nil
}

// ListChunks returns a document's chunks in position order.
func (s *Store) ListChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var chunks []domain.Chunk
	for _, chunk := range s.chunks {
		if chunk.DocumentID == documentID {
			chunks = append(chunks, chunk)
		}
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Position < chunks[j].Position })
	return chunks, nil
}

// AllChunks returns every stored chunk.
func (s *Store) AllChunks(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks := make([]domain.Chunk, 0, len(s.chunks))
	for _, chunk := range s.chunks {
		chunks = append(chunks, chunk)
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].ID < chunks[j].ID })
	return chunks, nil
}

// SaveFeedback appends a feedback record or updates one in place when
// the ID already exists (status transitions only; the trail itself is
// append-only).
func (s *Store) SaveFeedback(_ context.Context, rec *domain.FeedbackRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.feedback {
		if s.feedback[i].ID == rec.ID {
			s.feedback[i] = *rec
			return nil
		}
	}
	s.feedback = append(s.feedback, *rec)
	return nil
}

// GetFeedback retrieves a record by ID.
func (s *Store) GetFeedback(_ context.Context, id string) (*domain.FeedbackRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.feedback {
		if s.feedback[i].ID == id {
			rec := s.feedback[i]
			return &rec, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListFeedback returns records newest first, optionally filtered by status.
func (s *Store) ListFeedback(_ context.Context, status domain.ReviewStatus) ([]domain.FeedbackRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []domain.FeedbackRecord
	for i := len(s.feedback) - 1; i >= 0; i-- {
		if status == "" || s.feedback[i].Status == status {
			records = append(records, s.feedback[i])
		}
	}
	return records, nil
}

// FeedbackStats returns aggregate review counts.
func (s *Store) FeedbackStats(_ context.Context) (domain.FeedbackStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := domain.FeedbackStats{Total: len(s.feedback)}
	for i := range s.feedback {
		switch s.feedback[i].Status {
		case domain.ReviewPending:
			stats.Pending++
		case domain.ReviewApproved:
			stats.Approved++
		case domain.ReviewRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}
