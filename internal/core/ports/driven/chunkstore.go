package driven

import (
	"context"

	"github.com/prism-labs/memogen/internal/core/domain"
)

// ChunkStore is the source of truth for what can be retrieved.
// It exclusively owns chunk lifetime; both indexes hold derived,
// rebuildable projections keyed by chunk ID.
//
// Implementations must support concurrent readers during writes:
// inserting a chunk must not block or corrupt in-flight reads.
type ChunkStore interface {
	// SaveDocument stores a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all stored documents, ordered oldest
	// first by extraction time.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// SaveChunks stores chunks. Existing IDs are replaced; chunk text
	// is immutable by convention, so replacement only ever updates
	// derived fields such as the embedding.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetChunk retrieves a chunk by ID.
	// Returns domain.ErrNotFound if absent.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// ListChunks returns all chunks for a document in position order.
	ListChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// AllChunks returns every stored chunk. Used by the indexes to
	// rebuild their projections on reopen.
	AllChunks(ctx context.Context) ([]domain.Chunk, error)

	// Close releases resources.
	Close() error
}

// FeedbackStore persists the append-only correction audit trail.
type FeedbackStore interface {
	// SaveFeedback appends a feedback record. Records are never
	// deleted or rewritten.
	SaveFeedback(ctx context.Context, rec *domain.FeedbackRecord) error

	// GetFeedback retrieves a record by ID.
	GetFeedback(ctx context.Context, id string) (*domain.FeedbackRecord, error)

	// ListFeedback returns records, newest first, optionally filtered
	// by status. Empty status means all.
	ListFeedback(ctx context.Context, status domain.ReviewStatus) ([]domain.FeedbackRecord, error)

	// FeedbackStats returns aggregate review counts.
	FeedbackStats(ctx context.Context) (domain.FeedbackStats, error)
}

// ChunkListener receives change notifications from the ingest path so
// derived indexes can stay current without full rebuilds.
type ChunkListener interface {
	// ChunkAdded is called after a chunk is persisted. Implementations
	// index incrementally; errors are the listener's to report.
	ChunkAdded(ctx context.Context, chunk domain.Chunk) error
}
