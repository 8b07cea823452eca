package driving

import (
	"context"

	"github.com/prism-labs/memogen/internal/core/domain"
)

// IngestService accepts normalised Markdown text and turns it into
// retrievable chunks in both indexes.
type IngestService interface {
	// Ingest validates, chunks, persists, and indexes a document.
	// Returns the IDs of the created chunks. Malformed input fails
	// with domain.ErrInvalidInput.
	Ingest(ctx context.Context, doc *domain.Document) ([]string, error)

	// Reindex rebuilds both index projections from the chunk store.
	// Used after a restart when no index snapshot survived.
	Reindex(ctx context.Context) error
}
