package driving

import (
	"context"

	"github.com/prism-labs/memogen/internal/core/domain"
)

// MemoService generates structured credit memos.
type MemoService interface {
	// Generate produces a full memo for a document: one pass of the
	// bounded reasoning loop, then per-section synthesis from
	// section-specific retrieval. An inference failure during
	// finalisation fails the request with domain.ErrGenerationFailed.
	Generate(ctx context.Context, documentID string) (*domain.Memo, error)
}
