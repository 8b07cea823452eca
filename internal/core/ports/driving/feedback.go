package driving

import (
	"context"

	"github.com/prism-labs/memogen/internal/core/domain"
)

// FeedbackService closes the human-review loop: corrections become
// golden chunks that future retrieval can surface.
type FeedbackService interface {
	// SubmitCorrection validates the record, appends it to the audit
	// trail, mints a golden chunk, and indexes it incrementally.
	// Returns the new golden chunk's ID.
	SubmitCorrection(ctx context.Context, rec *domain.FeedbackRecord) (string, error)

	// Approve records that a reviewer confirmed a generated section.
	Approve(ctx context.Context, memoID, section, original string) error

	// Pending lists records awaiting review, newest first.
	Pending(ctx context.Context) ([]domain.FeedbackRecord, error)

	// Stats returns aggregate review outcomes.
	Stats(ctx context.Context) (domain.FeedbackStats, error)
}
