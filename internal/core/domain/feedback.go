package domain

import (
	"strings"
	"time"
)

// ReviewStatus is the lifecycle state of a logged generation output.
type ReviewStatus string

const (
	// ReviewPending is waiting for a human decision.
	ReviewPending ReviewStatus = "pending"

	// ReviewApproved means the human confirmed the output.
	ReviewApproved ReviewStatus = "approved"

	// ReviewRejected means the human corrected the output. Rejected
	// records are the source of golden chunks.
	ReviewRejected ReviewStatus = "rejected"
)

// FeedbackRecord is a human correction to a generated memo section.
// Records are append-only: they are never deleted or rewritten, forming
// an audit trail of every correction made.
type FeedbackRecord struct {
	// ID is the unique identifier for the record.
	ID string

	// MemoID identifies the memo the correction applies to.
	MemoID string

	// Section is the memo section being corrected.
	Section string

	// Original is the generated text the reviewer saw.
	Original string

	// Corrected is the reviewer's replacement text. It becomes the
	// text of the minted golden chunk.
	Corrected string

	// Status is the review outcome.
	Status ReviewStatus

	// GoldenChunkID is set once a golden chunk has been minted.
	GoldenChunkID string

	// CreatedAt is when the reviewer submitted the record.
	CreatedAt time.Time
}

// Validate checks the record is usable for minting a golden chunk.
func (r *FeedbackRecord) Validate() error {
	if strings.TrimSpace(r.Section) == "" {
		return ErrInvalidInput
	}
	if strings.TrimSpace(r.Corrected) == "" {
		return ErrInvalidInput
	}
	return nil
}

// FeedbackStats summarises review outcomes across all records.
type FeedbackStats struct {
	Total    int
	Pending  int
	Approved int
	Rejected int
}

// RejectionRate returns the fraction of reviewed records that were
// corrected, or zero when nothing has been reviewed yet.
func (s FeedbackStats) RejectionRate() float64 {
	reviewed := s.Approved + s.Rejected
	if reviewed == 0 {
		return 0
	}
	return float64(s.Rejected) / float64(reviewed)
}
