package cli

import (
	"context"
	"errors"

	"github.com/prism-labs/memogen/internal/core/domain"
	"github.com/prism-labs/memogen/internal/sections"
)

var errMockService = errors.New("mock service failure")

// mockIngestService records the last ingested document.
type mockIngestService struct {
	lastDoc   *domain.Document
	reindexed bool
	err       error
	chunkIDs  []string
}

func (m *mockIngestService) Ingest(_ context.Context, doc *domain.Document) ([]string, error) {
	m.lastDoc = doc
	if m.err != nil {
		return nil, m.err
	}
	if m.chunkIDs == nil {
		return []string{"chunk-1", "chunk-2"}, nil
	}
	return m.chunkIDs, nil
}

func (m *mockIngestService) Reindex(context.Context) error {
	m.reindexed = true
	return m.err
}

// mockRetrievalService returns a fixed ranked set.
type mockRetrievalService struct {
	set       domain.RankedSet
	lastQuery domain.Query
	err       error
}

func (m *mockRetrievalService) Retrieve(_ context.Context, query domain.Query) (domain.CandidateSet, error) {
	m.lastQuery = query
	return domain.CandidateSet{}, m.err
}

func (m *mockRetrievalService) Answer(_ context.Context, query domain.Query) (domain.RankedSet, error) {
	m.lastQuery = query
	if m.err != nil {
		return domain.RankedSet{}, m.err
	}
	return m.set, nil
}

// mockMemoService returns a fixed memo.
type mockMemoService struct {
	memo *domain.Memo
	err  error
}

func (m *mockMemoService) Generate(context.Context, string) (*domain.Memo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.memo, nil
}

// mockFeedbackService records submissions.
type mockFeedbackService struct {
	lastRec  *domain.FeedbackRecord
	approved bool
	pending  []domain.FeedbackRecord
	stats    domain.FeedbackStats
	err      error
}

func (m *mockFeedbackService) SubmitCorrection(_ context.Context, rec *domain.FeedbackRecord) (string, error) {
	m.lastRec = rec
	if m.err != nil {
		return "", m.err
	}
	return "golden-1", nil
}

func (m *mockFeedbackService) Approve(context.Context, string, string, string) error {
	m.approved = true
	return m.err
}

func (m *mockFeedbackService) Pending(context.Context) ([]domain.FeedbackRecord, error) {
	return m.pending, m.err
}

func (m *mockFeedbackService) Stats(context.Context) (domain.FeedbackStats, error) {
	return m.stats, m.err
}

func defaultRankedSet() domain.RankedSet {
	return domain.RankedSet{
		Results: []domain.RankedResult{
			{
				Chunk: domain.Chunk{
					ID:         "chunk-1",
					DocumentID: "doc-1",
					Text:       "Total Assets were $4.2M at year end.",
					Provenance: domain.ProvenanceExtracted,
				},
				Score: 0.95,
			},
		},
		Reranked: true,
	}
}

func defaultMemo() *domain.Memo {
	return &domain.Memo{
		ID:         "memo-1",
		DocumentID: "doc-1",
		Sections: map[string]domain.MemoSection{
			"Financial Analysis": {
				Name:    "Financial Analysis",
				Content: "Revenue grew 12% year over year.",
			},
			"Risk Assessment": {
				Name:        "Risk Assessment",
				Content:     "Customer concentration is the main exposure.",
				NeedsReview: true,
			},
		},
		SectionOrder: []string{"Financial Analysis", "Risk Assessment"},
		Steps:        2,
	}
}

// setupTestServices swaps all package-level services for mocks and
// returns a cleanup that restores the originals.
func setupTestServices() func() {
	oldIngest := ingestService
	oldRetrieval := retrievalService
	oldMemo := memoService
	oldFeedback := feedbackService
	oldCatalogue := catalogue

	ingestService = &mockIngestService{}
	retrievalService = &mockRetrievalService{set: defaultRankedSet()}
	memoService = &mockMemoService{memo: defaultMemo()}
	feedbackService = &mockFeedbackService{}
	catalogue = sections.Default()

	return func() {
		ingestService = oldIngest
		retrievalService = oldRetrieval
		memoService = oldMemo
		feedbackService = oldFeedback
		catalogue = oldCatalogue
	}
}
