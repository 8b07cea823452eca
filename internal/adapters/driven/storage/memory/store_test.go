package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prism-labs/memogen/internal/core/domain"
)

func TestDocumentRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	doc := &domain.Document{ID: "doc-1", Title: "Annual Report", Content: "Total Assets: $4.2M"}
	require.NoError(t, s.SaveDocument(ctx, doc))

	got, err := s.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, *doc, *got)

	_, err = s.GetDocument(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListDocumentsOrdersByExtractionTime(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	// IDs deliberately in the reverse of extraction order.
	require.NoError(t, s.SaveDocument(ctx, &domain.Document{ID: "zzz", Content: "first", ExtractedAt: base}))
	require.NoError(t, s.SaveDocument(ctx, &domain.Document{ID: "aaa", Content: "second", ExtractedAt: base.Add(time.Hour)}))
	require.NoError(t, s.SaveDocument(ctx, &domain.Document{ID: "mmm", Content: "third", ExtractedAt: base.Add(2 * time.Hour)}))

	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "zzz", docs[0].ID)
	assert.Equal(t, "aaa", docs[1].ID)
	assert.Equal(t, "mmm", docs[2].ID)
}

func TestChunkOrderingAndLookup(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	chunks := []domain.Chunk{
		{ID: "c2", DocumentID: "doc-1", Position: 1, Text: "second"},
		{ID: "c1", DocumentID: "doc-1", Position: 0, Text: "first"},
		{ID: "c3", DocumentID: "doc-2", Position: 0, Text: "other"},
	}
	require.NoError(t, s.SaveChunks(ctx, chunks))

	listed, err := s.ListChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "c1", listed[0].ID)
	assert.Equal(t, "c2", listed[1].ID)

	got, err := s.GetChunk(ctx, "c3")
	require.NoError(t, err)
	assert.Equal(t, "other", got.Text)

	_, err = s.GetChunk(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, err := s.AllChunks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFeedbackAppendOnly(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	first := &domain.FeedbackRecord{
		ID:        "f1",
		Section:   "Financial Analysis",
		Corrected: "Total assets are $4.2M.",
		Status:    domain.ReviewRejected,
		CreatedAt: time.Now().Add(-time.Hour),
	}
	second := &domain.FeedbackRecord{
		ID:        "f2",
		Section:   "Risk Assessment",
		Corrected: "",
		Status:    domain.ReviewPending,
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.SaveFeedback(ctx, first))
	require.NoError(t, s.SaveFeedback(ctx, second))

	all, err := s.ListFeedback(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "f2", all[0].ID, "newest first")

	pending, err := s.ListFeedback(ctx, domain.ReviewPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "f2", pending[0].ID)

	stats, err := s.FeedbackStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.FeedbackStats{Total: 2, Pending: 1, Rejected: 1}, stats)
}

func TestConcurrentReadsDuringWrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.SaveChunks(ctx, []domain.Chunk{{ID: "c0", DocumentID: "doc-1"}}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			_ = s.SaveChunks(ctx, []domain.Chunk{{ID: "c0", DocumentID: "doc-1", Position: i}})
		}
	}()
	for i := 0; i < 200; i++ {
		_, err := s.GetChunk(ctx, "c0")
		assert.NoError(t, err)
	}
	<-done
}
