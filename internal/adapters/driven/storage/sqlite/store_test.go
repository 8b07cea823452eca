package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prism-labs/memogen/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDocumentRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	doc := &domain.Document{
		ID:          "doc-1",
		SourceURI:   "/files/Gamuda.md",
		Title:       "Gamuda Annual Report",
		Content:     "Total Assets: $4.2M",
		ExtractedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.SaveDocument(ctx, doc))

	got, err := s.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, doc.Title, got.Title)
	assert.Equal(t, doc.Content, got.Content)

	_, err = s.GetDocument(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChunkRoundTripWithEmbedding(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	chunks := []domain.Chunk{
		{
			ID:         "c1",
			DocumentID: "doc-1",
			Position:   0,
			Text:       "Total Assets: $4.2M",
			Embedding:  []float32{0.25, -0.5, 1.0},
			Provenance: domain.ProvenanceExtracted,
		},
		{
			ID:         "c2",
			DocumentID: "doc-1",
			Position:   1,
			Text:       "Risk factors include currency exposure.",
			Provenance: domain.ProvenanceExtracted,
		},
	}
	require.NoError(t, s.SaveChunks(ctx, chunks))

	got, err := s.GetChunk(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, -0.5, 1.0}, got.Embedding)
	assert.Equal(t, domain.ProvenanceExtracted, got.Provenance)

	listed, err := s.ListChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "c1", listed[0].ID)
	assert.Nil(t, listed[1].Embedding)
}

func TestSaveChunksReplacesDerivedFields(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	chunk := domain.Chunk{ID: "c1", DocumentID: "doc-1", Text: "cash flow", Provenance: domain.ProvenanceExtracted}
	require.NoError(t, s.SaveChunks(ctx, []domain.Chunk{chunk}))

	chunk.Embedding = []float32{1, 2}
	require.NoError(t, s.SaveChunks(ctx, []domain.Chunk{chunk}))

	got, err := s.GetChunk(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, got.Embedding)

	all, err := s.AllChunks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "upsert must not duplicate")
}

func TestReopenPreservesState(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.SaveChunks(ctx, []domain.Chunk{
		{ID: "c1", DocumentID: "doc-1", Text: "golden fact", Embedding: []float32{0.5}, Provenance: domain.ProvenanceGolden},
	}))
	require.NoError(t, s.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetChunk(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "golden fact", got.Text)
	assert.Equal(t, []float32{0.5}, got.Embedding)
	assert.Equal(t, domain.ProvenanceGolden, got.Provenance)
}

func TestFeedbackLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	rec := &domain.FeedbackRecord{
		ID:        "f1",
		MemoID:    "m1",
		Section:   "Financial Analysis",
		Original:  "Total assets are $3.9M.",
		Corrected: "Total assets are $4.2M.",
		Status:    domain.ReviewRejected,
	}
	require.NoError(t, s.SaveFeedback(ctx, rec))

	rec.GoldenChunkID = "g1"
	require.NoError(t, s.SaveFeedback(ctx, rec))

	got, err := s.GetFeedback(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "g1", got.GoldenChunkID)
	// Correction text is immutable once written.
	assert.Equal(t, "Total assets are $4.2M.", got.Corrected)

	stats, err := s.FeedbackStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.FeedbackStats{Total: 1, Rejected: 1}, stats)
}

func TestListFeedbackFiltersByStatus(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Now().UTC()
	require.NoError(t, s.SaveFeedback(ctx, &domain.FeedbackRecord{
		ID: "f1", Section: "Risk Assessment", Status: domain.ReviewPending, CreatedAt: base.Add(-time.Minute),
	}))
	require.NoError(t, s.SaveFeedback(ctx, &domain.FeedbackRecord{
		ID: "f2", Section: "Ownership", Status: domain.ReviewRejected, CreatedAt: base,
	}))

	pending, err := s.ListFeedback(ctx, domain.ReviewPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "f1", pending[0].ID)

	all, err := s.ListFeedback(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "f2", all[0].ID, "newest first")
}
