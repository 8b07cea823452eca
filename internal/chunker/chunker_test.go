package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prism-labs/memogen/internal/core/domain"
)

func TestSplitEmptyContent(t *testing.T) {
	c := New()
	assert.Nil(t, c.Split(&domain.Document{ID: "doc-1", Content: ""}))
	assert.Nil(t, c.Split(&domain.Document{ID: "doc-1", Content: "   \n\n  "}))
}

func TestSplitShortDocument(t *testing.T) {
	c := New()
	doc := &domain.Document{ID: "doc-1", Content: "Total Assets: $4.2M"}

	chunks := c.Split(doc)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Total Assets: $4.2M", chunks[0].Text)
	assert.Equal(t, "doc-1", chunks[0].DocumentID)
	assert.Equal(t, 0, chunks[0].Position)
	assert.Equal(t, domain.ProvenanceExtracted, chunks[0].Provenance)
	assert.NotEmpty(t, chunks[0].ID)
}

func TestSplitPrefersParagraphBoundaries(t *testing.T) {
	para1 := strings.Repeat("Revenue grew strongly. ", 20)
	para2 := strings.Repeat("Debt remained stable. ", 20)
	doc := &domain.Document{
		ID:      "doc-1",
		Content: strings.TrimSpace(para1) + "\n\n" + strings.TrimSpace(para2),
	}

	c := New(WithChunkSize(500), WithOverlap(0))
	chunks := c.Split(doc)
	require.Len(t, chunks, 2)
	// Each chunk holds exactly one paragraph; no sentence was cut.
	assert.NotContains(t, chunks[0].Text, "Debt")
	assert.NotContains(t, chunks[1].Text, "Revenue")
	for _, ch := range chunks {
		assert.True(t, strings.HasSuffix(ch.Text, "."))
	}
}

func TestSplitOversizedParagraphFallsBackToSentences(t *testing.T) {
	content := strings.TrimSpace(strings.Repeat("The company operates in construction. ", 40))
	doc := &domain.Document{ID: "doc-1", Content: content}

	c := New(WithChunkSize(300), WithOverlap(0))
	chunks := c.Split(doc)
	require.Greater(t, len(chunks), 1)
	for _, ch := range chunks {
		assert.LessOrEqual(t, len(ch.Text), 300+100) // joins may pad slightly
		// Sentence boundaries respected: no chunk ends mid-word.
		assert.True(t, strings.HasSuffix(ch.Text, "."), "chunk %q", ch.Text)
	}
}

func TestSplitKeepsTablesWhole(t *testing.T) {
	table := "| Year | Revenue |\n| ---- | ------- |\n| 2024 | $12.0M |\n| 2025 | $14.5M |"
	doc := &domain.Document{
		ID:      "doc-1",
		Content: "Financial summary below.\n\n" + table + "\n\nSee notes for details.",
	}

	c := New(WithChunkSize(60), WithOverlap(0))
	chunks := c.Split(doc)

	var tableChunk string
	for _, ch := range chunks {
		if strings.Contains(ch.Text, "| 2024 |") {
			tableChunk = ch.Text
		}
	}
	require.NotEmpty(t, tableChunk, "table rows not found in any chunk")
	// The whole table landed in one chunk despite exceeding the size.
	assert.Contains(t, tableChunk, "| 2025 |")
	assert.Contains(t, tableChunk, "| Year |")
}

func TestSplitOverlapCarriesContext(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&sb, "Fact %02d about the borrower. ", i)
	}
	doc := &domain.Document{ID: "doc-1", Content: strings.TrimSpace(sb.String())}

	c := New(WithChunkSize(200), WithOverlap(60))
	chunks := c.Split(doc)
	require.Greater(t, len(chunks), 1)

	// Each successor chunk opens with a sentence repeated from its
	// predecessor.
	for i := 1; i < len(chunks); i++ {
		end := strings.Index(chunks[i].Text, ".")
		require.Greater(t, end, 0)
		first := strings.TrimSpace(chunks[i].Text[:end+1])
		assert.Contains(t, chunks[i-1].Text, first,
			"chunk %d does not share its opening with chunk %d", i, i-1)
	}
}

func TestNewClampsOverlap(t *testing.T) {
	c := New(WithChunkSize(100), WithOverlap(500))
	assert.Equal(t, 25, c.overlap)
}

func TestSplitPositionsAreOrdinal(t *testing.T) {
	content := strings.TrimSpace(strings.Repeat("Cash flow stayed positive. ", 60))
	c := New(WithChunkSize(250), WithOverlap(0))
	chunks := c.Split(&domain.Document{ID: "doc-1", Content: content})
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Position)
	}
}
