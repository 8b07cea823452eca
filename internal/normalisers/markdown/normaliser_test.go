package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prism-labs/memogen/internal/core/domain"
)

func TestNormaliseValidMarkdown(t *testing.T) {
	raw := []byte("# Gamuda Annual Report\n\nTotal Assets: $4.2M\n\n| Year | Revenue |\n| ---- | ------- |\n")

	n := New()
	doc, err := n.Normalise(raw, "/files/Gamuda.md")
	require.NoError(t, err)

	assert.Equal(t, "Gamuda Annual Report", doc.Title)
	assert.Contains(t, doc.Content, "Total Assets: $4.2M")
	assert.Contains(t, doc.Content, "| Year | Revenue |")
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "/files/Gamuda.md", doc.SourceURI)
	assert.False(t, doc.ExtractedAt.IsZero())
}

func TestNormaliseRejectsMalformedInput(t *testing.T) {
	n := New()

	_, err := n.Normalise([]byte{}, "empty.md")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = n.Normalise([]byte("   \n\n  "), "blank.md")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = n.Normalise([]byte("balance \xff\xfe sheet"), "bad.md")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormaliseCleansExtractorArtifacts(t *testing.T) {
	raw := []byte("# **Overview**\n\n<br>Some <b>bold</b> text.\n\n![chart](img/chart.png)\n\n\n\n\nEnd.")

	n := New()
	doc, err := n.Normalise(raw, "report.md")
	require.NoError(t, err)

	assert.Contains(t, doc.Content, "# Overview")
	assert.Contains(t, doc.Content, "Some bold text.")
	assert.NotContains(t, doc.Content, "<b>")
	assert.NotContains(t, doc.Content, "![chart]")
	assert.NotContains(t, doc.Content, "\n\n\n")
}

func TestExtractTitleFallsBackToFilename(t *testing.T) {
	n := New()
	doc, err := n.Normalise([]byte("No heading here."), "/tmp/annual_report-2025.md")
	require.NoError(t, err)
	assert.Equal(t, "annual report 2025", doc.Title)
}
