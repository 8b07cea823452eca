package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// FeedbackDocumentID is the synthetic document that owns golden chunks.
// It is created lazily the first time a correction is submitted.
const FeedbackDocumentID = "feedback"

// Provenance records how a chunk entered the store.
type Provenance string

const (
	// ProvenanceExtracted marks chunks produced by document ingestion.
	ProvenanceExtracted Provenance = "extracted"

	// ProvenanceGolden marks chunks minted from human corrections.
	// They compete in retrieval like any other chunk unless a boost
	// is explicitly configured.
	ProvenanceGolden Provenance = "golden"
)

// Document represents an ingested source artifact. It is immutable after
// extraction; re-extracting the same file produces a new Document that
// supersedes the old one rather than mutating it.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// SourceURI is the originating file reference (path or URL).
	SourceURI string

	// Title is the human-readable title, usually the first heading.
	Title string

	// Content is the full normalised Markdown text.
	Content string

	// ExtractedAt is when the text was extracted from the source.
	ExtractedAt time.Time

	// Supersedes is the ID of the document this one replaces, if any.
	Supersedes string
}

// Validate checks that the document carries well-formed ingestable text.
// Malformed input is rejected, never repaired.
func (d *Document) Validate() error {
	if strings.TrimSpace(d.Content) == "" {
		return ErrInvalidInput
	}
	if !utf8.ValidString(d.Content) {
		return ErrInvalidInput
	}
	return nil
}

// Chunk is a contiguous span of a document's text sized for retrieval.
// Chunk text is never mutated; corrections create new chunks.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document (or FeedbackDocumentID
	// for golden chunks).
	DocumentID string

	// Position is the ordinal position within the document.
	Position int

	// Text is the chunk content.
	Text string

	// Embedding is the dense vector representation, if computed.
	// It is derived state: losing it only costs a re-embed.
	Embedding []float32

	// Provenance records whether the chunk was extracted or golden.
	Provenance Provenance

	// CreatedAt is when the chunk was persisted.
	CreatedAt time.Time
}
