package domain

import "time"

// Memo is the structured credit memo produced by the orchestrator.
type Memo struct {
	// ID is the unique identifier for this memo.
	ID string

	// DocumentID is the document the memo was generated for.
	DocumentID string

	// Sections maps section name to generated content, in catalogue
	// order via SectionOrder.
	Sections map[string]MemoSection

	// SectionOrder preserves the catalogue ordering of section names.
	SectionOrder []string

	// LowConfidence is set when the reasoning loop hit its step budget
	// and finalised with best-available evidence.
	LowConfidence bool

	// Steps is the number of reasoning steps the orchestrator took.
	Steps int

	// GeneratedAt is when the memo was finalised.
	GeneratedAt time.Time
}

// MemoSection is one named section of a memo.
type MemoSection struct {
	// Name is the section name, e.g. "Financial Analysis".
	Name string

	// Content is the synthesised text.
	Content string

	// Evidence lists the chunk IDs used to ground the content.
	Evidence []string

	// Confidence is the top retrieval score backing this section.
	Confidence float64

	// NeedsReview is set when the section's evidence was too weak to
	// return as authoritative: top score below threshold, or no
	// corroborating chunks at all.
	NeedsReview bool

	// Partial is set when retrieval for this section ran on one index
	// path only.
	Partial bool
}

// Section returns the named section and whether it exists.
func (m *Memo) Section(name string) (MemoSection, bool) {
	s, ok := m.Sections[name]
	return s, ok
}
