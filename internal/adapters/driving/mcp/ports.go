package mcp

import (
	"github.com/prism-labs/memogen/internal/core/ports/driven"
	"github.com/prism-labs/memogen/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP
// server. This provides a single injection point.
type Ports struct {
	// Retrieval answers queries against the indexed documents.
	Retrieval driving.RetrievalService

	// Memo generates credit memos. Optional; the generate_memo tool is
	// unavailable without it.
	Memo driving.MemoService

	// Feedback accepts review corrections. Optional.
	Feedback driving.FeedbackService

	// Store reads documents for resource listing. Optional.
	Store driven.ChunkStore
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	// Memo, Feedback, and Store are optional.
	return nil
}
