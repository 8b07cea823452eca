package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/prism-labs/memogen/internal/core/domain"
)

// QueryInput is the input schema for the query_document tool.
type QueryInput struct {
	Query    string `json:"query" jsonschema:"the question to answer from the indexed documents"`
	NResults int    `json:"n_results,omitempty" jsonschema:"maximum number of passages to return (default 5)"`
}

// QueryOutput is the output schema for the query_document tool.
type QueryOutput struct {
	Results  []QueryResultOutput `json:"results"`
	Count    int                 `json:"count"`
	Partial  bool                `json:"partial"`
	Reranked bool                `json:"reranked"`
}

// QueryResultOutput represents a single retrieved passage.
type QueryResultOutput struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
	Provenance string  `json:"provenance"`
}

// MemoInput is the input schema for the generate_memo tool.
type MemoInput struct {
	DocumentID string `json:"document_id" jsonschema:"the ID of the ingested document to generate a memo for"`
}

// MemoOutput is the output schema for the generate_memo tool.
type MemoOutput struct {
	MemoID        string              `json:"memo_id"`
	DocumentID    string              `json:"document_id"`
	Sections      []MemoSectionOutput `json:"sections"`
	LowConfidence bool                `json:"low_confidence"`
	Steps         int                 `json:"steps"`
}

// MemoSectionOutput represents one generated memo section.
type MemoSectionOutput struct {
	Name        string   `json:"name"`
	Content     string   `json:"content"`
	Evidence    []string `json:"evidence"`
	Confidence  float64  `json:"confidence"`
	NeedsReview bool     `json:"needs_review"`
	Partial     bool     `json:"partial"`
}

// FeedbackInput is the input schema for the submit_feedback tool.
type FeedbackInput struct {
	MemoID    string `json:"memo_id" jsonschema:"the memo being reviewed"`
	Section   string `json:"section" jsonschema:"the memo section the feedback applies to"`
	Original  string `json:"original,omitempty" jsonschema:"the generated text the reviewer saw"`
	Corrected string `json:"corrected" jsonschema:"the corrected replacement text"`
}

// FeedbackOutput is the output schema for the submit_feedback tool.
type FeedbackOutput struct {
	GoldenChunkID string `json:"golden_chunk_id"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_document",
		Description: "Answer a question from the indexed financial documents",
	}, s.handleQuery)

	if s.ports.Memo != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "generate_memo",
			Description: "Generate a structured credit memo for an ingested document",
		}, s.handleMemo)
	}

	if s.ports.Feedback != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "submit_feedback",
			Description: "Submit a correction to a generated memo section",
		}, s.handleFeedback)
	}
}

// handleQuery handles the query_document tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	set, err := s.ports.Retrieval.Answer(ctx, domain.Query{
		Text:     input.Query,
		NResults: input.NResults,
	})
	if err != nil {
		return nil, QueryOutput{}, err
	}

	output := QueryOutput{
		Results:  make([]QueryResultOutput, len(set.Results)),
		Count:    len(set.Results),
		Partial:  set.Partial,
		Reranked: set.Reranked,
	}
	for i, r := range set.Results {
		output.Results[i] = QueryResultOutput{
			ChunkID:    r.Chunk.ID,
			DocumentID: r.Chunk.DocumentID,
			Text:       r.Chunk.Text,
			Score:      r.Score,
			Provenance: string(r.Chunk.Provenance),
		}
	}

	return nil, output, nil
}

// handleMemo handles the generate_memo tool invocation.
func (s *Server) handleMemo(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input MemoInput,
) (*mcp.CallToolResult, MemoOutput, error) {
	memo, err := s.ports.Memo.Generate(ctx, input.DocumentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, MemoOutput{}, errors.New("document not found; ingest it first")
		}
		return nil, MemoOutput{}, err
	}

	output := MemoOutput{
		MemoID:        memo.ID,
		DocumentID:    memo.DocumentID,
		Sections:      make([]MemoSectionOutput, 0, len(memo.SectionOrder)),
		LowConfidence: memo.LowConfidence,
		Steps:         memo.Steps,
	}
	for _, name := range memo.SectionOrder {
		section, ok := memo.Section(name)
		if !ok {
			continue
		}
		output.Sections = append(output.Sections, MemoSectionOutput{
			Name:        section.Name,
			Content:     section.Content,
			Evidence:    section.Evidence,
			Confidence:  section.Confidence,
			NeedsReview: section.NeedsReview,
			Partial:     section.Partial,
		})
	}

	return nil, output, nil
}

// handleFeedback handles the submit_feedback tool invocation.
func (s *Server) handleFeedback(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FeedbackInput,
) (*mcp.CallToolResult, FeedbackOutput, error) {
	goldenID, err := s.ports.Feedback.SubmitCorrection(ctx, &domain.FeedbackRecord{
		MemoID:    input.MemoID,
		Section:   input.Section,
		Original:  input.Original,
		Corrected: input.Corrected,
	})
	if err != nil {
		return nil, FeedbackOutput{}, err
	}

	return nil, FeedbackOutput{GoldenChunkID: goldenID}, nil
}
