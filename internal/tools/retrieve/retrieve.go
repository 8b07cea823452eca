// Package retrieve exposes the hybrid retrieval pipeline as a tool the
// reasoning loop can call, letting the model decide mid-generation
// what evidence it still needs.
package retrieve

import (
	"context"
	"fmt"
	"strings"

	"github.com/prism-labs/memogen/internal/core/domain"
	"github.com/prism-labs/memogen/internal/core/ports/driven"
	"github.com/prism-labs/memogen/internal/core/ports/driving"
)

// Ensure Tool implements the interface.
var _ driven.Tool = (*Tool)(nil)

// snippetLimit truncates each retrieved chunk before it enters a
// prompt observation.
const snippetLimit = 300

// Tool retrieves document chunks for the reasoning loop.
type Tool struct {
	retrieval driving.RetrievalService
}

// New creates a retrieve tool over the given retrieval service.
func New(retrieval driving.RetrievalService) *Tool {
	return &Tool{retrieval: retrieval}
}

// Name implements driven.Tool.
func (t *Tool) Name() string {
	return "retrieve"
}

// Description implements driven.Tool.
func (t *Tool) Description() string {
	return "retrieve(query, k) - Search the indexed documents for relevant passages"
}

// Invoke runs one retrieval. k is optional and defaults to the
// pipeline's result bound.
func (t *Tool) Invoke(ctx context.Context, args map[string]any) (string, error) {
	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("retrieve: missing query argument")
	}

	// JSON numbers arrive as float64.
	k := 0
	if v, ok := args["k"].(float64); ok {
		k = int(v)
	}

	set, err := t.retrieval.Answer(ctx, domain.Query{Text: query, NResults: k})
	if err != nil {
		return "", fmt.Errorf("retrieve: %w", err)
	}
	if len(set.Results) == 0 {
		return "No results found.", nil
	}

	var sb strings.Builder
	for i, r := range set.Results {
		fmt.Fprintf(&sb, "[%d] %s\n", i+1, snippet(r.Chunk.Text))
	}
	if set.Partial {
		sb.WriteString("(one retrieval path was unavailable; results may be incomplete)\n")
	}
	return sb.String(), nil
}

func snippet(s string) string {
	if len(s) <= snippetLimit {
		return s
	}
	return s[:snippetLimit] + "..."
}
