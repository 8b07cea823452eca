package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prism-labs/memogen/internal/core/domain"
)

var (
	queryResults int
	queryJSON    bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Query the indexed documents",
	Long: `Answers a question from the indexed documents using hybrid
retrieval: keyword (BM25) and semantic paths fused by reciprocal rank,
then re-ranked by a cross-encoder when one is configured.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryResults, "results", "n", 5, "maximum number of results")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	set, err := retrievalService.Answer(context.Background(), domain.Query{
		Text:     args[0],
		NResults: queryResults,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputQueryJSON(cmd, set)
	}

	return outputQueryTable(cmd, set)
}

func outputQueryJSON(cmd *cobra.Command, set domain.RankedSet) error {
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryTable(cmd *cobra.Command, set domain.RankedSet) error {
	if len(set.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range set.Results {
		marker := ""
		if r.Chunk.Provenance == domain.ProvenanceGolden {
			marker = " [golden]"
		}
		cmd.Printf("  [%d] %s (%.4f)%s\n", i+1, r.Chunk.ID, r.Score, marker)
		cmd.Printf("      Document: %s\n", r.Chunk.DocumentID)
		cmd.Printf("      %s\n", snippet(r.Chunk.Text, 200))
		cmd.Println()
	}

	if set.Partial {
		cmd.Println("Note: one retrieval path was unavailable; results may be incomplete.")
	}
	if !set.Reranked {
		cmd.Println("Note: re-ranking unavailable; results are in fusion order.")
	}

	return nil
}

// snippet returns the first line of text, truncated on a rune boundary.
func snippet(text string, limit int) string {
	for i, r := range text {
		if r == '\n' {
			text = text[:i]
			break
		}
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
