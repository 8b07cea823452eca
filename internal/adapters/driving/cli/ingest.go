package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/prism-labs/memogen/internal/normalisers/markdown"
)

var ingestTitle string

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a document into the index",
	Long: `Reads a Markdown file (typically the output of a PDF extraction
step), normalises it, splits it into overlapping chunks, and indexes
the chunks for keyword (BM25) and semantic retrieval.

Re-ingesting the same file supersedes the previous version; earlier
chunks remain retrievable for audit.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the retrieval indexes from the chunk store",
	Long: `Rebuilds the keyword and vector indexes from stored chunks.
Embeddings persisted at ingest time are reused; nothing is re-embedded.`,
	Args: cobra.NoArgs,
	RunE: runReindex,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "override the document title")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(reindexCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]

	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	doc, err := markdown.New().Normalise(raw, abs)
	if err != nil {
		return fmt.Errorf("normalising %s: %w", path, err)
	}
	if ingestTitle != "" {
		doc.Title = ingestTitle
	}

	ids, err := ingestService.Ingest(context.Background(), doc)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Ingested %s\n", path)
	cmd.Printf("  Document ID: %s\n", doc.ID)
	if doc.Supersedes != "" {
		cmd.Printf("  Supersedes:  %s\n", doc.Supersedes)
	}
	cmd.Printf("  Chunks:      %d\n", len(ids))
	return nil
}

func runReindex(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	if err := ingestService.Reindex(context.Background()); err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	cmd.Println("Indexes rebuilt.")
	return nil
}
