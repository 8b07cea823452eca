package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prism-labs/memogen/internal/core/domain"
)

var memoJSON bool

var memoCmd = &cobra.Command{
	Use:   "memo [document-id]",
	Short: "Generate a credit memo for an ingested document",
	Long: `Generates a structured credit memo for a previously ingested
document. A bounded reasoning loop surveys the document, then each
catalogue section is synthesised from section-specific retrieval.

Sections with weak supporting evidence are flagged for review.`,
	Args: cobra.ExactArgs(1),
	RunE: runMemo,
}

func init() {
	memoCmd.Flags().BoolVar(&memoJSON, "json", false, "output the memo as JSON")
	rootCmd.AddCommand(memoCmd)
}

func runMemo(cmd *cobra.Command, args []string) error {
	if memoService == nil {
		return errors.New("memo service not configured")
	}

	memo, err := memoService.Generate(context.Background(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("document %s not found; ingest it first", args[0])
		}
		return fmt.Errorf("memo generation failed: %w", err)
	}

	if memoJSON {
		data, err := json.MarshalIndent(memo, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal memo: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	return outputMemo(cmd, memo)
}

func outputMemo(cmd *cobra.Command, memo *domain.Memo) error {
	cmd.Printf("Credit Memo %s\n", memo.ID)
	cmd.Printf("Document: %s\n", memo.DocumentID)
	if memo.LowConfidence {
		cmd.Println("Warning: reasoning budget exhausted; treat conclusions with caution.")
	}
	cmd.Println()

	for _, name := range memo.SectionOrder {
		section, ok := memo.Section(name)
		if !ok {
			continue
		}

		cmd.Printf("## %s", section.Name)
		if section.NeedsReview {
			cmd.Print("  (needs review)")
		}
		cmd.Println()
		cmd.Println()
		cmd.Println(section.Content)
		if section.Partial {
			cmd.Println()
			cmd.Println("(evidence retrieval was partial for this section)")
		}
		cmd.Println()
	}

	return nil
}
