package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List ingested documents",
	Args:  cobra.NoArgs,
	RunE:  runDocuments,
}

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "List the memo section catalogue",
	Long: `Lists the sections every generated memo contains, in order.
The catalogue can be overridden with a sections.toml file in the
memogen home directory; changes are picked up without a restart while
the MCP server is running.`,
	Args: cobra.NoArgs,
	RunE: runSections,
}

func init() {
	rootCmd.AddCommand(documentsCmd)
	rootCmd.AddCommand(sectionsCmd)
}

func runDocuments(cmd *cobra.Command, _ []string) error {
	if chunkStore == nil {
		return errors.New("store not configured")
	}

	docs, err := chunkStore.ListDocuments(context.Background())
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents ingested.")
		return nil
	}

	for _, doc := range docs {
		title := doc.Title
		if title == "" {
			title = "(untitled)"
		}
		cmd.Printf("  %s  %s\n", doc.ID, title)
		if doc.SourceURI != "" {
			cmd.Printf("      Source: %s\n", doc.SourceURI)
		}
		if doc.Supersedes != "" {
			cmd.Printf("      Supersedes: %s\n", doc.Supersedes)
		}
	}
	return nil
}

func runSections(cmd *cobra.Command, _ []string) error {
	if catalogue == nil {
		return errors.New("section catalogue not configured")
	}

	for i, def := range catalogue.Sections() {
		cmd.Printf("  [%d] %s (%d sub-queries)\n", i+1, def.Name, len(def.SubQueries))
	}
	return nil
}
