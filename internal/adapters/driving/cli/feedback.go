package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prism-labs/memogen/internal/core/domain"
)

var (
	feedbackOriginal  string
	feedbackCorrected string
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Review generated memo sections",
	Long: `Commands for the human review loop. Rejecting a section with a
correction mints a golden chunk: the corrected text joins the index and
competes in future retrieval, so the same mistake is not repeated.`,
}

var feedbackRejectCmd = &cobra.Command{
	Use:   "reject [memo-id] [section]",
	Short: "Reject a section and submit the corrected text",
	Args:  cobra.ExactArgs(2),
	RunE:  runFeedbackReject,
}

var feedbackApproveCmd = &cobra.Command{
	Use:   "approve [memo-id] [section]",
	Short: "Approve a generated section as-is",
	Args:  cobra.ExactArgs(2),
	RunE:  runFeedbackApprove,
}

var feedbackPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List records awaiting review",
	Args:  cobra.NoArgs,
	RunE:  runFeedbackPending,
}

var feedbackStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate review outcomes",
	Args:  cobra.NoArgs,
	RunE:  runFeedbackStats,
}

func init() {
	feedbackRejectCmd.Flags().StringVar(&feedbackOriginal, "original", "", "the generated text being corrected")
	feedbackRejectCmd.Flags().StringVar(&feedbackCorrected, "corrected", "", "the corrected replacement text (required)")
	_ = feedbackRejectCmd.MarkFlagRequired("corrected")

	feedbackApproveCmd.Flags().StringVar(&feedbackOriginal, "original", "", "the generated text being approved")

	feedbackCmd.AddCommand(feedbackRejectCmd)
	feedbackCmd.AddCommand(feedbackApproveCmd)
	feedbackCmd.AddCommand(feedbackPendingCmd)
	feedbackCmd.AddCommand(feedbackStatsCmd)
	rootCmd.AddCommand(feedbackCmd)
}

func runFeedbackReject(cmd *cobra.Command, args []string) error {
	if feedbackService == nil {
		return errors.New("feedback service not configured")
	}

	goldenID, err := feedbackService.SubmitCorrection(context.Background(), &domain.FeedbackRecord{
		MemoID:    args[0],
		Section:   args[1],
		Original:  feedbackOriginal,
		Corrected: feedbackCorrected,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnknownSection) {
			return fmt.Errorf("unknown section %q; see the section catalogue", args[1])
		}
		return fmt.Errorf("submitting correction: %w", err)
	}

	cmd.Printf("Correction recorded. Golden chunk: %s\n", goldenID)
	return nil
}

func runFeedbackApprove(cmd *cobra.Command, args []string) error {
	if feedbackService == nil {
		return errors.New("feedback service not configured")
	}

	if err := feedbackService.Approve(context.Background(), args[0], args[1], feedbackOriginal); err != nil {
		return fmt.Errorf("recording approval: %w", err)
	}

	cmd.Printf("Approved %s / %s\n", args[0], args[1])
	return nil
}

func runFeedbackPending(cmd *cobra.Command, _ []string) error {
	if feedbackService == nil {
		return errors.New("feedback service not configured")
	}

	records, err := feedbackService.Pending(context.Background())
	if err != nil {
		return fmt.Errorf("listing pending records: %w", err)
	}

	if len(records) == 0 {
		cmd.Println("No records pending review.")
		return nil
	}

	for _, rec := range records {
		cmd.Printf("  %s  memo=%s  section=%q  %s\n",
			rec.ID, rec.MemoID, rec.Section, rec.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runFeedbackStats(cmd *cobra.Command, _ []string) error {
	if feedbackService == nil {
		return errors.New("feedback service not configured")
	}

	stats, err := feedbackService.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("loading stats: %w", err)
	}

	cmd.Printf("Approved: %d\n", stats.Approved)
	cmd.Printf("Rejected: %d\n", stats.Rejected)
	cmd.Printf("Pending:  %d\n", stats.Pending)
	cmd.Printf("Rejection rate: %.0f%%\n", stats.RejectionRate()*100)
	return nil
}
