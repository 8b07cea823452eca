package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prism-labs/memogen/internal/core/domain"
)

func TestFeedbackRejectCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{
		"feedback", "reject", "memo-1", "Financial Analysis",
		"--original", "Total assets are $3.9M.",
		"--corrected", "Total assets are $4.2M.",
	})
	defer func() {
		rootCmd.SetArgs(nil)
		feedbackOriginal = ""
		feedbackCorrected = ""
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "golden-1")

	mock := feedbackService.(*mockFeedbackService)
	require.NotNil(t, mock.lastRec)
	assert.Equal(t, "memo-1", mock.lastRec.MemoID)
	assert.Equal(t, "Financial Analysis", mock.lastRec.Section)
	assert.Equal(t, "Total assets are $4.2M.", mock.lastRec.Corrected)
}

func TestFeedbackRejectCmd_RequiresCorrectedFlag(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	// Flag state persists across executions.
	feedbackRejectCmd.Flags().Lookup("corrected").Changed = false

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"feedback", "reject", "memo-1", "Financial Analysis"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "corrected")
}

func TestFeedbackRejectCmd_UnknownSection(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	feedbackService = &mockFeedbackService{err: domain.ErrUnknownSection}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{
		"feedback", "reject", "memo-1", "Nonexistent",
		"--corrected", "text",
	})
	defer func() {
		rootCmd.SetArgs(nil)
		feedbackCorrected = ""
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown section")
}

func TestFeedbackApproveCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"feedback", "approve", "memo-1", "Risk Assessment"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Approved")
	assert.True(t, feedbackService.(*mockFeedbackService).approved)
}

func TestFeedbackPendingCmd_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"feedback", "pending"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No records pending review")
}

func TestFeedbackPendingCmd_ListsRecords(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	feedbackService = &mockFeedbackService{pending: []domain.FeedbackRecord{
		{
			ID:        "rec-1",
			MemoID:    "memo-1",
			Section:   "Financial Analysis",
			CreatedAt: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		},
	}}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"feedback", "pending"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "rec-1")
	assert.Contains(t, buf.String(), "Financial Analysis")
	assert.Contains(t, buf.String(), "2025-06-01")
}

func TestFeedbackStatsCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	feedbackService = &mockFeedbackService{stats: domain.FeedbackStats{
		Total:    4,
		Pending:  1,
		Approved: 2,
		Rejected: 1,
	}}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"feedback", "stats"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Approved: 2")
	assert.Contains(t, out, "Rejected: 1")
	assert.Contains(t, out, "Rejection rate: 33%")
}

func TestFeedbackCmd_ServiceNotConfigured(t *testing.T) {
	oldService := feedbackService
	feedbackService = nil
	defer func() {
		feedbackService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"feedback", "stats"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "feedback service not configured")
}
