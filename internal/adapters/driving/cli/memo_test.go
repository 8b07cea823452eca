package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prism-labs/memogen/internal/core/domain"
)

func TestMemoCmd_Use(t *testing.T) {
	assert.Equal(t, "memo [document-id]", memoCmd.Use)
}

func TestMemoCmd_ExecutesWithDocumentID(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"memo", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Credit Memo memo-1")
	assert.Contains(t, out, "## Financial Analysis")
	assert.Contains(t, out, "## Risk Assessment")
	assert.Contains(t, out, "(needs review)")

	// Ordered per the catalogue, not the map.
	assert.Less(t,
		bytes.Index(buf.Bytes(), []byte("Financial Analysis")),
		bytes.Index(buf.Bytes(), []byte("Risk Assessment")))
}

func TestMemoCmd_LowConfidenceWarning(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	memo := defaultMemo()
	memo.LowConfidence = true
	memoService = &mockMemoService{memo: memo}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"memo", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "reasoning budget exhausted")
}

func TestMemoCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"memo", "--json", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
		memoJSON = false
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "\"Sections\"")
	assert.Contains(t, buf.String(), "\"SectionOrder\"")
}

func TestMemoCmd_UnknownDocument(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	memoService = &mockMemoService{err: domain.ErrNotFound}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"memo", "missing"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ingest it first")
}

func TestMemoCmd_ServiceNotConfigured(t *testing.T) {
	oldService := memoService
	memoService = nil
	defer func() {
		memoService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"memo", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "memo service not configured")
}
