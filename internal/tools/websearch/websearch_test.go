package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvokeFormatsAnswerAndResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-key", req.APIKey)
		assert.Equal(t, "Malaysia construction 2024", req.Query)
		assert.True(t, req.IncludeAnswer)

		json.NewEncoder(w).Encode(map[string]any{
			"answer": "The construction industry grew 8% in 2024.",
			"results": []map[string]any{
				{"title": "MRT3", "url": "https://example.com", "content": "Major projects include MRT3 and ECRL.", "score": 0.9},
			},
		})
	}))
	defer server.Close()

	tool, err := New(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, "web_search", tool.Name())

	out, err := tool.Invoke(context.Background(), map[string]any{"query": "Malaysia construction 2024"})
	require.NoError(t, err)

	assert.Contains(t, out, "1. Summary: The construction industry grew 8% in 2024.")
	assert.Contains(t, out, "2. Major projects include MRT3 and ECRL.")
}

func TestInvokeNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer server.Close()

	tool, err := New(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	out, err := tool.Invoke(context.Background(), map[string]any{"query": "obscure"})
	require.NoError(t, err)
	assert.Equal(t, "No web results found for: obscure", out)
}

func TestInvokeMissingQuery(t *testing.T) {
	tool, err := New(Config{APIKey: "k"})
	require.NoError(t, err)

	_, err = tool.Invoke(context.Background(), map[string]any{})
	assert.Error(t, err)
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestSnippetTruncatesLongResults(t *testing.T) {
	long := strings.Repeat("x", snippetLimit+100)
	out := snippet(long)
	assert.Len(t, out, snippetLimit+3)
	assert.True(t, strings.HasSuffix(out, "..."))
}
