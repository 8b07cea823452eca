package tei

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreReturnsInputOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rerank", r.URL.Path)

		var req rerankRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "total assets", req.Query)
		require.Len(t, req.Texts, 3)

		// Server answers sorted by score, not input order.
		json.NewEncoder(w).Encode([]rerankResult{
			{Index: 2, Score: 0.9},
			{Index: 0, Score: 0.4},
			{Index: 1, Score: 0.1},
		})
	}))
	defer server.Close()

	svc, err := NewRerankService(Config{BaseURL: server.URL})
	require.NoError(t, err)

	scores, err := svc.Score(context.Background(), "total assets", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.4, 0.1, 0.9}, scores)
}

func TestScoreEmptyInput(t *testing.T) {
	svc, err := NewRerankService(Config{BaseURL: "http://unused"})
	require.NoError(t, err)

	scores, err := svc.Score(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Nil(t, scores)
}

func TestScoreServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc, err := NewRerankService(Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Score(context.Background(), "q", []string{"a"})
	assert.Error(t, err)
}

func TestScoreCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode([]rerankResult{{Index: 0, Score: 1}})
	}))
	defer server.Close()

	svc, err := NewRerankService(Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Score(context.Background(), "q", []string{"a", "b"})
	assert.Error(t, err)
}

func TestNewRerankServiceRequiresBaseURL(t *testing.T) {
	_, err := NewRerankService(Config{})
	assert.Error(t, err)
}
