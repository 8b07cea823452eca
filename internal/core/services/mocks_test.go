package services

import (
	"context"
	"sync"
	"time"

	"github.com/prism-labs/memogen/internal/core/domain"
	"github.com/prism-labs/memogen/internal/core/ports/driven"
)

// --- Mock implementations of the driven ports ---

// mockSearchEngine implements driven.SearchEngine for testing.
type mockSearchEngine struct {
	mu        sync.Mutex
	indexed   []domain.Chunk
	hits      []domain.Candidate
	searchErr error
	indexErr  error
	delay     time.Duration
}

func (m *mockSearchEngine) Index(_ context.Context, chunk domain.Chunk) error {
	if m.indexErr != nil {
		return m.indexErr
	}
	m.mu.Lock()
	m.indexed = append(m.indexed, chunk)
	m.mu.Unlock()
	return nil
}

func (m *mockSearchEngine) Search(ctx context.Context, _ string, k int) ([]domain.Candidate, error) {
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.delay):
		}
	}
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockSearchEngine) Close() error { return nil }

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	mu        sync.Mutex
	added     map[string][]float32
	hits      []domain.Candidate
	searchErr error
	addErr    error
	delay     time.Duration
}

func (m *mockVectorIndex) Add(_ context.Context, chunkID string, embedding []float32) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.mu.Lock()
	if m.added == nil {
		m.added = make(map[string][]float32)
	}
	m.added[chunkID] = embedding
	m.mu.Unlock()
	return nil
}

func (m *mockVectorIndex) Search(ctx context.Context, _ []float32, k int) ([]domain.Candidate, error) {
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.delay):
		}
	}
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockVectorIndex) Dimensions() int { return 3 }
func (m *mockVectorIndex) Close() error    { return nil }

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedding []float32
	embedErr  error
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.embedding
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int   { return len(m.embedding) }
func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }
func (m *mockEmbeddingService) Close() error      { return nil }

// mockLLMService implements driven.LLMService with scripted responses.
// Responses are consumed in order; the last one repeats when the script
// runs out.
type mockLLMService struct {
	mu        sync.Mutex
	responses []string
	prompts   []string
	err       error
}

func (m *mockLLMService) Complete(_ context.Context, prompt string, _ driven.CompleteOptions) (string, error) {
	return m.next(prompt)
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.CompleteOptions) (string, error) {
	var prompt string
	if len(messages) > 0 {
		prompt = messages[len(messages)-1].Content
	}
	return m.next(prompt)
}

func (m *mockLLMService) next(prompt string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if len(m.responses) == 0 {
		return "", nil
	}
	response := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return response, nil
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }
func (m *mockLLMService) Close() error      { return nil }

// mockRerankService implements driven.RerankService for testing.
type mockRerankService struct {
	scores []float64
	err    error
}

func (m *mockRerankService) Score(_ context.Context, _ string, texts []string) ([]float64, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.scores) >= len(texts) {
		return m.scores[:len(texts)], nil
	}
	return m.scores, nil
}

func (m *mockRerankService) ModelName() string { return "mock-rerank" }
func (m *mockRerankService) Close() error      { return nil }

// mockTool implements driven.Tool for testing.
type mockTool struct {
	mu     sync.Mutex
	name   string
	result string
	err    error
	calls  []map[string]any
}

func (m *mockTool) Name() string        { return m.name }
func (m *mockTool) Description() string { return "mock tool" }

func (m *mockTool) Invoke(_ context.Context, args map[string]any) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, args)
	m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	return m.result, nil
}
