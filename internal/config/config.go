// Package config loads pipeline configuration from a TOML file under
// the memogen home directory. Every knob has a working default; the
// file only needs to exist for overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full pipeline configuration.
type Config struct {
	// DataDir is where the chunk store lives. Empty means
	// ~/.memogen/data.
	DataDir string `toml:"data_dir"`

	// SectionsFile optionally overrides the built-in section
	// catalogue. Empty means <home>/sections.toml.
	SectionsFile string `toml:"sections_file"`

	Chunking  Chunking  `toml:"chunking"`
	Retrieval Retrieval `toml:"retrieval"`
	Memo      Memo      `toml:"memo"`
	Inference Inference `toml:"inference"`
	Tools     Tools     `toml:"tools"`
}

// Chunking configures the document splitter.
type Chunking struct {
	// Size is the target chunk size in characters.
	Size int `toml:"size"`

	// Overlap is the trailing-context carry between chunks.
	Overlap int `toml:"overlap"`
}

// Retrieval configures fusion and re-ranking.
type Retrieval struct {
	// RRFConstant dampens high-rank dominance in fusion.
	RRFConstant int `toml:"rrf_constant"`

	// PoolSize bounds the fused candidate pool handed to the
	// re-ranker.
	PoolSize int `toml:"pool_size"`

	// Results is the default final result count per query.
	Results int `toml:"results"`

	// PathTimeoutMS bounds each retrieval path. A path missing the
	// deadline yields a partial pool, not an error.
	PathTimeoutMS int `toml:"path_timeout_ms"`

	// GoldenBoost is an additive score bonus for golden chunks during
	// fusion. Zero (the default) means golden chunks compete on
	// relevance alone.
	GoldenBoost float64 `toml:"golden_boost"`
}

// Memo configures the generation orchestrator.
type Memo struct {
	// MaxSteps bounds the reasoning loop per request.
	MaxSteps int `toml:"max_steps"`

	// ConfidenceThreshold is the top retrieval score below which a
	// section is tagged needs-review.
	ConfidenceThreshold float64 `toml:"confidence_threshold"`

	// ToolTimeoutMS bounds each tool invocation.
	ToolTimeoutMS int `toml:"tool_timeout_ms"`
}

// Inference configures the model backends.
type Inference struct {
	// OllamaURL is the Ollama server base URL.
	OllamaURL string `toml:"ollama_url"`

	// EmbedModel is the embedding model name.
	EmbedModel string `toml:"embed_model"`

	// LLMModel is the completion model name.
	LLMModel string `toml:"llm_model"`

	// OpenAIBaseURL switches completion to an OpenAI-compatible chat
	// endpoint when set.
	OpenAIBaseURL string `toml:"openai_base_url"`

	// OpenAIKeyEnv names the environment variable holding the API key.
	OpenAIKeyEnv string `toml:"openai_key_env"`

	// RerankURL is a text-embeddings-inference style /rerank endpoint.
	// Empty disables re-ranking; retrieval degrades to fusion order.
	RerankURL string `toml:"rerank_url"`

	// RequestsPerSecond throttles calls to each inference backend.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Tools configures the orchestrator's external tools.
type Tools struct {
	// TavilyKeyEnv names the environment variable holding the Tavily
	// API key. Unset disables web search.
	TavilyKeyEnv string `toml:"tavily_key_env"`
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		Chunking: Chunking{
			Size:    1000,
			Overlap: 200,
		},
		Retrieval: Retrieval{
			RRFConstant:   60,
			PoolSize:      100,
			Results:       5,
			PathTimeoutMS: 2000,
			GoldenBoost:   0,
		},
		Memo: Memo{
			MaxSteps:            6,
			ConfidenceThreshold: 0.1,
			ToolTimeoutMS:       15000,
		},
		Inference: Inference{
			OllamaURL:         "http://localhost:11434",
			EmbedModel:        "nomic-embed-text",
			LLMModel:          "qwen3",
			OpenAIKeyEnv:      "OPENAI_API_KEY",
			RequestsPerSecond: 4,
		},
		Tools: Tools{
			TavilyKeyEnv: "TAVILY_API_KEY",
		},
	}
}

// HomeDir returns the memogen home directory, creating it if needed.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	dir := filepath.Join(home, ".memogen")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("creating memogen directory: %w", err)
	}
	return dir, nil
}

// Load reads configuration from the given path, applying defaults for
// anything the file leaves unset. A missing file returns the defaults.
// If path is empty, <home>/config.toml is used.
func Load(path string) (*Config, error) {
	if path == "" {
		dir, err := HomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "config.toml")
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.normalise()
	return cfg, nil
}

// normalise clamps overridden values back into usable ranges.
func (c *Config) normalise() {
	d := Default()
	if c.Chunking.Size <= 0 {
		c.Chunking.Size = d.Chunking.Size
	}
	if c.Chunking.Overlap < 0 {
		c.Chunking.Overlap = 0
	}
	if c.Retrieval.RRFConstant <= 0 {
		c.Retrieval.RRFConstant = d.Retrieval.RRFConstant
	}
	if c.Retrieval.Results <= 0 {
		c.Retrieval.Results = d.Retrieval.Results
	}
	// The pool must at least cover the final result count.
	if c.Retrieval.PoolSize < c.Retrieval.Results {
		c.Retrieval.PoolSize = d.Retrieval.PoolSize
	}
	if c.Retrieval.PathTimeoutMS <= 0 {
		c.Retrieval.PathTimeoutMS = d.Retrieval.PathTimeoutMS
	}
	if c.Memo.MaxSteps <= 0 {
		c.Memo.MaxSteps = d.Memo.MaxSteps
	}
	if c.Memo.ToolTimeoutMS <= 0 {
		c.Memo.ToolTimeoutMS = d.Memo.ToolTimeoutMS
	}
	if c.Inference.RequestsPerSecond <= 0 {
		c.Inference.RequestsPerSecond = d.Inference.RequestsPerSecond
	}
}
