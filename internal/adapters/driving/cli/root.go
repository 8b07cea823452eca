// Package cli provides the command-line interface for memogen.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	ollamaembed "github.com/prism-labs/memogen/internal/adapters/driven/embedding/ollama"
	bm25index "github.com/prism-labs/memogen/internal/adapters/driven/index/bm25"
	vectorindex "github.com/prism-labs/memogen/internal/adapters/driven/index/vector"
	ollamallm "github.com/prism-labs/memogen/internal/adapters/driven/llm/ollama"
	openaillm "github.com/prism-labs/memogen/internal/adapters/driven/llm/openai"
	"github.com/prism-labs/memogen/internal/adapters/driven/rerank/tei"
	"github.com/prism-labs/memogen/internal/adapters/driven/storage/sqlite"
	"github.com/prism-labs/memogen/internal/chunker"
	"github.com/prism-labs/memogen/internal/config"
	"github.com/prism-labs/memogen/internal/core/ports/driven"
	"github.com/prism-labs/memogen/internal/core/ports/driving"
	"github.com/prism-labs/memogen/internal/core/services"
	"github.com/prism-labs/memogen/internal/logger"
	"github.com/prism-labs/memogen/internal/sections"
	"github.com/prism-labs/memogen/internal/tools/retrieve"
	"github.com/prism-labs/memogen/internal/tools/websearch"
)

var version = "0.1.0"

var (
	cfgFile string
	verbose bool
)

// Services wired at startup. Commands check for nil so the binary
// still answers help and version when the backends are unreachable.
var (
	appConfig        *config.Config
	chunkStore       driven.ChunkStore
	catalogue        *sections.Catalogue
	sectionsPath     string
	ingestService    driving.IngestService
	retrievalService driving.RetrievalService
	memoService      driving.MemoService
	feedbackService  driving.FeedbackService
)

var rootCmd = &cobra.Command{
	Use:   "memogen",
	Short: "Credit memo generation from financial documents",
	Long: `memogen ingests financial documents, indexes them for hybrid
keyword and semantic retrieval, and generates structured credit memos
with a bounded reasoning loop. Reviewer corrections feed back into the
index as golden chunks.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.memogen/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute wires the services and runs the root command.
func Execute() error {
	cobra.OnInitialize(func() {
		logger.SetVerbose(verbose)
		if err := initServices(); err != nil {
			logger.Warn("Service initialisation failed: %v", err)
		}
	})
	return rootCmd.Execute()
}

// initServices builds the full pipeline from configuration. Inference
// backends that are down degrade the pipeline rather than failing it:
// no embedder means sparse-only retrieval, no reranker means fusion
// order.
func initServices() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	appConfig = cfg

	home, err := config.HomeDir()
	if err != nil {
		return err
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(home, "data")
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	chunkStore = store

	sectionsPath = cfg.SectionsFile
	if sectionsPath == "" {
		sectionsPath = filepath.Join(home, "sections.toml")
	}
	catalogue, err = sections.Load(sectionsPath)
	if err != nil {
		return fmt.Errorf("loading section catalogue: %w", err)
	}

	embedder := probeEmbedder(cfg)

	search := bm25index.New()
	var vector driven.VectorIndex
	if embedder != nil {
		idx, err := vectorindex.New(embedder.Dimensions())
		if err != nil {
			return fmt.Errorf("creating vector index: %w", err)
		}
		vector = idx
	}

	indexer := services.NewIndexer(search, vector)

	// Both index projections are rebuilt from the store on startup;
	// only the store itself is durable.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := indexer.Rebuild(ctx, store); err != nil {
		return fmt.Errorf("rebuilding indexes: %w", err)
	}

	var reranker driven.RerankService
	if cfg.Inference.RerankURL != "" {
		r, err := tei.NewRerankService(tei.Config{
			BaseURL:           cfg.Inference.RerankURL,
			RequestsPerSecond: cfg.Inference.RequestsPerSecond,
		})
		if err != nil {
			return fmt.Errorf("creating rerank service: %w", err)
		}
		reranker = r
	}

	retrievalService = services.NewRetrievalService(
		store, search, vector, embedder, reranker,
		services.RetrievalOptions{
			RRFConstant: cfg.Retrieval.RRFConstant,
			PoolSize:    cfg.Retrieval.PoolSize,
			PathTimeout: time.Duration(cfg.Retrieval.PathTimeoutMS) * time.Millisecond,
			GoldenBoost: cfg.Retrieval.GoldenBoost,
		},
	)

	splitter := chunker.New(
		chunker.WithChunkSize(cfg.Chunking.Size),
		chunker.WithOverlap(cfg.Chunking.Overlap),
	)
	ingestService = services.NewIngestService(store, splitter, embedder, indexer)

	llm := buildLLM(cfg)

	var memoTools []driven.Tool
	memoTools = append(memoTools, retrieve.New(retrievalService))
	if key := os.Getenv(cfg.Tools.TavilyKeyEnv); key != "" {
		ws, err := websearch.New(websearch.Config{APIKey: key})
		if err == nil {
			memoTools = append(memoTools, ws)
		}
	}

	memoService = services.NewMemoService(
		store, retrievalService, llm, memoTools, catalogue,
		services.MemoOptions{
			MaxSteps:            cfg.Memo.MaxSteps,
			ConfidenceThreshold: cfg.Memo.ConfidenceThreshold,
			ToolTimeout:         time.Duration(cfg.Memo.ToolTimeoutMS) * time.Millisecond,
		},
	)

	feedbackService = services.NewFeedbackService(store, store, embedder, indexer, catalogue)

	return nil
}

// probeEmbedder returns the embedding backend, or nil when it is
// unreachable. The pipeline runs sparse-only without one.
func probeEmbedder(cfg *config.Config) driven.EmbeddingService {
	embedder := ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:           cfg.Inference.OllamaURL,
		Model:             cfg.Inference.EmbedModel,
		RequestsPerSecond: cfg.Inference.RequestsPerSecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := embedder.Ping(ctx); err != nil {
		logger.Warn("Embedding backend unreachable, sparse retrieval only: %v", err)
		return nil
	}
	return embedder
}

// buildLLM picks the completion backend: an OpenAI-compatible endpoint
// when configured with a key, Ollama otherwise.
func buildLLM(cfg *config.Config) driven.LLMService {
	if cfg.Inference.OpenAIBaseURL != "" {
		key := os.Getenv(cfg.Inference.OpenAIKeyEnv)
		svc, err := openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:            key,
			BaseURL:           cfg.Inference.OpenAIBaseURL,
			RequestsPerSecond: cfg.Inference.RequestsPerSecond,
		})
		if err == nil {
			return svc
		}
		logger.Warn("OpenAI backend not usable, falling back to Ollama: %v", err)
	}

	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL:           cfg.Inference.OllamaURL,
		Model:             cfg.Inference.LLMModel,
		RequestsPerSecond: cfg.Inference.RequestsPerSecond,
	})
}
