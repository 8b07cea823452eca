package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prism-labs/memogen/internal/core/domain"
	"github.com/prism-labs/memogen/internal/core/ports/driven"
	"github.com/prism-labs/memogen/internal/core/ports/driving"
	"github.com/prism-labs/memogen/internal/logger"
	"github.com/prism-labs/memogen/internal/sections"
)

// Ensure MemoService implements the interface.
var _ driving.MemoService = (*MemoService)(nil)

// DefaultMaxSteps bounds the reasoning loop per memo request.
const DefaultMaxSteps = 6

// DefaultConfidenceThreshold is the top retrieval score below which a
// section is routed to review.
const DefaultConfidenceThreshold = 0.1

// DefaultToolTimeout bounds each tool invocation inside the loop.
const DefaultToolTimeout = 15 * time.Second

// MemoOptions tunes the generation orchestrator.
type MemoOptions struct {
	// MaxSteps is the reasoning step budget.
	MaxSteps int

	// ConfidenceThreshold routes weakly-evidenced sections to review.
	ConfidenceThreshold float64

	// ToolTimeout bounds each tool call.
	ToolTimeout time.Duration
}

// MemoService generates structured credit memos. Each request runs one
// bounded reasoning pass to survey the document, then synthesises every
// catalogue section from section-specific retrieval.
type MemoService struct {
	store     driven.ChunkStore
	retrieval driving.RetrievalService
	llm       driven.LLMService
	tools     map[string]driven.Tool
	catalogue *sections.Catalogue
	opts      MemoOptions
}

// NewMemoService creates a memo service. tools may be empty; the
// reasoning loop then finalises from its own knowledge of the prompt.
func NewMemoService(
	store driven.ChunkStore,
	retrieval driving.RetrievalService,
	llm driven.LLMService,
	tools []driven.Tool,
	catalogue *sections.Catalogue,
	opts MemoOptions,
) *MemoService {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	if opts.ConfidenceThreshold <= 0 {
		opts.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if opts.ToolTimeout <= 0 {
		opts.ToolTimeout = DefaultToolTimeout
	}

	registry := make(map[string]driven.Tool, len(tools))
	for _, tool := range tools {
		registry[tool.Name()] = tool
	}

	return &MemoService{
		store:     store,
		retrieval: retrieval,
		llm:       llm,
		tools:     registry,
		catalogue: catalogue,
		opts:      opts,
	}
}

// Generate produces a full memo for a document.
func (s *MemoService) Generate(ctx context.Context, documentID string) (*domain.Memo, error) {
	logger.Section("Memo Generation")

	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("loading document %s: %w", documentID, err)
	}
	if s.llm == nil {
		return nil, fmt.Errorf("generate memo: %w", domain.ErrLLMUnavailable)
	}

	loop := &reactLoop{
		llm:         s.llm,
		tools:       s.tools,
		maxSteps:    s.opts.MaxSteps,
		toolTimeout: s.opts.ToolTimeout,
	}

	question := fmt.Sprintf(
		"Survey the document %q and identify the key credit considerations: "+
			"the borrower's business, its financial position, and the principal risks.",
		doc.Title)

	survey, steps, exhausted, err := loop.run(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("reasoning after %d steps: %w: %v", steps, domain.ErrGenerationFailed, err)
	}
	logger.Debug("Survey (%d steps, exhausted=%t): %s", steps, exhausted, truncate(survey, 120))

	memo := &domain.Memo{
		ID:            uuid.New().String(),
		DocumentID:    documentID,
		Sections:      make(map[string]domain.MemoSection),
		LowConfidence: exhausted,
		Steps:         steps,
		GeneratedAt:   time.Now().UTC(),
	}

	for _, def := range s.catalogue.Sections() {
		section, err := s.synthesiseSection(ctx, def, survey)
		if err != nil {
			return nil, fmt.Errorf("section %q after %d steps with %d evidence chunks: %w: %v",
				def.Name, steps, len(section.Evidence), domain.ErrGenerationFailed, err)
		}
		memo.Sections[def.Name] = section
		memo.SectionOrder = append(memo.SectionOrder, def.Name)
	}

	logger.Info("Memo %s generated: %d sections, %d steps, low_confidence=%t",
		memo.ID, len(memo.SectionOrder), memo.Steps, memo.LowConfidence)
	return memo, nil
}

// synthesiseSection gathers a section's evidence via its sub-queries
// and asks the model to write it. Evidence is deduplicated across
// sub-queries by chunk ID, keeping the best score per chunk.
func (s *MemoService) synthesiseSection(
	ctx context.Context, def sections.Definition, survey string,
) (domain.MemoSection, error) {
	section := domain.MemoSection{Name: def.Name}

	type evidence struct {
		chunk domain.Chunk
		score float64
	}
	seen := make(map[string]int)
	var pool []evidence

	for _, sub := range def.SubQueries {
		ranked, err := s.retrieval.Answer(ctx, domain.Query{
			Text:     sub.Text,
			Section:  def.Name,
			NResults: sub.K,
		})
		if err != nil {
			logger.Warn("Sub-query failed for section %q: %v", def.Name, err)
			section.Partial = true
			continue
		}
		if ranked.Partial {
			section.Partial = true
		}

		for _, r := range ranked.Results {
			if i, ok := seen[r.Chunk.ID]; ok {
				if r.Score > pool[i].score {
					pool[i].score = r.Score
				}
				continue
			}
			seen[r.Chunk.ID] = len(pool)
			pool = append(pool, evidence{chunk: r.Chunk, score: r.Score})
		}
	}

	var contextParts []string
	for _, ev := range pool {
		section.Evidence = append(section.Evidence, ev.chunk.ID)
		if ev.score > section.Confidence {
			section.Confidence = ev.score
		}
		contextParts = append(contextParts, ev.chunk.Text)
	}

	// Weak or absent evidence is returned, but flagged for a human.
	if len(pool) == 0 || section.Confidence < s.opts.ConfidenceThreshold {
		section.NeedsReview = true
	}

	content, err := s.llm.Complete(ctx, sectionPrompt(def, survey, contextParts), driven.CompleteOptions{
		Temperature: 0.2,
	})
	if err != nil {
		return section, err
	}

	section.Content = strings.TrimSpace(content)
	return section, nil
}

// sectionPrompt assembles the synthesis prompt for one section.
func sectionPrompt(def sections.Definition, survey string, contextParts []string) string {
	var sb strings.Builder

	sb.WriteString(def.Prompt)
	sb.WriteString("\n\nDocument survey:\n")
	sb.WriteString(survey)
	sb.WriteString("\n\nContext:\n")
	if len(contextParts) == 0 {
		sb.WriteString("(no supporting passages were retrieved)\n")
	}
	for i, part := range contextParts {
		fmt.Fprintf(&sb, "[%d] %s\n\n", i+1, part)
	}
	sb.WriteString("Section:")

	return sb.String()
}
