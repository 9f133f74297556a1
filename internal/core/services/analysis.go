package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driving"
	"github.com/finsight-labs/finsight-cli/internal/logger"
)

// Ensure AnalysisService implements the interfaces.
var (
	_ driving.AnalysisService = (*AnalysisService)(nil)
	_ driven.PromptStoreAware = (*AnalysisService)(nil)
)

// trendsSampleLength bounds each document's contribution to the trends
// prompt so a large corpus still fits the provider's context.
const trendsSampleLength = 2000

// Default analysis prompts, used when no prompt store overrides them.
const (
	defaultTrendsPrompt = `You are a financial analyst. Examine the following document contents for financial trends: recurring income and spending patterns, balance changes over time, and anything unusual. Summarise your findings in a few short paragraphs.

%s`

	defaultEntitiesPrompt = `Extract financial entities from the following text. Respond with only a JSON object whose keys are "amounts", "dates", "accounts", "institutions", and "categories", each mapping to an array of strings found in the text. No commentary.

Text:
%s`
)

// AnalysisService provides LLM analysis beyond grounded question
// answering: trend summaries across documents and entity extraction
// from free-form text. Both need a configured completion provider.
type AnalysisService struct {
	llmService  driven.LLMService
	docStore    driven.DocumentStore
	promptStore driven.PromptStore
}

// NewAnalysisService creates a new analysis service.
// llmService is optional (can be nil) - operations then fail with
// domain.ErrLLMUnavailable.
func NewAnalysisService(llmService driven.LLMService, docStore driven.DocumentStore) *AnalysisService {
	return &AnalysisService{
		llmService: llmService,
		docStore:   docStore,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *AnalysisService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// AnalyzeTrends examines the given documents for financial trends.
// With no IDs it analyses every ingested document.
func (s *AnalysisService) AnalyzeTrends(ctx context.Context, documentIDs []string) (string, error) {
	if s.llmService == nil {
		return "", fmt.Errorf("%w: trend analysis needs a completion provider", domain.ErrLLMUnavailable)
	}

	logger.Section("Trend Analysis")

	if len(documentIDs) == 0 {
		docs, err := s.docStore.ListDocuments(ctx, "")
		if err != nil {
			return "", fmt.Errorf("list documents: %w", err)
		}
		documentIDs = make([]string, len(docs))
		for i, doc := range docs {
			documentIDs[i] = doc.ID
		}
	}
	if len(documentIDs) == 0 {
		return "", fmt.Errorf("%w: no documents to analyse", domain.ErrInvalidInput)
	}
	logger.Debug("Analysing %d documents", len(documentIDs))

	var b strings.Builder
	for _, id := range documentIDs {
		doc, err := s.docStore.GetDocument(ctx, id)
		if err != nil {
			return "", err
		}
		chunks, err := s.docStore.GetChunks(ctx, id)
		if err != nil {
			return "", err
		}

		fmt.Fprintf(&b, "Document %q (%s):\n%s\n\n",
			doc.Title, doc.Type.Description(), excerptOf(reassembleContent(chunks), trendsSampleLength))
	}

	prompt := fmt.Sprintf(s.prompt(driven.PromptTrends, defaultTrendsPrompt), b.String())
	analysis, err := s.llmService.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   1500,
		Temperature: 0.3,
	})
	if err != nil {
		logger.Warn("Trend analysis failed: %v", err)
		return "", fmt.Errorf("analyse trends: %w", err)
	}

	return strings.TrimSpace(analysis), nil
}

// ExtractEntities pulls amounts, dates, accounts, institutions, and
// categories out of free-form text. When the provider strays from the
// strict JSON it was asked for, the raw output is returned instead of
// an error.
func (s *AnalysisService) ExtractEntities(ctx context.Context, text string) (*domain.EntityExtraction, error) {
	if s.llmService == nil {
		return nil, fmt.Errorf("%w: entity extraction needs a completion provider", domain.ErrLLMUnavailable)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is empty", domain.ErrInvalidInput)
	}

	prompt := fmt.Sprintf(s.prompt(driven.PromptEntities, defaultEntitiesPrompt), text)
	resp, err := s.llmService.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   500,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("extract entities: %w", err)
	}

	var entities map[string][]string
	if err := json.Unmarshal([]byte(stripCodeFence(resp)), &entities); err != nil {
		logger.Debug("Entity response was not strict JSON, keeping raw output")
		return &domain.EntityExtraction{Raw: resp}, nil
	}

	return &domain.EntityExtraction{Entities: entities}, nil
}

func (s *AnalysisService) prompt(name, fallback string) string {
	if s.promptStore != nil {
		if p, err := s.promptStore.Load(name); err == nil && p != "" {
			return p
		}
	}
	return fallback
}

// stripCodeFence unwraps a markdown code fence, which providers like to
// add around JSON despite instructions.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
