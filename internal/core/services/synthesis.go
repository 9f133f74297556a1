package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsight-cli/internal/logger"
)

// Ensure SynthesisService can receive custom prompts.
var _ driven.PromptStoreAware = (*SynthesisService)(nil)

// FallbackAnswer is returned when no chunk cleared the similarity
// threshold. It is produced without calling the completion provider.
const FallbackAnswer = "No relevant information found in the documents."

// defaultAnalystPrompt is the system prompt for answer synthesis, used
// when no prompt store overrides it.
const defaultAnalystPrompt = `You are a financial analyst assistant. Answer the question using only the document excerpts provided. Be precise with amounts, dates, and account details, and name the documents your answer draws on. When the excerpts do not contain the answer, say so plainly instead of guessing.`

// SynthesisService turns ranked chunks into a grounded answer with
// citations. The completion provider is only called when grounding
// context exists; an empty ranked set short-circuits to FallbackAnswer.
type SynthesisService struct {
	llmService  driven.LLMService
	promptStore driven.PromptStore
	settings    domain.SynthesisSettings
}

// NewSynthesisService creates a new synthesis service.
// llmService may be nil, in which case only the no-context fallback is
// available and any synthesis over real chunks fails with
// domain.ErrLLMUnavailable. Zero settings fields fall back to defaults.
func NewSynthesisService(llmService driven.LLMService, settings domain.SynthesisSettings) *SynthesisService {
	defaults := domain.DefaultAppSettings().Synthesis
	if settings.ContextBudget <= 0 {
		settings.ContextBudget = defaults.ContextBudget
	}
	if settings.MaxTokens <= 0 {
		settings.MaxTokens = defaults.MaxTokens
	}
	if settings.Temperature <= 0 {
		settings.Temperature = defaults.Temperature
	}
	if settings.ExcerptLength <= 0 {
		settings.ExcerptLength = defaults.ExcerptLength
	}

	return &SynthesisService{
		llmService: llmService,
		settings:   settings,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *SynthesisService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Synthesize generates an answer to the query grounded in the given
// chunks, best first, and returns it with one citation per chunk used.
func (s *SynthesisService) Synthesize(ctx context.Context, query string, chunks []domain.RankedChunk) (string, []domain.Citation, error) {
	if len(chunks) == 0 {
		logger.Info("No grounding context, returning fallback answer")
		return FallbackAnswer, nil, nil
	}

	if s.llmService == nil {
		return "", nil, fmt.Errorf("%w: cannot synthesize an answer", domain.ErrLLMUnavailable)
	}

	selected, used := s.fitBudget(chunks)
	logger.Debug("Synthesis context: %d of %d chunks, %d chars", len(selected), len(chunks), used)

	answer, err := s.llmService.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: s.systemPrompt()},
		{Role: "user", Content: buildContextMessage(query, selected)},
	}, driven.ChatOptions{
		MaxTokens:   s.settings.MaxTokens,
		Temperature: s.settings.Temperature,
	})
	if err != nil {
		logger.Warn("Answer generation failed: %v", err)
		return "", nil, fmt.Errorf("generate answer: %w", err)
	}

	citations := make([]domain.Citation, 0, len(selected))
	for _, rc := range selected {
		citations = append(citations, domain.Citation{
			DocumentTitle: rc.Document.Title,
			DocumentType:  rc.Document.Type,
			Score:         rc.Score,
			Excerpt:       excerptOf(rc.Chunk.Content, s.settings.ExcerptLength),
		})
	}

	return strings.TrimSpace(answer), citations, nil
}

// fitBudget keeps the best-first prefix of chunks whose combined length
// stays within the context budget. The top chunk is always sent whole,
// even when it alone exceeds the budget; lower-ranked chunks are dropped
// once the budget is spent.
func (s *SynthesisService) fitBudget(chunks []domain.RankedChunk) ([]domain.RankedChunk, int) {
	var used int
	for i, rc := range chunks {
		n := len(rc.Chunk.Content)
		if i > 0 && used+n > s.settings.ContextBudget {
			return chunks[:i], used
		}
		used += n
	}
	return chunks, used
}

func (s *SynthesisService) systemPrompt() string {
	if s.promptStore != nil {
		if p, err := s.promptStore.Load(driven.PromptAnalystSystem); err == nil && p != "" {
			return p
		}
	}
	return defaultAnalystPrompt
}

// buildContextMessage lays out the grounding excerpts as numbered blocks
// followed by the question.
func buildContextMessage(query string, chunks []domain.RankedChunk) string {
	var b strings.Builder
	for i, rc := range chunks {
		fmt.Fprintf(&b, "Document excerpt %d (from %q, %s):\n%s\n\n",
			i+1, rc.Document.Title, rc.Document.Type.Description(), rc.Chunk.Content)
	}
	fmt.Fprintf(&b, "Question: %s", query)
	return b.String()
}

// excerptOf returns a prefix of text at most length bytes long, backing
// off to the nearest rune boundary.
func excerptOf(text string, length int) string {
	if len(text) <= length {
		return text
	}
	cut := length
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
