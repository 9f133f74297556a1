package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
)

func rankedChunk(title string, docType domain.DocumentType, content string, score float64) domain.RankedChunk {
	return domain.RankedChunk{
		Chunk:    domain.Chunk{ID: "chunk-" + title, Content: content, WordCount: domain.CountWords(content)},
		Document: domain.Document{ID: "doc-" + title, Title: title, Type: docType},
		Score:    score,
	}
}

func TestSynthesisService_Synthesize_EmptyFallback(t *testing.T) {
	llm := &mockLLM{response: "should not be used"}
	service := NewSynthesisService(llm, domain.SynthesisSettings{})
	ctx := context.Background()

	answer, citations, err := service.Synthesize(ctx, "where did the money go", nil)

	require.NoError(t, err)
	assert.Equal(t, FallbackAnswer, answer)
	assert.Empty(t, citations)
	// The fallback must not burn a provider call
	assert.Equal(t, 0, llm.chatCalls())
}

func TestSynthesisService_Synthesize_EmptyFallbackWithoutLLM(t *testing.T) {
	service := NewSynthesisService(nil, domain.SynthesisSettings{})
	ctx := context.Background()

	answer, citations, err := service.Synthesize(ctx, "question", []domain.RankedChunk{})

	require.NoError(t, err)
	assert.Equal(t, FallbackAnswer, answer)
	assert.Empty(t, citations)
}

func TestSynthesisService_Synthesize_NilLLMWithChunks(t *testing.T) {
	service := NewSynthesisService(nil, domain.SynthesisSettings{})
	ctx := context.Background()

	chunks := []domain.RankedChunk{
		rankedChunk("Statement", domain.DocTypeBankStatement, "balance 1200", 0.9),
	}

	_, _, err := service.Synthesize(ctx, "question", chunks)

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestSynthesisService_Synthesize_Answer(t *testing.T) {
	llm := &mockLLM{response: "  The closing balance was $1,200.  "}
	service := NewSynthesisService(llm, domain.SynthesisSettings{
		MaxTokens:   123,
		Temperature: 0.7,
	})
	ctx := context.Background()

	chunks := []domain.RankedChunk{
		rankedChunk("January Statement", domain.DocTypeBankStatement, "Closing balance: $1,200 on Jan 31.", 0.92),
		rankedChunk("February Statement", domain.DocTypeBankStatement, "Opening balance: $1,200 on Feb 1.", 0.81),
	}

	answer, citations, err := service.Synthesize(ctx, "what was the closing balance", chunks)

	require.NoError(t, err)
	assert.Equal(t, "The closing balance was $1,200.", answer)

	require.Len(t, citations, 2)
	assert.Equal(t, "January Statement", citations[0].DocumentTitle)
	assert.Equal(t, domain.DocTypeBankStatement, citations[0].DocumentType)
	assert.InDelta(t, 0.92, citations[0].Score, 0.001)
	assert.Equal(t, "February Statement", citations[1].DocumentTitle)

	// One system message, one user message carrying context and question
	messages := llm.lastChat()
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role)
	assert.NotEmpty(t, messages[0].Content)
	assert.Equal(t, "user", messages[1].Role)
	assert.Contains(t, messages[1].Content, "Closing balance: $1,200 on Jan 31.")
	assert.Contains(t, messages[1].Content, "January Statement")
	assert.Contains(t, messages[1].Content, "Question: what was the closing balance")

	opts := llm.lastChatOpts()
	assert.Equal(t, 123, opts.MaxTokens)
	assert.InDelta(t, 0.7, opts.Temperature, 0.001)
}

func TestSynthesisService_Synthesize_CitationExcerptLength(t *testing.T) {
	llm := &mockLLM{response: "answer"}
	service := NewSynthesisService(llm, domain.SynthesisSettings{ExcerptLength: 10})
	ctx := context.Background()

	long := strings.Repeat("a", 50)
	chunks := []domain.RankedChunk{
		rankedChunk("Statement", domain.DocTypeBankStatement, long, 0.9),
		rankedChunk("Short", domain.DocTypeTax, "tiny", 0.8),
	}

	_, citations, err := service.Synthesize(ctx, "question", chunks)

	require.NoError(t, err)
	require.Len(t, citations, 2)
	assert.Equal(t, strings.Repeat("a", 10), citations[0].Excerpt)
	// Content shorter than the excerpt length passes through whole
	assert.Equal(t, "tiny", citations[1].Excerpt)
}

func TestSynthesisService_Synthesize_BudgetDropsLowestFirst(t *testing.T) {
	llm := &mockLLM{response: "answer"}
	service := NewSynthesisService(llm, domain.SynthesisSettings{ContextBudget: 10})
	ctx := context.Background()

	chunks := []domain.RankedChunk{
		rankedChunk("Kept", domain.DocTypeBankStatement, "sixsix", 0.9),
		rankedChunk("Dropped", domain.DocTypeBankStatement, "overrun", 0.8),
	}

	_, citations, err := service.Synthesize(ctx, "question", chunks)

	require.NoError(t, err)
	// The second chunk would blow the budget, only the first is cited
	require.Len(t, citations, 1)
	assert.Equal(t, "Kept", citations[0].DocumentTitle)

	messages := llm.lastChat()
	require.Len(t, messages, 2)
	assert.Contains(t, messages[1].Content, "sixsix")
	assert.NotContains(t, messages[1].Content, "overrun")
}

func TestSynthesisService_Synthesize_OversizeTopChunkStillSent(t *testing.T) {
	llm := &mockLLM{response: "answer"}
	service := NewSynthesisService(llm, domain.SynthesisSettings{ContextBudget: 5})
	ctx := context.Background()

	big := strings.Repeat("x", 40)
	chunks := []domain.RankedChunk{
		rankedChunk("Big", domain.DocTypeBankStatement, big, 0.9),
		rankedChunk("Second", domain.DocTypeBankStatement, "more", 0.8),
	}

	_, citations, err := service.Synthesize(ctx, "question", chunks)

	require.NoError(t, err)
	// The best chunk always goes whole, never truncated mid-chunk
	require.Len(t, citations, 1)
	assert.Equal(t, "Big", citations[0].DocumentTitle)
	assert.Contains(t, llm.lastChat()[1].Content, big)
}

func TestSynthesisService_Synthesize_PromptStoreOverride(t *testing.T) {
	llm := &mockLLM{response: "answer"}
	service := NewSynthesisService(llm, domain.SynthesisSettings{})
	service.SetPromptStore(&mockPromptStore{prompts: map[string]string{
		driven.PromptAnalystSystem: "custom analyst instructions",
	}})
	ctx := context.Background()

	chunks := []domain.RankedChunk{
		rankedChunk("Statement", domain.DocTypeBankStatement, "content", 0.9),
	}

	_, _, err := service.Synthesize(ctx, "question", chunks)

	require.NoError(t, err)
	assert.Equal(t, "custom analyst instructions", llm.lastChat()[0].Content)
}

func TestSynthesisService_Synthesize_PromptStoreMissFallsBack(t *testing.T) {
	llm := &mockLLM{response: "answer"}
	service := NewSynthesisService(llm, domain.SynthesisSettings{})
	service.SetPromptStore(&mockPromptStore{})
	ctx := context.Background()

	chunks := []domain.RankedChunk{
		rankedChunk("Statement", domain.DocTypeBankStatement, "content", 0.9),
	}

	_, _, err := service.Synthesize(ctx, "question", chunks)

	require.NoError(t, err)
	assert.Equal(t, defaultAnalystPrompt, llm.lastChat()[0].Content)
}

func TestSynthesisService_Synthesize_ChatError(t *testing.T) {
	llm := &mockLLM{chatErr: domain.ErrGenerationUnavailable}
	service := NewSynthesisService(llm, domain.SynthesisSettings{})
	ctx := context.Background()

	chunks := []domain.RankedChunk{
		rankedChunk("Statement", domain.DocTypeBankStatement, "content", 0.9),
	}

	_, _, err := service.Synthesize(ctx, "question", chunks)

	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
}

func TestExcerptOf(t *testing.T) {
	assert.Equal(t, "abc", excerptOf("abc", 10))
	assert.Equal(t, "abcde", excerptOf("abcdefgh", 5))
	// Cut points inside a multi-byte rune back off to its start
	assert.Equal(t, "€", excerptOf("€€€", 4))
	assert.Equal(t, "", excerptOf("€€€", 2))
	assert.Equal(t, "", excerptOf("anything", 0))
}
