package services

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/finsight-cli/internal/adapters/driven/storage/memory"
	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
)

// --- Mock implementations ---
//
// Storage fakes come from the memory adapter; only the AI-facing ports
// are mocked here. The mocks are shared across the service tests.

// mockEmbedder implements driven.EmbeddingService for testing.
type mockEmbedder struct {
	mu       sync.Mutex
	vec      []float32
	dims     int
	embedErr error
	failOn   string        // substring of text that triggers embedErr; empty fails everything
	delay    time.Duration // simulated provider latency
	calls    int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.embedErr != nil && (m.failOn == "" || strings.Contains(text, m.failOn)) {
		return nil, m.embedErr
	}
	return m.vec, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i := range texts {
		vec, err := m.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		result[i] = vec
	}
	return result, nil
}

func (m *mockEmbedder) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return len(m.vec)
}

func (m *mockEmbedder) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbedder) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbedder) Close() error {
	return nil
}

func (m *mockEmbedder) embedCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	mu          sync.Mutex
	response    string
	generateErr error
	chatErr     error
	delay       time.Duration
	prompts     []string
	chats       [][]driven.ChatMessage
	chatOpts    []driven.ChatOptions
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	if err := m.wait(ctx); err != nil {
		return "", err
	}
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.response, nil
}

func (m *mockLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := m.wait(ctx); err != nil {
		return "", err
	}
	m.mu.Lock()
	m.chats = append(m.chats, messages)
	m.chatOpts = append(m.chatOpts, opts)
	m.mu.Unlock()
	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.response, nil
}

func (m *mockLLM) wait(ctx context.Context) error {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return ctx.Err()
}

func (m *mockLLM) ModelName() string {
	return "mock-llm"
}

func (m *mockLLM) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLM) Close() error {
	return nil
}

func (m *mockLLM) generateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func (m *mockLLM) chatCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chats)
}

func (m *mockLLM) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

func (m *mockLLM) lastChat() []driven.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.chats) == 0 {
		return nil
	}
	return m.chats[len(m.chats)-1]
}

func (m *mockLLM) lastChatOpts() driven.ChatOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.chatOpts) == 0 {
		return driven.ChatOptions{}
	}
	return m.chatOpts[len(m.chatOpts)-1]
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Reload() {}

// mockVectorIndex implements driven.VectorIndex with canned hits, for
// exercising hydration against hits the store no longer has.
type mockVectorIndex struct {
	hits      []driven.VectorHit
	searchErr error
}

func (m *mockVectorIndex) UpsertDocument(_ context.Context, _ *domain.Document, _ []domain.Chunk) error {
	return nil
}

func (m *mockVectorIndex) DeleteDocument(_ context.Context, _ string) error {
	return nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int, _ domain.DocumentType) ([]driven.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockVectorIndex) Dimensions() int {
	return 2
}

func (m *mockVectorIndex) Close() error {
	return nil
}

// mockAIValidator implements driven.AIConfigValidator for testing.
type mockAIValidator struct {
	embedErr error
	llmErr   error
	gotEmbed *domain.EmbeddingSettings
	gotLLM   *domain.LLMSettings
}

func (m *mockAIValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	m.gotEmbed = config
	return m.embedErr
}

func (m *mockAIValidator) ValidateLLM(config *domain.LLMSettings) error {
	m.gotLLM = config
	return m.llmErr
}

// --- Seed helpers ---

// testDocument builds a document with a unique content hash so seeded
// documents never trip the store's dedup check.
func testDocument(id, title string, docType domain.DocumentType, createdAt time.Time) *domain.Document {
	return &domain.Document{
		ID:          id,
		Title:       title,
		Type:        docType,
		ContentHash: domain.HashContent(id),
		CreatedAt:   createdAt,
	}
}

// testChunk builds a chunk with a predictable ID.
func testChunk(docID string, ordinal int, content string, embedding []float32) domain.Chunk {
	return domain.Chunk{
		ID:         docID + "-c" + strconv.Itoa(ordinal),
		DocumentID: docID,
		Ordinal:    ordinal,
		Content:    content,
		Embedding:  embedding,
		WordCount:  domain.CountWords(content),
	}
}

// seedDocument stores a document with its chunks through the vector index.
func seedDocument(t *testing.T, store *memory.Store, doc *domain.Document, chunks []domain.Chunk) {
	t.Helper()
	require.NoError(t, store.VectorIndex().UpsertDocument(context.Background(), doc, chunks))
}
