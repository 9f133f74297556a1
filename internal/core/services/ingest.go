package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driving"
	"github.com/finsight-labs/finsight-cli/internal/logger"
)

// Ensure IngestService implements the interfaces.
var (
	_ driving.IngestService   = (*IngestService)(nil)
	_ driven.PromptStoreAware = (*IngestService)(nil)
)

// classifySampleLength bounds how much document text is sent to the LLM
// for type classification.
const classifySampleLength = 2000

// defaultClassifyPrompt asks the completion provider to type a document,
// used when no prompt store overrides it.
const defaultClassifyPrompt = `Classify this financial document as exactly one of: bank_statement, credit_card, investment, tax. Respond with only the type name.

Document:
%s`

// IngestService turns raw text into a stored, searchable document.
// One document is one atomic unit: segmentation and embedding happen
// up front, and a single store upsert commits everything or nothing.
type IngestService struct {
	embeddingService driven.EmbeddingService
	llmService       driven.LLMService
	vectorIndex      driven.VectorIndex
	docStore         driven.DocumentStore
	pipeline         driven.PostProcessorPipeline
	promptStore      driven.PromptStore
	concurrency      int

	mu     sync.Mutex
	active map[string]struct{}
}

// NewIngestService creates a new ingest service.
// llmService is optional (can be nil) - type classification then relies
// on keyword heuristics alone. concurrency bounds parallel chunk
// embedding; values below 1 fall back to the default.
func NewIngestService(
	embeddingService driven.EmbeddingService,
	llmService driven.LLMService,
	vectorIndex driven.VectorIndex,
	docStore driven.DocumentStore,
	pipeline driven.PostProcessorPipeline,
	concurrency int,
) *IngestService {
	if concurrency < 1 {
		concurrency = domain.DefaultAppSettings().Ingest.EmbedConcurrency
	}

	return &IngestService{
		embeddingService: embeddingService,
		llmService:       llmService,
		vectorIndex:      vectorIndex,
		docStore:         docStore,
		pipeline:         pipeline,
		concurrency:      concurrency,
		active:           make(map[string]struct{}),
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *IngestService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Ingest validates, segments, embeds, and stores one document.
// Identical content fails with domain.ErrDuplicateDocument; a concurrent
// ingest of the same content fails with domain.ErrIngestInProgress.
// Empty text succeeds and records a document with zero chunks.
func (s *IngestService) Ingest(ctx context.Context, req driving.IngestRequest) (*driving.IngestResult, error) {
	logger.Section("Document Ingestion")
	logger.Debug("Ingesting %q: %d bytes", req.Title, len(req.Text))

	if req.Title == "" {
		return nil, fmt.Errorf("%w: document title is required", domain.ErrInvalidInput)
	}

	hash := domain.HashContent(req.Text)
	if err := s.acquire("hash:" + hash); err != nil {
		return nil, err
	}
	defer s.release("hash:" + hash)

	if existing, err := s.docStore.GetDocumentByHash(ctx, hash); err == nil {
		logger.Info("Duplicate content, already ingested as document %s", existing.ID)
		return nil, fmt.Errorf("%w: identical content already ingested as document %s", domain.ErrDuplicateDocument, existing.ID)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("dedup check: %w", err)
	}

	docType := req.Type
	if !docType.IsValid() || docType == domain.DocTypeUnknown {
		docType = s.classify(ctx, req.Text)
	}

	doc := &domain.Document{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Type:        docType,
		ContentHash: hash,
		SizeBytes:   int64(len(req.Text)),
		WordCount:   domain.CountWords(req.Text),
	}

	chunkCount, err := s.segmentEmbedStore(ctx, doc, req.Text)
	if err != nil {
		return nil, err
	}

	logger.Info("Ingested document %s: type=%s, %d chunks", doc.ID, doc.Type, chunkCount)
	return &driving.IngestResult{Document: doc, ChunkCount: chunkCount}, nil
}

// Reingest replaces a document's chunks with freshly segmented and
// embedded ones. The same text re-embeds too, which is how a document
// catches up after an embedding model switch.
func (s *IngestService) Reingest(ctx context.Context, documentID string, text string) (*driving.IngestResult, error) {
	logger.Section("Document Re-ingestion")
	logger.Debug("Re-ingesting document %s: %d bytes", documentID, len(text))

	if err := s.acquire("id:" + documentID); err != nil {
		return nil, err
	}
	defer s.release("id:" + documentID)

	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	hash := domain.HashContent(text)
	if other, err := s.docStore.GetDocumentByHash(ctx, hash); err == nil && other.ID != documentID {
		return nil, fmt.Errorf("%w: identical content already ingested as document %s", domain.ErrDuplicateDocument, other.ID)
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("dedup check: %w", err)
	}

	doc.ContentHash = hash
	doc.SizeBytes = int64(len(text))
	doc.WordCount = domain.CountWords(text)

	chunkCount, err := s.segmentEmbedStore(ctx, doc, text)
	if err != nil {
		return nil, err
	}

	logger.Info("Re-ingested document %s: %d chunks", doc.ID, chunkCount)
	return &driving.IngestResult{Document: doc, ChunkCount: chunkCount}, nil
}

// segmentEmbedStore runs the shared tail of both ingest paths: segment
// the text, embed every chunk, commit document and chunks in one upsert.
func (s *IngestService) segmentEmbedStore(ctx context.Context, doc *domain.Document, text string) (int, error) {
	chunks, err := s.pipeline.Process(ctx, doc, text)
	if err != nil {
		return 0, fmt.Errorf("segment document: %w", err)
	}
	logger.Debug("Segmented into %d chunks", len(chunks))

	if err := s.embedChunks(ctx, chunks); err != nil {
		return 0, err
	}

	if err := s.vectorIndex.UpsertDocument(ctx, doc, chunks); err != nil {
		return 0, fmt.Errorf("store document: %w", err)
	}

	return len(chunks), nil
}

// embedChunks fans the chunks out to the embedding provider, at most
// concurrency requests in flight. Ordinals are already assigned, so
// completion order does not matter. The first real failure cancels the
// remaining work and aborts the whole document.
func (s *IngestService) embedChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Debug("Embedding %d chunks with %d workers", len(chunks), s.concurrency)

	sem := make(chan struct{}, s.concurrency)
	errs := make([]error, len(chunks))
	var wg sync.WaitGroup

	for i := range chunks {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			vec, err := s.embeddingService.Embed(ctx, chunks[i].Content)
			if err != nil {
				errs[i] = fmt.Errorf("embed chunk %d: %w", chunks[i].Ordinal, err)
				cancel()
				return
			}
			chunks[i].Embedding = vec
		}()
	}

	wg.Wait()

	// Prefer the failure that triggered the cancellation over the
	// cancellations it caused in sibling workers.
	var cancelled error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if !errors.Is(err, context.Canceled) {
			return err
		}
		if cancelled == nil {
			cancelled = err
		}
	}
	return cancelled
}

// classify types a document by keyword heuristics, falling back to the
// completion provider when the heuristics find nothing and one is
// configured. Classification failures degrade to unknown rather than
// failing the ingestion.
func (s *IngestService) classify(ctx context.Context, text string) domain.DocumentType {
	if t := domain.DetectDocumentType(text); t != domain.DocTypeUnknown {
		logger.Debug("Keyword classification: %s", t)
		return t
	}

	if s.llmService == nil || text == "" {
		return domain.DocTypeUnknown
	}

	prompt := fmt.Sprintf(s.classifyPrompt(), excerptOf(text, classifySampleLength))
	resp, err := s.llmService.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   10,
		Temperature: 0,
	})
	if err != nil {
		logger.Warn("LLM classification failed: %v", err)
		return domain.DocTypeUnknown
	}

	t := domain.ParseDocumentType(resp)
	logger.Debug("LLM classification: %s", t)
	return t
}

func (s *IngestService) classifyPrompt() string {
	if s.promptStore != nil {
		if p, err := s.promptStore.Load(driven.PromptClassify); err == nil && p != "" {
			return p
		}
	}
	return defaultClassifyPrompt
}

// acquire registers an in-flight ingestion for key, failing fast when
// one is already running instead of queueing behind it.
func (s *IngestService) acquire(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.active[key]; busy {
		return domain.ErrIngestInProgress
	}
	s.active[key] = struct{}{}
	return nil
}

func (s *IngestService) release(key string) {
	s.mu.Lock()
	delete(s.active, key)
	s.mu.Unlock()
}
