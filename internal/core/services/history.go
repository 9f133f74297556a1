package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// defaultRecentLimit is how many records Recent returns when the caller
// does not say.
const defaultRecentLimit = 10

// HistoryService records answered queries and aggregates usage
// statistics across the corpus and the query log.
type HistoryService struct {
	historyStore driven.HistoryStore
	docStore     driven.DocumentStore
}

// NewHistoryService creates a new history service.
func NewHistoryService(historyStore driven.HistoryStore, docStore driven.DocumentStore) *HistoryService {
	return &HistoryService{
		historyStore: historyStore,
		docStore:     docStore,
	}
}

// Record persists one answered query.
func (s *HistoryService) Record(ctx context.Context, query string, result *domain.QueryResult) error {
	if result == nil {
		return fmt.Errorf("%w: query result is nil", domain.ErrInvalidInput)
	}

	record := &domain.QueryRecord{
		ID:           uuid.New().String(),
		Query:        query,
		Answer:       result.Answer,
		TopScore:     result.TopScore(),
		ResultCount:  len(result.Citations),
		ProcessingMs: result.ProcessingTime.Milliseconds(),
	}

	return s.historyStore.SaveRecord(ctx, record)
}

// Recent returns the most recent query records, newest first.
// A non-positive limit falls back to the default.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]domain.QueryRecord, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return s.historyStore.Recent(ctx, limit)
}

// Analytics aggregates corpus and usage statistics.
func (s *HistoryService) Analytics(ctx context.Context) (*domain.Analytics, error) {
	byType, err := s.docStore.CountDocumentsByType(ctx)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	totalDocs := 0
	for _, n := range byType {
		totalDocs += n
	}

	totalChunks, err := s.docStore.CountChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}

	totalQueries, err := s.historyStore.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count queries: %w", err)
	}

	avgMs, err := s.historyStore.AvgProcessingMs(ctx)
	if err != nil {
		return nil, fmt.Errorf("average latency: %w", err)
	}

	recent, err := s.historyStore.Recent(ctx, 5)
	if err != nil {
		return nil, fmt.Errorf("recent queries: %w", err)
	}

	return &domain.Analytics{
		TotalDocuments:  totalDocs,
		DocumentsByType: byType,
		TotalChunks:     totalChunks,
		TotalQueries:    totalQueries,
		AvgProcessingMs: avgMs,
		RecentQueries:   recent,
	}, nil
}
