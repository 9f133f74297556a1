package cli

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driving"
)

// Shared mock services for command tests. setupTestServices installs
// happy-path mocks for every service the commands consume and returns a
// cleanup that restores the previous wiring.

var testIngestTime = time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)

func setupTestServices() func() {
	oldIngest := ingestService
	oldQuery := queryService
	oldDocument := documentService
	oldHistory := historyService
	oldAnalysis := analysisService
	oldNormalisers := normaliserReg

	ingestService = &mockIngestService{}
	queryService = &mockQueryService{}
	documentService = &mockDocumentService{}
	historyService = &mockHistoryService{}
	analysisService = &mockAnalysisService{}
	normaliserReg = &mockNormaliserRegistry{}

	return func() {
		ingestService = oldIngest
		queryService = oldQuery
		documentService = oldDocument
		historyService = oldHistory
		analysisService = oldAnalysis
		normaliserReg = oldNormalisers
	}
}

// Ingest

type mockIngestService struct {
	IngestFunc func(ctx context.Context, req driving.IngestRequest) (*driving.IngestResult, error)
}

func (m *mockIngestService) Ingest(
	ctx context.Context, req driving.IngestRequest,
) (*driving.IngestResult, error) {
	if m.IngestFunc != nil {
		return m.IngestFunc(ctx, req)
	}
	docType := req.Type
	if docType == "" {
		docType = domain.DocTypeBankStatement
	}
	return &driving.IngestResult{
		Document: &domain.Document{
			ID:        "doc-new",
			Title:     req.Title,
			Type:      docType,
			CreatedAt: testIngestTime,
			UpdatedAt: testIngestTime,
		},
		ChunkCount: 3,
	}, nil
}

func (m *mockIngestService) Reingest(
	_ context.Context, documentID string, _ string,
) (*driving.IngestResult, error) {
	return &driving.IngestResult{
		Document:   &domain.Document{ID: documentID},
		ChunkCount: 3,
	}, nil
}

type mockIngestServiceDuplicate struct {
	mockIngestService
}

func (m *mockIngestServiceDuplicate) Ingest(
	_ context.Context, _ driving.IngestRequest,
) (*driving.IngestResult, error) {
	return nil, domain.ErrDuplicateDocument
}

// Query

type mockQueryService struct {
	QueryFunc func(ctx context.Context, text string, opts domain.QueryOptions) (*domain.QueryResult, error)
}

func (m *mockQueryService) Query(
	ctx context.Context, text string, opts domain.QueryOptions,
) (*domain.QueryResult, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, text, opts)
	}
	return &domain.QueryResult{
		Answer: "Total grocery spending in March was 420.00 [1].",
		Citations: []domain.Citation{
			{
				DocumentTitle: "March Statement",
				DocumentType:  domain.DocTypeBankStatement,
				Score:         0.91,
				Excerpt:       "2025-03-01 Grocery Store -42.50",
			},
			{
				DocumentTitle: "April Statement",
				DocumentType:  domain.DocTypeBankStatement,
				Score:         0.84,
				Excerpt:       "2025-04-02 Grocery Store -51.20",
			},
		},
		ProcessingTime: 1200 * time.Millisecond,
	}, nil
}

type mockQueryServiceError struct{}

func (m *mockQueryServiceError) Query(
	_ context.Context, _ string, _ domain.QueryOptions,
) (*domain.QueryResult, error) {
	return nil, errors.New("embedding provider unreachable")
}

// Documents

type mockDocumentService struct{}

func (m *mockDocumentService) List(
	_ context.Context, typeFilter domain.DocumentType,
) ([]domain.Document, error) {
	docs := []domain.Document{
		{
			ID:         "doc-1",
			Title:      "March Statement",
			Type:       domain.DocTypeBankStatement,
			SizeBytes:  4096,
			WordCount:  840,
			ChunkCount: 12,
			CreatedAt:  testIngestTime,
			UpdatedAt:  testIngestTime,
		},
		{
			ID:         "doc-2",
			Title:      "2024 W-2",
			Type:       domain.DocTypeTax,
			SizeBytes:  1024,
			WordCount:  210,
			ChunkCount: 4,
			CreatedAt:  testIngestTime,
			UpdatedAt:  testIngestTime,
		},
	}
	if typeFilter == "" {
		return docs, nil
	}
	filtered := make([]domain.Document, 0, len(docs))
	for _, doc := range docs {
		if doc.Type == typeFilter {
			filtered = append(filtered, doc)
		}
	}
	return filtered, nil
}

func (m *mockDocumentService) Get(_ context.Context, documentID string) (*domain.Document, error) {
	return &domain.Document{
		ID:          documentID,
		Title:       "March Statement",
		Type:        domain.DocTypeBankStatement,
		ContentHash: "9f86d081884c7d65",
		SizeBytes:   4096,
		WordCount:   840,
		ChunkCount:  12,
		CreatedAt:   testIngestTime,
		UpdatedAt:   testIngestTime,
	}, nil
}

func (m *mockDocumentService) GetContent(_ context.Context, _ string) (string, error) {
	return "This is the reassembled document text.", nil
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return nil
}

type mockDocumentServiceEmpty struct {
	mockDocumentService
}

func (m *mockDocumentServiceEmpty) List(
	_ context.Context, _ domain.DocumentType,
) ([]domain.Document, error) {
	return []domain.Document{}, nil
}

type mockDocumentServiceError struct{}

func (m *mockDocumentServiceError) List(
	_ context.Context, _ domain.DocumentType,
) ([]domain.Document, error) {
	return nil, errors.New("database unavailable")
}

func (m *mockDocumentServiceError) Get(_ context.Context, _ string) (*domain.Document, error) {
	return nil, errors.New("database unavailable")
}

func (m *mockDocumentServiceError) GetContent(_ context.Context, _ string) (string, error) {
	return "", errors.New("database unavailable")
}

func (m *mockDocumentServiceError) Delete(_ context.Context, _ string) error {
	return errors.New("database unavailable")
}

// History

type mockHistoryService struct {
	RecordFunc func(ctx context.Context, query string, result *domain.QueryResult) error
	RecentFunc func(ctx context.Context, limit int) ([]domain.QueryRecord, error)
}

func (m *mockHistoryService) Record(
	ctx context.Context, query string, result *domain.QueryResult,
) error {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, query, result)
	}
	return nil
}

func (m *mockHistoryService) Recent(ctx context.Context, limit int) ([]domain.QueryRecord, error) {
	if m.RecentFunc != nil {
		return m.RecentFunc(ctx, limit)
	}
	return []domain.QueryRecord{
		{
			ID:           "rec-1",
			Query:        "How much did I spend on groceries?",
			Answer:       "Total grocery spending in March was 420.00 [1].",
			TopScore:     0.91,
			ResultCount:  2,
			ProcessingMs: 1200,
			CreatedAt:    testIngestTime,
		},
		{
			ID:           "rec-2",
			Query:        "What was my closing balance?",
			Answer:       "The closing balance on March 31 was 1,250.75 [1].",
			TopScore:     0.88,
			ResultCount:  1,
			ProcessingMs: 950,
			CreatedAt:    testIngestTime.Add(-time.Hour),
		},
	}, nil
}

func (m *mockHistoryService) Analytics(_ context.Context) (*domain.Analytics, error) {
	return &domain.Analytics{
		TotalDocuments: 4,
		DocumentsByType: map[domain.DocumentType]int{
			domain.DocTypeBankStatement: 2,
			domain.DocTypeInvestment:    1,
			domain.DocTypeTax:           1,
		},
		TotalChunks:     48,
		TotalQueries:    12,
		AvgProcessingMs: 850,
		RecentQueries: []domain.QueryRecord{
			{
				Query:     "How much did I spend on groceries?",
				CreatedAt: testIngestTime,
			},
		},
	}, nil
}

type mockHistoryServiceEmpty struct {
	mockHistoryService
}

func (m *mockHistoryServiceEmpty) Recent(
	_ context.Context, _ int,
) ([]domain.QueryRecord, error) {
	return []domain.QueryRecord{}, nil
}

func (m *mockHistoryServiceEmpty) Analytics(_ context.Context) (*domain.Analytics, error) {
	return &domain.Analytics{}, nil
}

type mockHistoryServiceError struct{}

func (m *mockHistoryServiceError) Record(
	_ context.Context, _ string, _ *domain.QueryResult,
) error {
	return errors.New("database unavailable")
}

func (m *mockHistoryServiceError) Recent(
	_ context.Context, _ int,
) ([]domain.QueryRecord, error) {
	return nil, errors.New("database unavailable")
}

func (m *mockHistoryServiceError) Analytics(_ context.Context) (*domain.Analytics, error) {
	return nil, errors.New("database unavailable")
}

// Analysis

type mockAnalysisService struct {
	AnalyzeTrendsFunc   func(ctx context.Context, documentIDs []string) (string, error)
	ExtractEntitiesFunc func(ctx context.Context, text string) (*domain.EntityExtraction, error)
}

func (m *mockAnalysisService) AnalyzeTrends(
	ctx context.Context, documentIDs []string,
) (string, error) {
	if m.AnalyzeTrendsFunc != nil {
		return m.AnalyzeTrendsFunc(ctx, documentIDs)
	}
	return "Spending increased 12% month over month, driven by groceries.", nil
}

func (m *mockAnalysisService) ExtractEntities(
	ctx context.Context, text string,
) (*domain.EntityExtraction, error) {
	if m.ExtractEntitiesFunc != nil {
		return m.ExtractEntitiesFunc(ctx, text)
	}
	return &domain.EntityExtraction{
		Entities: map[string][]string{
			"amounts":      {"420.00", "1,250.75"},
			"dates":        {"2025-03-01"},
			"institutions": {"First National Bank"},
		},
	}, nil
}

type mockAnalysisServiceError struct{}

func (m *mockAnalysisServiceError) AnalyzeTrends(
	_ context.Context, _ []string,
) (string, error) {
	return "", errors.New("no completion provider configured")
}

func (m *mockAnalysisServiceError) ExtractEntities(
	_ context.Context, _ string,
) (*domain.EntityExtraction, error) {
	return nil, errors.New("no completion provider configured")
}

// Normalisers

type mockNormaliserRegistry struct{}

func (m *mockNormaliserRegistry) Normalise(
	_ context.Context, raw *domain.RawDocument,
) (*driven.NormaliseResult, error) {
	base := filepath.Base(raw.URI)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	return &driven.NormaliseResult{
		Title: title,
		Text:  string(raw.Content),
	}, nil
}

func (m *mockNormaliserRegistry) Register(_ driven.Normaliser) {}

func (m *mockNormaliserRegistry) SupportedMIMETypes() []string {
	return []string{"text/plain"}
}
