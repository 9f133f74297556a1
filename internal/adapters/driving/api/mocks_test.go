package api

import (
	"context"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driving"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	result   *domain.QueryResult
	err      error
	lastOpts domain.QueryOptions
}

func (m *mockQueryService) Query(
	_ context.Context,
	_ string,
	opts domain.QueryOptions,
) (*domain.QueryResult, error) {
	m.lastOpts = opts
	return m.result, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result  *driving.IngestResult
	err     error
	lastReq driving.IngestRequest
}

func (m *mockIngestService) Ingest(_ context.Context, req driving.IngestRequest) (*driving.IngestResult, error) {
	m.lastReq = req
	return m.result, m.err
}

func (m *mockIngestService) Reingest(_ context.Context, _, _ string) (*driving.IngestResult, error) {
	return m.result, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	content   string
	err       error
	deletedID string
}

func (m *mockDocumentService) List(_ context.Context, _ domain.DocumentType) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) GetContent(_ context.Context, _ string) (string, error) {
	return m.content, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, id string) error {
	m.deletedID = id
	return m.err
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	records   []domain.QueryRecord
	analytics *domain.Analytics
	recorded  int
	err       error
}

func (m *mockHistoryService) Record(_ context.Context, _ string, _ *domain.QueryResult) error {
	m.recorded++
	return m.err
}

func (m *mockHistoryService) Recent(_ context.Context, _ int) ([]domain.QueryRecord, error) {
	return m.records, m.err
}

func (m *mockHistoryService) Analytics(_ context.Context) (*domain.Analytics, error) {
	return m.analytics, m.err
}

// mockAnalysisService is a mock implementation of driving.AnalysisService.
type mockAnalysisService struct {
	analysis   string
	extraction *domain.EntityExtraction
	err        error
}

func (m *mockAnalysisService) AnalyzeTrends(_ context.Context, _ []string) (string, error) {
	return m.analysis, m.err
}

func (m *mockAnalysisService) ExtractEntities(_ context.Context, _ string) (*domain.EntityExtraction, error) {
	return m.extraction, m.err
}
