package mcp

import (
	"context"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driving"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	result *domain.QueryResult
	err    error
}

func (m *mockQueryService) Query(
	_ context.Context,
	_ string,
	_ domain.QueryOptions,
) (*domain.QueryResult, error) {
	return m.result, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result *driving.IngestResult
	err    error
}

func (m *mockIngestService) Ingest(_ context.Context, _ driving.IngestRequest) (*driving.IngestResult, error) {
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

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}
