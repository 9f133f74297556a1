package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

// MockQueryService implements driving.QueryService for testing.
type MockQueryService struct {
	QueryFunc func(
		ctx context.Context, text string, opts domain.QueryOptions,
	) (*domain.QueryResult, error)
}

func (m *MockQueryService) Query(
	ctx context.Context, text string, opts domain.QueryOptions,
) (*domain.QueryResult, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, text, opts)
	}
	return &domain.QueryResult{}, nil
}

// MockHistoryService implements driving.HistoryService for testing.
type MockHistoryService struct {
	RecordFunc    func(ctx context.Context, query string, result *domain.QueryResult) error
	RecentFunc    func(ctx context.Context, limit int) ([]domain.QueryRecord, error)
	AnalyticsFunc func(ctx context.Context) (*domain.Analytics, error)
}

func (m *MockHistoryService) Record(ctx context.Context, query string, result *domain.QueryResult) error {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, query, result)
	}
	return nil
}

func (m *MockHistoryService) Recent(ctx context.Context, limit int) ([]domain.QueryRecord, error) {
	if m.RecentFunc != nil {
		return m.RecentFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockHistoryService) Analytics(ctx context.Context) (*domain.Analytics, error) {
	if m.AnalyticsFunc != nil {
		return m.AnalyticsFunc(ctx)
	}
	return nil, nil
}

func TestNewPorts(t *testing.T) {
	query := &MockQueryService{}
	history := &MockHistoryService{}

	ports := NewPorts(query, history)

	require.NotNil(t, ports)
	assert.Equal(t, query, ports.Query)
	assert.Equal(t, history, ports.History)
}

func TestNewPorts_NilHistory(t *testing.T) {
	ports := NewPorts(&MockQueryService{}, nil)

	require.NotNil(t, ports)
	assert.Nil(t, ports.History)
	assert.NoError(t, ports.Validate())
}

func TestPorts_Validate_AllSet(t *testing.T) {
	ports := &Ports{
		Query:   &MockQueryService{},
		History: &MockHistoryService{},
	}

	err := ports.Validate()

	assert.NoError(t, err)
}

func TestPorts_Validate_MissingQuery(t *testing.T) {
	ports := &Ports{
		Query:   nil,
		History: &MockHistoryService{},
	}

	err := ports.Validate()

	assert.ErrorIs(t, err, ErrMissingQueryService)
}
