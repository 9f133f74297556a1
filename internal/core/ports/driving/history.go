package driving

import (
	"context"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

// HistoryService records answered queries and aggregates usage statistics.
// Recording is the driving layer's responsibility: the query core emits a
// QueryResult and never persists it itself.
type HistoryService interface {
	// Record persists one answered query.
	Record(ctx context.Context, query string, result *domain.QueryResult) error

	// Recent returns the most recent query records, newest first.
	Recent(ctx context.Context, limit int) ([]domain.QueryRecord, error)

	// Analytics aggregates corpus and usage statistics.
	Analytics(ctx context.Context) (*domain.Analytics, error)
}
