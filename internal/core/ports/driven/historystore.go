package driven

import (
	"context"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

// HistoryStore persists query history for dashboards and analytics.
type HistoryStore interface {
	// SaveRecord stores a completed query record.
	SaveRecord(ctx context.Context, record *domain.QueryRecord) error

	// Recent returns the most recent records, newest first.
	Recent(ctx context.Context, limit int) ([]domain.QueryRecord, error)

	// Count returns the total number of recorded queries.
	Count(ctx context.Context) (int, error)

	// AvgProcessingMs returns the mean query latency in milliseconds,
	// zero when no queries are recorded.
	AvgProcessingMs(ctx context.Context) (float64, error)
}
