package driving

import (
	"context"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

// QueryService answers natural-language questions grounded in the
// ingested documents.
type QueryService interface {
	// Query embeds the question, retrieves ranked chunks, and synthesizes
	// a grounded answer with citations. Zero-value options fall back to
	// configured defaults. Fails with domain.ErrQueryTimeout when the
	// overall deadline is exceeded.
	Query(ctx context.Context, text string, opts domain.QueryOptions) (*domain.QueryResult, error)
}
