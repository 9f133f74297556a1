package driving

import (
	"context"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

// AnalysisService provides LLM analysis beyond grounded question answering.
// Requires a configured completion provider; operations fail with
// domain.ErrLLMUnavailable otherwise.
type AnalysisService interface {
	// AnalyzeTrends examines the given documents for financial trends,
	// recurring patterns, and notable changes.
	AnalyzeTrends(ctx context.Context, documentIDs []string) (string, error)

	// ExtractEntities pulls amounts, dates, accounts, institutions, and
	// categories out of free-form text.
	ExtractEntities(ctx context.Context, text string) (*domain.EntityExtraction, error)
}
