package api

import (
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the REST server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers questions grounded in the document corpus.
	Query driving.QueryService

	// Ingest adds documents to the corpus.
	Ingest driving.IngestService

	// Documents manages ingested documents.
	Documents driving.DocumentService

	// History records answered queries and aggregates statistics.
	History driving.HistoryService

	// Analysis provides LLM analysis operations.
	Analysis driving.AnalysisService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	// The remaining ports are optional; their routes answer 503
	return nil
}
