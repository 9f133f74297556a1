package mcp

import (
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers questions grounded in the document corpus.
	Query driving.QueryService

	// Ingest adds documents to the corpus.
	Ingest driving.IngestService

	// Documents manages ingested documents.
	Documents driving.DocumentService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	// Ingest and Documents are optional; their tools report unavailable
	return nil
}
