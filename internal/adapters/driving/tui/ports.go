// Package tui provides an interactive terminal user interface for finsight.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers questions against the ingested corpus.
	Query driving.QueryService

	// History records answered questions. Optional; when nil, answers
	// are simply not recorded.
	History driving.HistoryService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(query driving.QueryService, history driving.HistoryService) *Ports {
	return &Ports{
		Query:   query,
		History: history,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
