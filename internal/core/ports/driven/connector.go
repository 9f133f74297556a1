package driven

import (
	"context"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

// Connector picks up raw document files for ingestion.
// The filesystem connector is the only built-in implementation; the
// interface keeps the ingest pipeline independent of where files come from.
type Connector interface {
	// Type returns the connector type identifier.
	Type() string

	// Validate checks the connector is properly configured.
	// For filesystem, this checks the path exists and is readable.
	Validate(ctx context.Context) error

	// Scan fetches all eligible documents from the source.
	// Returns channels for documents and errors; both close when done.
	Scan(ctx context.Context) (<-chan domain.RawDocument, <-chan error)

	// Watch listens for file changes until ctx is cancelled.
	Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error)

	// Close releases resources.
	Close() error
}
