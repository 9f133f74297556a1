package driven

import (
	"context"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

// Normaliser extracts plain text from raw file bytes ahead of ingestion.
// Each normaliser handles specific MIME types (e.g., Markdown, CSV).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Specific normalisers should return 50-89,
	// fallback normalisers 1-9.
	Priority() int

	// Normalise transforms raw bytes into intake-ready text.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Note: Normalisation only produces title and text.
// Segmentation happens later in the processing pipeline.
type NormaliseResult struct {
	// Title is the extracted or derived document title.
	Title string

	// Text is the extracted plain text.
	Text string
}
