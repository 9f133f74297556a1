package driven

import (
	"context"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

// PostProcessor turns document text into chunks, or transforms chunks.
// PostProcessors are chained in a pipeline (e.g., chunking, cleaning).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes document text and returns chunks.
	// If the processor creates chunks (e.g., chunker), it receives nil and
	// returns new chunks. If it modifies chunks, it receives and returns them.
	// Chunk ordinals must remain contiguous from 0.
	Process(ctx context.Context, doc *domain.Document, text string, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document text through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, doc *domain.Document, text string) ([]domain.Chunk, error)
}
