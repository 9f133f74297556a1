package driving

import (
	"context"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

// IngestService turns raw document text into stored, searchable chunks.
type IngestService interface {
	// Ingest validates, segments, embeds, and stores one document as a
	// single atomic unit. Identical content (by hash) fails with
	// domain.ErrDuplicateDocument; a concurrent ingest of the same
	// document fails with domain.ErrIngestInProgress.
	Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error)

	// Reingest replaces an existing document's chunks with freshly
	// segmented and embedded ones, atomically.
	Reingest(ctx context.Context, documentID string, text string) (*IngestResult, error)
}

// IngestRequest describes one document to ingest.
type IngestRequest struct {
	// Title is the human-readable document title.
	Title string

	// Type classifies the document. Empty or unknown triggers keyword
	// detection, then LLM classification when a provider is configured.
	Type domain.DocumentType

	// Text is the extracted plain text. Empty text ingests successfully
	// with zero chunks.
	Text string
}

// IngestResult reports a completed ingestion.
type IngestResult struct {
	// Document is the stored document with final metadata.
	Document *domain.Document

	// ChunkCount is the number of chunks written. Zero for empty text.
	ChunkCount int
}
