package driving

import (
	"context"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

// DocumentService manages ingested documents.
type DocumentService interface {
	// List returns documents, optionally filtered by type, newest first.
	List(ctx context.Context, typeFilter domain.DocumentType) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// GetContent returns the document text reassembled from its chunks,
	// overlap removed.
	GetContent(ctx context.Context, documentID string) (string, error)

	// Delete removes a document and all its chunks.
	Delete(ctx context.Context, documentID string) error
}
