package driven

import (
	"context"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

// DocumentStore reads document and chunk metadata.
// Writes go through VectorIndex.UpsertDocument so that document rows and
// chunk vectors commit in one transaction; this port serves lookups,
// listings, dedup checks, and deletion.
type DocumentStore interface {
	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetDocumentByHash retrieves a document by content hash.
	// Used for dedup: identical text never creates a second document.
	GetDocumentByHash(ctx context.Context, contentHash string) (*domain.Document, error)

	// GetChunks retrieves all chunks for a document, ordered by ordinal.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// ListDocuments returns documents, optionally filtered by type.
	// Pass domain.DocumentType("") for all types. Newest first.
	ListDocuments(ctx context.Context, typeFilter domain.DocumentType) ([]domain.Document, error)

	// DeleteDocument removes a document and its chunks atomically.
	DeleteDocument(ctx context.Context, id string) error

	// CountChunks returns the total number of stored chunks.
	CountChunks(ctx context.Context) (int, error)

	// CountDocumentsByType returns per-type document counts.
	CountDocumentsByType(ctx context.Context) (map[domain.DocumentType]int, error)
}
