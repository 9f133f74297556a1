package driven

import (
	"context"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

// VectorIndex persists chunk vectors and answers similarity queries.
// Writes are atomic per document: either every chunk becomes visible to
// search or none does. Reads always see the last committed state.
type VectorIndex interface {
	// UpsertDocument stores a document and all its chunk vectors as one
	// atomic unit, replacing any chunks a prior ingestion wrote for the
	// same document ID. A mid-write failure rolls the whole unit back.
	// Vectors whose length differs from the configured dimension fail
	// with domain.ErrDimensionMismatch and nothing is written.
	UpsertDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error

	// DeleteDocument atomically removes a document and all its chunks.
	DeleteDocument(ctx context.Context, documentID string) error

	// Search returns up to k chunks ranked by similarity to the query
	// vector, optionally restricted to documents of the given type.
	// Pass domain.DocumentType("") for no filter. A query vector of the
	// wrong dimension fails with domain.ErrDimensionMismatch.
	Search(ctx context.Context, query []float32, k int, typeFilter domain.DocumentType) ([]VectorHit, error)

	// Dimensions returns the configured embedding dimension.
	Dimensions() int

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocumentID is the chunk's owning document.
	DocumentID string

	// Similarity is the cosine similarity mapped to [0,1], higher = closer.
	Similarity float64
}
