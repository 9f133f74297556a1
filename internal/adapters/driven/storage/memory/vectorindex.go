package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
)

// vectorIndex wraps Store to implement driven.VectorIndex.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// UpsertDocument stores a document and its chunks as one unit, replacing
// any chunks a prior ingestion wrote for the same document ID.
func (v *vectorIndex) UpsertDocument(_ context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document ID is required", domain.ErrInvalidInput)
	}

	if v.store.dimensions > 0 {
		for i := range chunks {
			if got := len(chunks[i].Embedding); got != v.store.dimensions {
				return fmt.Errorf("%w: chunk %d has %d dimensions, store expects %d",
					domain.ErrDimensionMismatch, chunks[i].Ordinal, got, v.store.dimensions)
			}
		}
	}

	v.store.mu.Lock()
	defer v.store.mu.Unlock()

	// Identical content under a different ID is a duplicate
	for id := range v.store.documents {
		if id != doc.ID && v.store.documents[id].ContentHash == doc.ContentHash {
			return fmt.Errorf("%w: identical content already ingested", domain.ErrDuplicateDocument)
		}
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	doc.ChunkCount = len(chunks)

	v.store.documents[doc.ID] = *doc

	stored := make([]domain.Chunk, len(chunks))
	copy(stored, chunks)
	v.store.chunks[doc.ID] = stored

	return nil
}

// DeleteDocument atomically removes a document and all its chunks.
func (v *vectorIndex) DeleteDocument(_ context.Context, documentID string) error {
	return v.store.deleteDocument(documentID)
}

// Search scores every stored chunk against the query vector and returns
// the top k. Ties are broken by newer document, then by chunk ordinal.
func (v *vectorIndex) Search(_ context.Context, query []float32, k int, typeFilter domain.DocumentType) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}
	if v.store.dimensions > 0 && len(query) != v.store.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, store expects %d",
			domain.ErrDimensionMismatch, len(query), v.store.dimensions)
	}

	v.store.mu.RLock()
	defer v.store.mu.RUnlock()

	type candidate struct {
		hit       driven.VectorHit
		ordinal   int
		createdAt time.Time
	}

	var candidates []candidate //nolint:prealloc
	for docID, chunks := range v.store.chunks {
		doc, ok := v.store.documents[docID]
		if !ok {
			continue
		}
		if typeFilter != "" && doc.Type != typeFilter {
			continue
		}
		for i := range chunks {
			candidates = append(candidates, candidate{
				hit: driven.VectorHit{
					ChunkID:    chunks[i].ID,
					DocumentID: docID,
					Similarity: domain.SimilarityScore(query, chunks[i].Embedding),
				},
				ordinal:   chunks[i].Ordinal,
				createdAt: doc.CreatedAt,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].hit.Similarity != candidates[j].hit.Similarity {
			return candidates[i].hit.Similarity > candidates[j].hit.Similarity
		}
		if !candidates[i].createdAt.Equal(candidates[j].createdAt) {
			return candidates[i].createdAt.After(candidates[j].createdAt)
		}
		return candidates[i].ordinal < candidates[j].ordinal
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}

	hits := make([]driven.VectorHit, len(candidates))
	for i, c := range candidates {
		hits[i] = c.hit
	}

	return hits, nil
}

// Dimensions returns the configured embedding dimension.
func (v *vectorIndex) Dimensions() int {
	return v.store.dimensions
}

// Close is a no-op.
func (v *vectorIndex) Close() error {
	return nil
}
