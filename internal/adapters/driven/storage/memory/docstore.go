package memory

import (
	"context"
	"sort"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
)

// documentStore wraps Store to implement driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// GetDocument retrieves a document by ID.
func (d *documentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()

	doc, ok := d.store.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetDocumentByHash retrieves a document by content hash.
func (d *documentStore) GetDocumentByHash(_ context.Context, contentHash string) (*domain.Document, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()

	for id := range d.store.documents {
		if d.store.documents[id].ContentHash == contentHash {
			doc := d.store.documents[id]
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

// GetChunks retrieves all chunks for a document, ordered by ordinal.
func (d *documentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()

	chunks := d.store.chunks[documentID]
	if len(chunks) == 0 {
		return nil, nil
	}

	out := make([]domain.Chunk, len(chunks))
	copy(out, chunks)
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out, nil
}

// GetChunk retrieves a specific chunk by ID.
func (d *documentStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()

	for _, chunks := range d.store.chunks {
		for i := range chunks {
			if chunks[i].ID == id {
				chunk := chunks[i]
				return &chunk, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

// ListDocuments returns documents, optionally filtered by type, newest first.
func (d *documentStore) ListDocuments(_ context.Context, typeFilter domain.DocumentType) ([]domain.Document, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()

	var docs []domain.Document //nolint:prealloc
	for id := range d.store.documents {
		doc := d.store.documents[id]
		if typeFilter != "" && doc.Type != typeFilter {
			continue
		}
		docs = append(docs, doc)
	}

	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})

	return docs, nil
}

// DeleteDocument removes a document and its chunks atomically.
func (d *documentStore) DeleteDocument(_ context.Context, id string) error {
	return d.store.deleteDocument(id)
}

// CountChunks returns the total number of stored chunks.
func (d *documentStore) CountChunks(_ context.Context) (int, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()

	total := 0
	for _, chunks := range d.store.chunks {
		total += len(chunks)
	}
	return total, nil
}

// CountDocumentsByType returns per-type document counts.
func (d *documentStore) CountDocumentsByType(_ context.Context) (map[domain.DocumentType]int, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()

	counts := make(map[domain.DocumentType]int)
	for id := range d.store.documents {
		counts[d.store.documents[id].Type]++
	}
	return counts, nil
}
