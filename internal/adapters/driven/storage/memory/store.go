package memory

import (
	"sync"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
)

// Store is an in-memory counterpart of the SQLite store, used by service
// tests and ephemeral sessions that should not touch disk. The interface
// views share one guarded state, so a document upserted through
// VectorIndex is immediately visible to DocumentStore.
type Store struct {
	mu         sync.RWMutex
	dimensions int
	documents  map[string]domain.Document
	chunks     map[string][]domain.Chunk
	history    []domain.QueryRecord
}

// NewStore creates an empty in-memory store expecting embeddings of the
// given dimension; zero disables the check.
func NewStore(dimensions int) *Store {
	return &Store{
		dimensions: dimensions,
		documents:  make(map[string]domain.Document),
		chunks:     make(map[string][]domain.Chunk),
	}
}

// DocumentStore returns a DocumentStore backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// VectorIndex returns a VectorIndex backed by this store.
func (s *Store) VectorIndex() driven.VectorIndex {
	return &vectorIndex{store: s}
}

// HistoryStore returns a HistoryStore backed by this store.
func (s *Store) HistoryStore() driven.HistoryStore {
	return &historyStore{store: s}
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// deleteDocument removes a document and its chunks under the write lock.
func (s *Store) deleteDocument(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	delete(s.chunks, id)
	return nil
}
