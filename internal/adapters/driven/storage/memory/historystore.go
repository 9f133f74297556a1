package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
)

// historyStore wraps Store to implement driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

// SaveRecord stores a completed query record.
func (h *historyStore) SaveRecord(_ context.Context, record *domain.QueryRecord) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("%w: record ID is required", domain.ErrInvalidInput)
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.store.history = append(h.store.history, *record)
	return nil
}

// Recent returns the most recent records, newest first.
func (h *historyStore) Recent(_ context.Context, limit int) ([]domain.QueryRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	h.store.mu.RLock()
	defer h.store.mu.RUnlock()

	// Reverse insertion order so later saves win CreatedAt ties
	records := make([]domain.QueryRecord, 0, len(h.store.history))
	for i := len(h.store.history) - 1; i >= 0; i-- {
		records = append(records, h.store.history[i])
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Count returns the total number of recorded queries.
func (h *historyStore) Count(_ context.Context) (int, error) {
	h.store.mu.RLock()
	defer h.store.mu.RUnlock()
	return len(h.store.history), nil
}

// AvgProcessingMs returns the mean query latency in milliseconds.
func (h *historyStore) AvgProcessingMs(_ context.Context) (float64, error) {
	h.store.mu.RLock()
	defer h.store.mu.RUnlock()

	if len(h.store.history) == 0 {
		return 0, nil
	}

	var total int64
	for i := range h.store.history {
		total += h.store.history[i].ProcessingMs
	}
	return float64(total) / float64(len(h.store.history)), nil
}
