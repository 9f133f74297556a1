package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsight-cli/internal/logger"
)

// RetrievalService finds the chunks most relevant to a question.
// It embeds the query, asks the vector index for a candidate superset,
// hydrates chunks and documents from the store, and applies the score
// threshold before truncating to the requested size.
type RetrievalService struct {
	embeddingService driven.EmbeddingService
	vectorIndex      driven.VectorIndex
	docStore         driven.DocumentStore
}

// NewRetrievalService creates a new retrieval service.
// All dependencies are required.
func NewRetrievalService(
	embeddingService driven.EmbeddingService,
	vectorIndex driven.VectorIndex,
	docStore driven.DocumentStore,
) *RetrievalService {
	return &RetrievalService{
		embeddingService: embeddingService,
		vectorIndex:      vectorIndex,
		docStore:         docStore,
	}
}

// Retrieve returns up to k chunks relevant to the query, best first.
// Candidates scoring below minScore are discarded; ties are broken by
// newer document, then by ascending chunk ordinal. An empty result means
// no chunk cleared the threshold and is not an error.
func (s *RetrievalService) Retrieve(
	ctx context.Context,
	query string,
	k int,
	minScore float64,
	typeFilter domain.DocumentType,
) ([]domain.RankedChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	logger.Debug("Generating query embedding (%d chars)...", len(query))
	queryVec, err := s.embeddingService.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil, fmt.Errorf("generate query embedding: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(queryVec))

	// Fetch a superset so the threshold cannot starve the final ranking.
	candidateK := k * 2
	if typeFilter != "" {
		candidateK = k * 3
	}

	hits, err := s.vectorIndex.Search(ctx, queryVec, candidateK, typeFilter)
	if err != nil {
		logger.Warn("Vector search failed: %v", err)
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Vector search: %d candidates (threshold %.2f)", len(hits), minScore)

	ranked, err := s.hydrate(ctx, hits, minScore)
	if err != nil {
		return nil, err
	}

	// Score descending; ties go to the newer document, then the earlier
	// chunk, so results are deterministic across runs.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if !ranked[i].Document.CreatedAt.Equal(ranked[j].Document.CreatedAt) {
			return ranked[i].Document.CreatedAt.After(ranked[j].Document.CreatedAt)
		}
		return ranked[i].Chunk.Ordinal < ranked[j].Chunk.Ordinal
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}

	logger.Debug("Retrieval: %d of %d candidates kept", len(ranked), len(hits))
	return ranked, nil
}

// hydrate loads chunk and document rows for hits at or above minScore.
// Hits whose chunk or document vanished under a concurrent delete are
// skipped rather than failing the whole retrieval.
func (s *RetrievalService) hydrate(ctx context.Context, hits []driven.VectorHit, minScore float64) ([]domain.RankedChunk, error) {
	ranked := make([]domain.RankedChunk, 0, len(hits))
	docs := make(map[string]*domain.Document)

	for _, hit := range hits {
		if hit.Similarity < minScore {
			continue
		}

		chunk, err := s.docStore.GetChunk(ctx, hit.ChunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				logger.Debug("Chunk %s disappeared during retrieval, skipping", hit.ChunkID)
				continue
			}
			return nil, fmt.Errorf("load chunk: %w", err)
		}

		doc, ok := docs[hit.DocumentID]
		if !ok {
			doc, err = s.docStore.GetDocument(ctx, hit.DocumentID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					logger.Debug("Document %s disappeared during retrieval, skipping", hit.DocumentID)
					continue
				}
				return nil, fmt.Errorf("load document: %w", err)
			}
			docs[hit.DocumentID] = doc
		}

		ranked = append(ranked, domain.RankedChunk{
			Chunk:    *chunk,
			Document: *doc,
			Score:    hit.Similarity,
		})
	}

	return ranked, nil
}
