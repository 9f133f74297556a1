package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driving"
	"github.com/finsight-labs/finsight-cli/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService orchestrates the query pipeline: embed the question,
// retrieve ranked chunks, synthesize a grounded answer. Retries live in
// the provider adapters; this service never retries across stages.
type QueryService struct {
	retrieval *RetrievalService
	synthesis *SynthesisService
	defaults  domain.RetrievalSettings
}

// NewQueryService creates a new query service.
// Zero fields in defaults fall back to the application defaults.
func NewQueryService(retrieval *RetrievalService, synthesis *SynthesisService, defaults domain.RetrievalSettings) *QueryService {
	base := domain.DefaultAppSettings().Retrieval
	if defaults.TopK <= 0 {
		defaults.TopK = base.TopK
	}
	if defaults.MinScore <= 0 {
		defaults.MinScore = base.MinScore
	}
	if defaults.QueryTimeout <= 0 {
		defaults.QueryTimeout = base.QueryTimeout
	}

	return &QueryService{
		retrieval: retrieval,
		synthesis: synthesis,
		defaults:  defaults,
	}
}

// Query answers a natural-language question grounded in the ingested
// documents. ProcessingTime covers receipt to result assembly. The whole
// pipeline runs under the configured deadline; exceeding it cancels
// in-flight provider calls and fails with domain.ErrQueryTimeout.
func (s *QueryService) Query(ctx context.Context, text string, opts domain.QueryOptions) (*domain.QueryResult, error) {
	start := time.Now()

	logger.Section("Query Execution")
	logger.Debug("Question: %d chars", len(text))

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: question text is empty", domain.ErrInvalidInput)
	}

	if opts.TopK <= 0 {
		opts.TopK = s.defaults.TopK
	}
	if opts.MinScore <= 0 {
		opts.MinScore = s.defaults.MinScore
	}
	logger.Debug("TopK: %d, MinScore: %.2f, TypeFilter: %q", opts.TopK, opts.MinScore, opts.TypeFilter)

	ctx, cancel := context.WithTimeout(ctx, s.defaults.QueryTimeout)
	defer cancel()

	chunks, err := s.retrieval.Retrieve(ctx, text, opts.TopK, opts.MinScore, opts.TypeFilter)
	if err != nil {
		return nil, s.wrapTimeout(err, "retrieval")
	}

	answer, citations, err := s.synthesis.Synthesize(ctx, text, chunks)
	if err != nil {
		return nil, s.wrapTimeout(err, "synthesis")
	}

	result := &domain.QueryResult{
		Answer:         answer,
		Citations:      citations,
		ProcessingTime: time.Since(start),
	}

	logger.Info("Query answered: %d citations in %s", len(result.Citations), result.ProcessingTime.Round(time.Millisecond))
	return result, nil
}

// wrapTimeout converts a deadline expiry into the query timeout error;
// other failures propagate unchanged.
func (s *QueryService) wrapTimeout(err error, stage string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		logger.Warn("Query deadline of %s exceeded during %s", s.defaults.QueryTimeout, stage)
		return fmt.Errorf("%w: %s exceeded the %s deadline", domain.ErrQueryTimeout, stage, s.defaults.QueryTimeout)
	}
	return err
}
