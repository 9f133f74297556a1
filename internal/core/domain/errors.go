package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates invalid component configuration,
	// e.g. a chunk overlap that is not smaller than the chunk size.
	// Raised at construction time and never retried.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrDuplicateDocument indicates content with an identical hash is
	// already ingested. The existing document is returned alongside.
	ErrDuplicateDocument = errors.New("duplicate document")

	// ErrIngestInProgress indicates an ingestion for the same document
	// is already running. Writes to one document never race.
	ErrIngestInProgress = errors.New("ingestion in progress")

	// ErrUnsupportedFormat indicates a file's format has no registered
	// normaliser. The file is skipped, not retried.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// Provider errors.

	// ErrEmbeddingUnavailable indicates the embedding provider kept
	// failing transiently until the retry budget was exhausted.
	// The whole operation is safe to retry later.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrEmbeddingRejected indicates the embedding provider permanently
	// refused the input. Never retried.
	ErrEmbeddingRejected = errors.New("embedding request rejected")

	// ErrGenerationUnavailable indicates the completion provider kept
	// failing transiently until the retry budget was exhausted.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrGenerationRejected indicates the completion provider permanently
	// refused the request. Never retried.
	ErrGenerationRejected = errors.New("generation request rejected")

	// ErrLLMUnavailable indicates no completion provider is configured.
	// Query synthesis and LLM classification are disabled without one.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Store errors.

	// ErrDimensionMismatch indicates a vector's dimension disagrees with
	// the store's configured dimension. Fatal for that write; the
	// ingesting document's transaction is aborted.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrQueryTimeout indicates the overall query deadline was exceeded.
	// In-flight provider calls are cancelled.
	ErrQueryTimeout = errors.New("query timed out")
)
