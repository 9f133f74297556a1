package domain

import "time"

// QueryOptions configures a retrieval-augmented query.
type QueryOptions struct {
	// TopK is the maximum number of chunks to ground the answer on.
	TopK int

	// MinScore is the similarity threshold in [0,1]; candidates below
	// it are discarded. Zero means use the configured default.
	MinScore float64

	// TypeFilter restricts retrieval to documents of one type.
	// Empty means all types.
	TypeFilter DocumentType
}

// RankedChunk is a retrieval candidate with its similarity score and
// the owning document's citation metadata.
type RankedChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Document is the owning document.
	Document Document

	// Score is the similarity in [0,1], higher meaning more relevant.
	Score float64
}

// Citation points a generated answer back at its grounding material.
type Citation struct {
	// DocumentTitle is the source document title.
	DocumentTitle string

	// DocumentType is the source document classification.
	DocumentType DocumentType

	// Score is the similarity of the cited chunk in [0,1].
	Score float64

	// Excerpt is a fixed-length prefix of the cited chunk text.
	Excerpt string
}

// QueryResult is the assembled outcome of one query.
// The core emits it; persisting it for history is the caller's concern.
type QueryResult struct {
	// Answer is the generated, grounded answer text.
	Answer string

	// Citations list the chunks the answer is grounded on, best first.
	// Empty when no chunk cleared the similarity threshold.
	Citations []Citation

	// ProcessingTime is wall-clock time from query receipt to assembly.
	ProcessingTime time.Duration
}

// TopScore returns the best citation score, or zero without citations.
func (r *QueryResult) TopScore() float64 {
	if len(r.Citations) == 0 {
		return 0
	}
	return r.Citations[0].Score
}

// QueryRecord is one persisted query history entry.
type QueryRecord struct {
	// ID is the unique record identifier (UUID).
	ID string

	// Query is the user's question text.
	Query string

	// Answer is the generated answer.
	Answer string

	// TopScore is the best citation similarity, zero for no results.
	TopScore float64

	// ResultCount is the number of citations returned.
	ResultCount int

	// ProcessingMs is the query latency in milliseconds.
	ProcessingMs int64

	// CreatedAt is when the query was answered.
	CreatedAt time.Time
}

// Analytics aggregates corpus and usage statistics.
type Analytics struct {
	// TotalDocuments is the number of ingested documents.
	TotalDocuments int

	// DocumentsByType counts documents per classification.
	DocumentsByType map[DocumentType]int

	// TotalChunks is the number of stored chunks.
	TotalChunks int

	// TotalQueries is the number of recorded queries.
	TotalQueries int

	// AvgProcessingMs is the mean query latency in milliseconds.
	AvgProcessingMs float64

	// RecentQueries holds the most recent query records, newest first.
	RecentQueries []QueryRecord
}

// EntityExtraction is the outcome of LLM entity extraction over text.
type EntityExtraction struct {
	// Entities maps category (amounts, dates, accounts, institutions,
	// categories) to extracted values. Nil when parsing failed.
	Entities map[string][]string

	// Raw is the unparsed provider output, kept when it was not the
	// strict JSON the prompt asked for.
	Raw string
}
