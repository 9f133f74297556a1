// Package chunker provides a fixed-size text segmentation processor.
package chunker

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of bytes per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping bytes.
const DefaultChunkOverlap = 200

// minLookback bounds how far the processor searches backwards for a
// natural break before falling back to a hard cut.
const minLookback = 16

// Processor splits document text into overlapping chunks, preferring
// sentence and whitespace boundaries over mid-word cuts.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in bytes.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between consecutive chunks in bytes.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a new chunker processor with the given options.
// It returns domain.ErrInvalidConfig when the chunk size is not positive,
// the overlap is negative, or the overlap is not smaller than the chunk size.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidConfig, p.chunkSize)
	}
	if p.overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", domain.ErrInvalidConfig, p.overlap)
	}
	if p.overlap >= p.chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", domain.ErrInvalidConfig, p.overlap, p.chunkSize)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document text into chunks. Input chunks are ignored;
// this processor creates new chunks from the text.
//
// Every byte of the input is covered by at least one chunk, and each chunk
// begins exactly overlap bytes before the previous chunk's end, so stripping
// the overlap from every chunk after the first reconstructs the input.
func (p *Processor) Process(_ context.Context, doc *domain.Document, text string, _ []domain.Chunk) ([]domain.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		// Empty content produces no chunks
		return nil, nil
	}

	estimated := (len(text) / (p.chunkSize - p.overlap)) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	start := 0
	ordinal := 0

	for {
		if start+p.chunkSize >= len(text) {
			// Final chunk takes the remainder, no boundary search.
			chunks = append(chunks, p.newChunk(doc, ordinal, text[start:]))
			break
		}

		end := p.cutPoint(text, start)
		chunks = append(chunks, p.newChunk(doc, ordinal, text[start:end]))
		ordinal++

		start = end - p.overlap
	}

	return chunks, nil
}

func (p *Processor) newChunk(doc *domain.Document, ordinal int, content string) domain.Chunk {
	overlap := 0
	if ordinal > 0 {
		overlap = p.overlap
	}
	return domain.Chunk{
		ID:         uuid.New().String(),
		DocumentID: doc.ID,
		Ordinal:    ordinal,
		Content:    content,
		Overlap:    overlap,
		WordCount:  domain.CountWords(content),
	}
}

// cutPoint returns the exclusive end of the chunk starting at start.
// It searches backwards from start+chunkSize for a sentence end, then for
// any whitespace, and hard-cuts when neither appears within the lookback
// window. The result always exceeds start+overlap so the next chunk makes
// progress.
func (p *Processor) cutPoint(text string, start int) int {
	tentative := start + p.chunkSize

	lookback := p.chunkSize / 6
	if lookback < minLookback {
		lookback = minLookback
	}

	floor := tentative - lookback
	if min := start + p.overlap + 1; floor < min {
		floor = min
	}

	for j := tentative - 1; j >= floor; j-- {
		if isSentenceEnd(text, j) {
			return j + 1
		}
	}

	for j := tentative - 1; j >= floor; j-- {
		if isSpace(text[j]) {
			return j
		}
	}

	return tentative
}

// isSentenceEnd reports whether the byte at j terminates a sentence:
// a newline, or '.', '!', '?' followed by whitespace.
func isSentenceEnd(text string, j int) bool {
	switch text[j] {
	case '\n':
		return true
	case '.', '!', '?':
		return j+1 < len(text) && isSpace(text[j+1])
	default:
		return false
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
