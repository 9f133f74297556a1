package services

import (
	"context"
	"strings"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages ingested documents.
type DocumentService struct {
	docStore driven.DocumentStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(docStore driven.DocumentStore) *DocumentService {
	return &DocumentService{docStore: docStore}
}

// List returns documents, optionally filtered by type, newest first.
func (s *DocumentService) List(ctx context.Context, typeFilter domain.DocumentType) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx, typeFilter)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, documentID)
}

// GetContent returns the document text reassembled from its chunks.
// An empty string for an existing document means it was ingested with
// empty text.
func (s *DocumentService) GetContent(ctx context.Context, documentID string) (string, error) {
	// Verify the document exists so an empty chunk set is not mistaken
	// for a missing document.
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return "", err
	}

	chunks, err := s.docStore.GetChunks(ctx, documentID)
	if err != nil {
		return "", err
	}

	return reassembleContent(chunks), nil
}

// Delete removes a document and all its chunks.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	return s.docStore.DeleteDocument(ctx, documentID)
}

// reassembleContent rebuilds the original document text from chunks in
// ordinal order, trimming each chunk's recorded overlap with its
// predecessor.
func reassembleContent(chunks []domain.Chunk) string {
	var b strings.Builder
	for _, chunk := range chunks {
		text := chunk.Content
		if chunk.Overlap > 0 && chunk.Overlap <= len(text) {
			text = text[chunk.Overlap:]
		}
		b.WriteString(text)
	}
	return b.String()
}
