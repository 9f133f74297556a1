package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driving"
)

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	Question string  `json:"question" jsonschema:"the question to answer from the financial documents"`
	TopK     int     `json:"top_k,omitempty" jsonschema:"maximum number of chunks to ground the answer on (default 5)"`
	MinScore float64 `json:"min_score,omitempty" jsonschema:"minimum similarity score between 0 and 1"`
	Type     string  `json:"type,omitempty" jsonschema:"restrict retrieval to one document type (bank_statement, credit_card, investment, tax)"`
}

// QueryOutput is the output schema for the query tool.
type QueryOutput struct {
	Answer    string           `json:"answer"`
	Citations []CitationOutput `json:"citations"`
	Count     int              `json:"count"`
}

// CitationOutput represents a single supporting citation.
type CitationOutput struct {
	DocumentTitle string  `json:"document_title"`
	DocumentType  string  `json:"document_type"`
	Score         float64 `json:"score"`
	Excerpt       string  `json:"excerpt"`
}

// IngestInput is the input schema for the ingest_document tool.
type IngestInput struct {
	Title string `json:"title" jsonschema:"title for the document"`
	Text  string `json:"text" jsonschema:"full text of the document"`
	Type  string `json:"type,omitempty" jsonschema:"document type; detected from the content when omitted"`
}

// IngestOutput is the output schema for the ingest_document tool.
type IngestOutput struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Type       string `json:"type"`
	ChunkCount int    `json:"chunk_count"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct {
	Type string `json:"type,omitempty" jsonschema:"filter by document type"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput represents a single ingested document.
type DocumentOutput struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Type       string `json:"type"`
	ChunkCount int    `json:"chunk_count"`
	WordCount  int    `json:"word_count"`
	CreatedAt  string `json:"created_at"`
}

// DeleteDocumentInput is the input schema for the delete_document tool.
type DeleteDocumentInput struct {
	DocumentID string `json:"document_id" jsonschema:"ID of the document to delete"`
}

// DeleteDocumentOutput is the output schema for the delete_document tool.
type DeleteDocumentOutput struct {
	DocumentID string `json:"document_id"`
	Deleted    bool   `json:"deleted"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query",
		Description: "Answer a question grounded in the ingested financial documents, with citations",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_document",
		Description: "Add a financial document to the local index",
	}, s.handleIngestDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the ingested financial documents",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_document",
		Description: "Remove a document and all its chunks from the index",
	}, s.handleDeleteDocument)
}

// handleQuery handles the query tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	opts := domain.QueryOptions{
		TopK:     input.TopK,
		MinScore: input.MinScore,
	}
	if input.Type != "" {
		docType, err := parseDocType(input.Type)
		if err != nil {
			return nil, QueryOutput{}, err
		}
		opts.TypeFilter = docType
	}

	result, err := s.ports.Query.Query(ctx, input.Question, opts)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	output := QueryOutput{
		Answer:    result.Answer,
		Citations: make([]CitationOutput, len(result.Citations)),
		Count:     len(result.Citations),
	}

	for i := range result.Citations {
		output.Citations[i] = CitationOutput{
			DocumentTitle: result.Citations[i].DocumentTitle,
			DocumentType:  result.Citations[i].DocumentType.String(),
			Score:         result.Citations[i].Score,
			Excerpt:       result.Citations[i].Excerpt,
		}
	}

	return nil, output, nil
}

// handleIngestDocument handles the ingest_document tool invocation.
func (s *Server) handleIngestDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Ingest == nil {
		return nil, IngestOutput{}, ErrIngestUnavailable
	}

	var docType domain.DocumentType
	if input.Type != "" {
		parsed, err := parseDocType(input.Type)
		if err != nil {
			return nil, IngestOutput{}, err
		}
		docType = parsed
	}

	result, err := s.ports.Ingest.Ingest(ctx, driving.IngestRequest{
		Title: input.Title,
		Type:  docType,
		Text:  input.Text,
	})
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{
		DocumentID: result.Document.ID,
		Title:      result.Document.Title,
		Type:       result.Document.Type.String(),
		ChunkCount: result.ChunkCount,
	}, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	if s.ports.Documents == nil {
		return nil, ListDocumentsOutput{}, ErrDocumentsUnavailable
	}

	var typeFilter domain.DocumentType
	if input.Type != "" {
		parsed, err := parseDocType(input.Type)
		if err != nil {
			return nil, ListDocumentsOutput{}, err
		}
		typeFilter = parsed
	}

	docs, err := s.ports.Documents.List(ctx, typeFilter)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}

	for i := range docs {
		output.Documents[i] = DocumentOutput{
			ID:         docs[i].ID,
			Title:      docs[i].Title,
			Type:       docs[i].Type.String(),
			ChunkCount: docs[i].ChunkCount,
			WordCount:  docs[i].WordCount,
			CreatedAt:  docs[i].CreatedAt.Format(time.RFC3339),
		}
	}

	return nil, output, nil
}

// handleDeleteDocument handles the delete_document tool invocation.
func (s *Server) handleDeleteDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteDocumentInput,
) (*mcp.CallToolResult, DeleteDocumentOutput, error) {
	if s.ports.Documents == nil {
		return nil, DeleteDocumentOutput{}, ErrDocumentsUnavailable
	}

	if err := s.ports.Documents.Delete(ctx, input.DocumentID); err != nil {
		return nil, DeleteDocumentOutput{}, err
	}

	return nil, DeleteDocumentOutput{
		DocumentID: input.DocumentID,
		Deleted:    true,
	}, nil
}

// parseDocType validates a document type supplied by the client.
func parseDocType(value string) (domain.DocumentType, error) {
	docType := domain.DocumentType(value)
	if !docType.IsValid() || docType == domain.DocTypeUnknown {
		return "", fmt.Errorf("%w: unknown document type %q", domain.ErrInvalidInput, value)
	}
	return docType, nil
}
