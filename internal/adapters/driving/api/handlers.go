package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driving"
	"github.com/finsight-labs/finsight-cli/internal/logger"
)

// Request and response shapes for the v1 API.

type ingestRequest struct {
	Title string `json:"title"`
	Type  string `json:"type,omitempty"`
	Text  string `json:"text"`
}

type documentResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Type       string    `json:"type"`
	SizeBytes  int64     `json:"size_bytes"`
	WordCount  int       `json:"word_count"`
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ingestResponse struct {
	Document   documentResponse `json:"document"`
	ChunkCount int              `json:"chunk_count"`
}

type documentListResponse struct {
	Documents []documentResponse `json:"documents"`
	Count     int                `json:"count"`
}

type queryRequest struct {
	Question string  `json:"question"`
	TopK     int     `json:"top_k,omitempty"`
	MinScore float64 `json:"min_score,omitempty"`
	Type     string  `json:"type,omitempty"`
}

type citationResponse struct {
	DocumentTitle string  `json:"document_title"`
	DocumentType  string  `json:"document_type"`
	Score         float64 `json:"score"`
	Excerpt       string  `json:"excerpt"`
}

type queryResponse struct {
	Answer       string             `json:"answer"`
	Citations    []citationResponse `json:"citations"`
	ProcessingMs int64              `json:"processing_ms"`
}

type trendsRequest struct {
	DocumentIDs []string `json:"document_ids,omitempty"`
}

type trendsResponse struct {
	Analysis string `json:"analysis"`
}

type entitiesRequest struct {
	Text string `json:"text"`
}

type entitiesResponse struct {
	Entities map[string][]string `json:"entities,omitempty"`
	Raw      string              `json:"raw,omitempty"`
}

type queryRecordResponse struct {
	ID           string    `json:"id"`
	Query        string    `json:"query"`
	Answer       string    `json:"answer"`
	TopScore     float64   `json:"top_score"`
	ResultCount  int       `json:"result_count"`
	ProcessingMs int64     `json:"processing_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

type historyResponse struct {
	Queries []queryRecordResponse `json:"queries"`
	Count   int                   `json:"count"`
}

type analyticsResponse struct {
	TotalDocuments  int                   `json:"total_documents"`
	DocumentsByType map[string]int        `json:"documents_by_type"`
	TotalChunks     int                   `json:"total_chunks"`
	TotalQueries    int                   `json:"total_queries"`
	AvgProcessingMs float64               `json:"avg_processing_ms"`
	RecentQueries   []queryRecordResponse `json:"recent_queries"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIngestDocument(w http.ResponseWriter, r *http.Request) {
	if s.ports.Ingest == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "ingest service not available")
		return
	}

	var req ingestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	var docType domain.DocumentType
	if req.Type != "" {
		parsed, err := parseDocType(req.Type)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		docType = parsed
	}

	result, err := s.ports.Ingest.Ingest(r.Context(), driving.IngestRequest{
		Title: req.Title,
		Type:  docType,
		Text:  req.Text,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/documents/"+result.Document.ID)
	writeJSON(w, http.StatusCreated, ingestResponse{
		Document:   toDocumentResponse(*result.Document),
		ChunkCount: result.ChunkCount,
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	if s.ports.Documents == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "document service not available")
		return
	}

	var typeFilter domain.DocumentType
	if v := r.URL.Query().Get("type"); v != "" {
		parsed, err := parseDocType(v)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		typeFilter = parsed
	}

	docs, err := s.ports.Documents.List(r.Context(), typeFilter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := documentListResponse{
		Documents: make([]documentResponse, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		resp.Documents[i] = toDocumentResponse(docs[i])
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	if s.ports.Documents == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "document service not available")
		return
	}

	doc, err := s.ports.Documents.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDocumentResponse(*doc))
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if s.ports.Documents == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "document service not available")
		return
	}

	if err := s.ports.Documents.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	opts := domain.QueryOptions{
		TopK:     req.TopK,
		MinScore: req.MinScore,
	}
	if req.Type != "" {
		parsed, err := parseDocType(req.Type)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		opts.TypeFilter = parsed
	}

	result, err := s.ports.Query.Query(r.Context(), req.Question, opts)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.recordQuery(r, req.Question, result)

	resp := queryResponse{
		Answer:       result.Answer,
		Citations:    make([]citationResponse, len(result.Citations)),
		ProcessingMs: result.ProcessingTime.Milliseconds(),
	}
	for i := range result.Citations {
		resp.Citations[i] = citationResponse{
			DocumentTitle: result.Citations[i].DocumentTitle,
			DocumentType:  result.Citations[i].DocumentType.String(),
			Score:         result.Citations[i].Score,
			Excerpt:       result.Citations[i].Excerpt,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// recordQuery persists the answered query for history, best effort.
func (s *Server) recordQuery(r *http.Request, question string, result *domain.QueryResult) {
	if s.ports.History == nil {
		return
	}
	if err := s.ports.History.Record(r.Context(), question, result); err != nil {
		logger.Warn("Recording query history failed: %v", err)
	}
}

func (s *Server) handleAnalyzeTrends(w http.ResponseWriter, r *http.Request) {
	if s.ports.Analysis == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "analysis service not available")
		return
	}

	var req trendsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	analysis, err := s.ports.Analysis.AnalyzeTrends(r.Context(), req.DocumentIDs)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, trendsResponse{Analysis: analysis})
}

func (s *Server) handleExtractEntities(w http.ResponseWriter, r *http.Request) {
	if s.ports.Analysis == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "analysis service not available")
		return
	}

	var req entitiesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	extraction, err := s.ports.Analysis.ExtractEntities(r.Context(), req.Text)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entitiesResponse{
		Entities: extraction.Entities,
		Raw:      extraction.Raw,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.ports.History == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "history service not available")
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeDomainError(w, fmt.Errorf("%w: limit must be an integer", domain.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	records, err := s.ports.History.Recent(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := historyResponse{
		Queries: make([]queryRecordResponse, len(records)),
		Count:   len(records),
	}
	for i := range records {
		resp.Queries[i] = toQueryRecordResponse(records[i])
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if s.ports.History == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "history service not available")
		return
	}

	analytics, err := s.ports.History.Analytics(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	byType := make(map[string]int, len(analytics.DocumentsByType))
	for docType, count := range analytics.DocumentsByType {
		byType[docType.String()] = count
	}

	resp := analyticsResponse{
		TotalDocuments:  analytics.TotalDocuments,
		DocumentsByType: byType,
		TotalChunks:     analytics.TotalChunks,
		TotalQueries:    analytics.TotalQueries,
		AvgProcessingMs: analytics.AvgProcessingMs,
		RecentQueries:   make([]queryRecordResponse, len(analytics.RecentQueries)),
	}
	for i := range analytics.RecentQueries {
		resp.RecentQueries[i] = toQueryRecordResponse(analytics.RecentQueries[i])
	}

	writeJSON(w, http.StatusOK, resp)
}

func toDocumentResponse(doc domain.Document) documentResponse {
	return documentResponse{
		ID:         doc.ID,
		Title:      doc.Title,
		Type:       doc.Type.String(),
		SizeBytes:  doc.SizeBytes,
		WordCount:  doc.WordCount,
		ChunkCount: doc.ChunkCount,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
}

func toQueryRecordResponse(record domain.QueryRecord) queryRecordResponse {
	return queryRecordResponse{
		ID:           record.ID,
		Query:        record.Query,
		Answer:       record.Answer,
		TopScore:     record.TopScore,
		ResultCount:  record.ResultCount,
		ProcessingMs: record.ProcessingMs,
		CreatedAt:    record.CreatedAt,
	}
}

// parseDocType validates a document type supplied by the client.
func parseDocType(value string) (domain.DocumentType, error) {
	docType := domain.DocumentType(value)
	if !docType.IsValid() || docType == domain.DocTypeUnknown {
		return "", fmt.Errorf("%w: unknown document type %q", domain.ErrInvalidInput, value)
	}
	return docType, nil
}
