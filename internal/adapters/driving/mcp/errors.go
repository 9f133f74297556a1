// Package mcp provides an MCP (Model Context Protocol) server adapter for Finsight.
// It enables AI assistants like Claude to query your financial documents.
package mcp

import "errors"

var (
	// ErrMissingQueryService is returned when the query service is not provided.
	ErrMissingQueryService = errors.New("mcp: query service is required")

	// ErrIngestUnavailable is returned by the ingest_document tool when
	// no ingest service was wired in.
	ErrIngestUnavailable = errors.New("mcp: ingest service not available")

	// ErrDocumentsUnavailable is returned by document tools when no
	// document service was wired in.
	ErrDocumentsUnavailable = errors.New("mcp: document service not available")
)
