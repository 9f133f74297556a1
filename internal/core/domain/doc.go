// Package domain defines the core business entities for Finsight.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested financial document with metadata
//   - Chunk: A contiguous slice of document text, the unit of retrieval
//   - QueryResult: A grounded answer with citations
//   - QueryRecord: A persisted query history entry
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
