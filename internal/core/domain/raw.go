package domain

// RawDocument represents opaque file bytes picked up by a connector.
// It is the connector's output before text extraction.
type RawDocument struct {
	// URI is the original location (file path).
	URI string

	// MIMEType is the content type (e.g., "text/markdown").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// TypeHint optionally carries a caller-provided document type.
	// Empty means detect from content.
	TypeHint DocumentType
}

// ChangeType represents the type of document change.
type ChangeType int

const (
	// ChangeCreated indicates a new file.
	ChangeCreated ChangeType = iota

	// ChangeUpdated indicates a modified file.
	ChangeUpdated

	// ChangeDeleted indicates a removed file.
	ChangeDeleted
)

// RawDocumentChange represents a change event from a watched folder.
type RawDocumentChange struct {
	// Type is the kind of change.
	Type ChangeType

	// Document is the affected document.
	Document RawDocument
}
