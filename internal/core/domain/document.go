package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Document represents an ingested financial document.
// Content is segmented into Chunks for embedding and retrieval;
// the document row keeps the metadata needed for listings and citations.
type Document struct {
	// ID is the unique document identifier (UUID).
	ID string

	// Title is the human-readable document title, usually the file name.
	Title string

	// Type classifies the document (bank statement, tax document, ...).
	Type DocumentType

	// ContentHash is the SHA-256 hex digest of the raw text.
	// Uploading identical bytes never creates a second document.
	ContentHash string

	// SizeBytes is the raw text length in bytes.
	SizeBytes int64

	// WordCount is the whitespace-separated word count of the text.
	WordCount int

	// ChunkCount is the number of chunks produced at ingestion.
	// Zero is valid: an empty document ingests successfully with no chunks.
	ChunkCount int

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last re-ingested.
	UpdatedAt time.Time
}

// Chunk is a contiguous slice of a document's text, the unit of
// embedding and retrieval.
type Chunk struct {
	// ID is the unique chunk identifier (UUID).
	ID string

	// DocumentID links to the owning document. Chunks never outlive it.
	DocumentID string

	// Ordinal is the 0-based position within the document.
	// Ordinals are contiguous: a document's chunks are always 0..n-1.
	Ordinal int

	// Content is the chunk text.
	Content string

	// Overlap is the number of leading bytes shared with the previous
	// chunk, zero for the first. Trimming it from every chunk and
	// concatenating in ordinal order reconstructs the document exactly.
	Overlap int

	// Embedding is the vector representation, fixed dimension per model.
	// Immutable once committed to the store.
	Embedding []float32

	// WordCount is the whitespace-separated word count of Content.
	WordCount int
}

// HashContent returns the SHA-256 hex digest used for document dedup.
func HashContent(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// CountWords returns the number of whitespace-separated words in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// DocumentType classifies a financial document.
type DocumentType string

// Known document types.
const (
	// DocTypeBankStatement is a bank account statement.
	DocTypeBankStatement DocumentType = "bank_statement"

	// DocTypeCreditCard is a credit card statement.
	DocTypeCreditCard DocumentType = "credit_card"

	// DocTypeInvestment is an investment or brokerage document.
	DocTypeInvestment DocumentType = "investment"

	// DocTypeTax is a tax form or filing.
	DocTypeTax DocumentType = "tax"

	// DocTypeUnknown is the fallback when no classification matches.
	DocTypeUnknown DocumentType = "unknown"
)

// IsValid returns true if the document type is recognised.
func (t DocumentType) IsValid() bool {
	switch t {
	case DocTypeBankStatement, DocTypeCreditCard, DocTypeInvestment, DocTypeTax, DocTypeUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t DocumentType) String() string {
	return string(t)
}

// Description returns a human-readable description of the type.
func (t DocumentType) Description() string {
	switch t {
	case DocTypeBankStatement:
		return "Bank Statement"
	case DocTypeCreditCard:
		return "Credit Card Statement"
	case DocTypeInvestment:
		return "Investment Document"
	case DocTypeTax:
		return "Tax Document"
	case DocTypeUnknown:
		return "Unknown"
	default:
		return unknownDescription
	}
}

// AllDocumentTypes returns the classifiable document types, excluding unknown.
func AllDocumentTypes() []DocumentType {
	return []DocumentType{
		DocTypeBankStatement,
		DocTypeCreditCard,
		DocTypeInvestment,
		DocTypeTax,
	}
}

// typeKeywords maps each document type to phrases that identify it.
// Checked in declaration order; first match wins.
var typeKeywords = []struct {
	docType  DocumentType
	keywords []string
}{
	{DocTypeBankStatement, []string{"account number", "statement period", "deposit", "withdrawal", "closing balance"}},
	{DocTypeCreditCard, []string{"credit card", "payment due", "minimum payment", "credit limit"}},
	{DocTypeInvestment, []string{"dividend", "shares", "portfolio", "investment account"}},
	{DocTypeTax, []string{"irs", "form 1040", "tax year", "w-2", "1099"}},
}

// DetectDocumentType classifies text by keyword heuristics.
// Returns DocTypeUnknown when nothing matches; callers may then fall
// back to an LLM classification.
func DetectDocumentType(text string) DocumentType {
	lower := strings.ToLower(text)
	for _, entry := range typeKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.docType
			}
		}
	}
	return DocTypeUnknown
}

// ParseDocumentType maps free-form classifier output to a DocumentType.
// Used to normalise LLM classification responses.
func ParseDocumentType(s string) DocumentType {
	lower := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(lower, "bank"):
		return DocTypeBankStatement
	case strings.Contains(lower, "credit"):
		return DocTypeCreditCard
	case strings.Contains(lower, "invest"):
		return DocTypeInvestment
	case strings.Contains(lower, "tax"):
		return DocTypeTax
	default:
		if t := DocumentType(lower); t.IsValid() {
			return t
		}
		return DocTypeUnknown
	}
}
