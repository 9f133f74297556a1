package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestHashContent_Deterministic tests that identical text hashes identically
func TestHashContent_Deterministic(t *testing.T) {
	text := "Balance: $100 on Jan 1."

	first := HashContent(text)
	second := HashContent(text)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64) // sha256 hex
}

// TestHashContent_DiffersPerInput tests that different text hashes differently
func TestHashContent_DiffersPerInput(t *testing.T) {
	assert.NotEqual(t, HashContent("statement one"), HashContent("statement two"))
}

// TestCountWords tests whitespace word counting
func TestCountWords(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{
			name:     "simple sentence",
			text:     "Balance: $100 on Jan 1.",
			expected: 5,
		},
		{
			name:     "empty string",
			text:     "",
			expected: 0,
		},
		{
			name:     "whitespace only",
			text:     "   \n\t  ",
			expected: 0,
		},
		{
			name:     "multiple spaces between words",
			text:     "closing   balance",
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CountWords(tt.text))
		})
	}
}

// TestDocumentType_IsValid tests all valid and invalid document types
func TestDocumentType_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		docType  DocumentType
		expected bool
	}{
		{
			name:     "bank_statement is valid",
			docType:  DocTypeBankStatement,
			expected: true,
		},
		{
			name:     "credit_card is valid",
			docType:  DocTypeCreditCard,
			expected: true,
		},
		{
			name:     "investment is valid",
			docType:  DocTypeInvestment,
			expected: true,
		},
		{
			name:     "tax is valid",
			docType:  DocTypeTax,
			expected: true,
		},
		{
			name:     "unknown is valid",
			docType:  DocTypeUnknown,
			expected: true,
		},
		{
			name:     "empty string is invalid",
			docType:  DocumentType(""),
			expected: false,
		},
		{
			name:     "arbitrary string is invalid",
			docType:  DocumentType("mortgage"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.docType.IsValid())
		})
	}
}

// TestDocumentType_Description tests human-readable descriptions
func TestDocumentType_Description(t *testing.T) {
	assert.Equal(t, "Bank Statement", DocTypeBankStatement.Description())
	assert.Equal(t, "Credit Card Statement", DocTypeCreditCard.Description())
	assert.Equal(t, "Investment Document", DocTypeInvestment.Description())
	assert.Equal(t, "Tax Document", DocTypeTax.Description())
	assert.Equal(t, "Unknown", DocumentType("bogus").Description())
}

// TestAllDocumentTypes_ExcludesUnknown tests the classifiable type list
func TestAllDocumentTypes_ExcludesUnknown(t *testing.T) {
	types := AllDocumentTypes()

	assert.Len(t, types, 4)
	assert.NotContains(t, types, DocTypeUnknown)
	for _, dt := range types {
		assert.True(t, dt.IsValid())
	}
}

// TestDetectDocumentType tests keyword classification heuristics
func TestDetectDocumentType(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected DocumentType
	}{
		{
			name:     "bank statement by closing balance",
			text:     "Statement Period: Jan 1 - Jan 31. Closing Balance: $200.",
			expected: DocTypeBankStatement,
		},
		{
			name:     "bank statement by account number",
			text:     "Account Number: 1234-5678",
			expected: DocTypeBankStatement,
		},
		{
			name:     "credit card by minimum payment",
			text:     "Your minimum payment of $25 is due March 15.",
			expected: DocTypeCreditCard,
		},
		{
			name:     "investment by dividend",
			text:     "Quarterly dividend of $1.20 per share was paid.",
			expected: DocTypeInvestment,
		},
		{
			name:     "tax by form 1040",
			text:     "Attach this schedule to Form 1040.",
			expected: DocTypeTax,
		},
		{
			name:     "case insensitive match",
			text:     "CREDIT LIMIT: $5,000",
			expected: DocTypeCreditCard,
		},
		{
			name:     "no keywords yields unknown",
			text:     "Meeting notes from Tuesday.",
			expected: DocTypeUnknown,
		},
		{
			name:     "empty text yields unknown",
			text:     "",
			expected: DocTypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectDocumentType(tt.text))
		})
	}
}

// TestDetectDocumentType_FirstMatchWins tests precedence when keywords overlap
func TestDetectDocumentType_FirstMatchWins(t *testing.T) {
	// "deposit" (bank) appears before "credit card" keywords are considered.
	text := "Deposit received. Credit card payment processed."
	assert.Equal(t, DocTypeBankStatement, DetectDocumentType(text))
}

// TestParseDocumentType tests normalisation of classifier output
func TestParseDocumentType(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected DocumentType
	}{
		{
			name:     "LLM style answer",
			input:    "Bank Statement",
			expected: DocTypeBankStatement,
		},
		{
			name:     "credit with trailing period",
			input:    "Credit Card Statement.",
			expected: DocTypeCreditCard,
		},
		{
			name:     "investment document",
			input:    "Investment Document",
			expected: DocTypeInvestment,
		},
		{
			name:     "tax document",
			input:    "tax document",
			expected: DocTypeTax,
		},
		{
			name:     "exact enum value",
			input:    "bank_statement",
			expected: DocTypeBankStatement,
		},
		{
			name:     "unparseable yields unknown",
			input:    "I cannot classify this.",
			expected: DocTypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseDocumentType(tt.input))
		})
	}
}
