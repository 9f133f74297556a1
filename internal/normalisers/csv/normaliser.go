// Package csv normalises CSV exports, the common download format for
// bank and card transaction histories.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles CSV documents. The first row is treated as the
// header; every data row is rewritten as "Header: value" pairs on one
// line, so each row stays self-describing after chunking.
type Normaliser struct{}

// New creates a new CSV normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/csv"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Specific MIME normaliser, higher than plaintext
}

// Normalise converts CSV rows into labelled text lines.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader := csv.NewReader(strings.NewReader(string(raw.Content)))
	// Bank exports are rarely clean; tolerate ragged rows and loose quoting.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse csv: %v", domain.ErrInvalidInput, err)
	}

	return &driven.NormaliseResult{
		Title: extractTitle(raw.URI),
		Text:  renderRecords(records),
	}, nil
}

// renderRecords pairs each data row with the header row.
// A header-only or empty file renders as empty text.
func renderRecords(records [][]string) string {
	if len(records) < 2 {
		return ""
	}

	header := records[0]
	var b strings.Builder

	for _, row := range records[1:] {
		if isBlankRow(row) {
			continue
		}

		var fields []string
		for i, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if i < len(header) && strings.TrimSpace(header[i]) != "" {
				fields = append(fields, strings.TrimSpace(header[i])+": "+cell)
			} else {
				fields = append(fields, cell)
			}
		}
		if len(fields) == 0 {
			continue
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Join(fields, ", "))
	}

	return b.String()
}

// isBlankRow reports whether every cell in the row is empty.
func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// extractTitle derives a human-readable title from a file path.
func extractTitle(uri string) string {
	filename := filepath.Base(uri)

	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}

	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")

	return filename
}
