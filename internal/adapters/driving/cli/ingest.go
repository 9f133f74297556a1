package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finsight-labs/finsight-cli/internal/connectors/filesystem"
	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driving"
)

var (
	ingestType  string
	ingestTitle string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest documents from a file or directory",
	Long: `Reads financial documents into the local index so they can be queried.

The path may be a single file or a directory. Directories are walked
recursively; supported formats are plain text (.txt), markdown (.md),
and CSV exports (.csv). Hidden files are skipped.

Document type is detected from the content when --type is not given.
Identical content is never ingested twice.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestType, "type", "t", "",
		"document type (bank_statement, credit_card, investment, tax)")
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "",
		"document title, single file only (defaults to the file name)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if normaliserReg == nil {
		return errors.New("normaliser registry not configured")
	}

	docType, err := parseTypeFlag(ingestType)
	if err != nil {
		return err
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}

	ctx := cmd.Context()

	if !info.IsDir() {
		raw, err := filesystem.ReadFile(path)
		if err != nil {
			return err
		}

		result, err := ingestOne(ctx, cmd, raw, docType, ingestTitle)
		if err != nil {
			return err
		}
		if result != nil {
			cmd.Printf("Ingested %q as %s: %d chunks (document %s)\n",
				result.Document.Title, result.Document.Type, result.ChunkCount, result.Document.ID)
		}
		return nil
	}

	if ingestTitle != "" {
		return errors.New("--title applies to single files only")
	}

	cmd.Printf("Scanning %s...\n", path)

	connector := filesystem.New(path)
	defer connector.Close()

	docs, errs := connector.Scan(ctx)

	var ingested, skipped, failed int
	for raw := range docs {
		raw := raw
		result, err := ingestOne(ctx, cmd, &raw, docType, "")
		switch {
		case err != nil:
			failed++
			cmd.Printf("  %s: %v\n", filepath.Base(raw.URI), err)
		case result == nil:
			skipped++
		default:
			ingested++
			cmd.Printf("  %s: %d chunks\n", result.Document.Title, result.ChunkCount)
		}
	}
	for err := range errs {
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
	}

	cmd.Printf("\nIngested %d documents (%d skipped, %d failed).\n", ingested, skipped, failed)
	return nil
}

// ingestOne normalises one raw document and ingests it. A nil result
// with nil error means the document was skipped: unsupported format or
// duplicate content.
func ingestOne(
	ctx context.Context,
	cmd *cobra.Command,
	raw *domain.RawDocument,
	docType domain.DocumentType,
	titleOverride string,
) (*driving.IngestResult, error) {
	normalised, err := normaliserReg.Normalise(ctx, raw)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedFormat) {
			cmd.Printf("  %s: unsupported format, skipping\n", filepath.Base(raw.URI))
			return nil, nil
		}
		return nil, fmt.Errorf("normalise %s: %w", filepath.Base(raw.URI), err)
	}

	title := normalised.Title
	if titleOverride != "" {
		title = titleOverride
	}

	result, err := ingestService.Ingest(ctx, driving.IngestRequest{
		Title: title,
		Type:  docType,
		Text:  normalised.Text,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateDocument) {
			cmd.Printf("  %s: already ingested, skipping\n", title)
			return nil, nil
		}
		return nil, err
	}

	return result, nil
}

// parseTypeFlag validates an optional document type flag value.
// Empty input means auto-detect.
func parseTypeFlag(value string) (domain.DocumentType, error) {
	if value == "" {
		return "", nil
	}

	docType := domain.DocumentType(value)
	if !docType.IsValid() || docType == domain.DocTypeUnknown {
		return "", fmt.Errorf("invalid document type %q (valid: %s)", value, validTypeNames())
	}
	return docType, nil
}

// validTypeNames lists the classifiable document types for error messages.
func validTypeNames() string {
	types := domain.AllDocumentTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}
