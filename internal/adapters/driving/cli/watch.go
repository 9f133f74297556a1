package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/finsight-labs/finsight-cli/internal/connectors/filesystem"
	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

var watchType string

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch a directory and ingest new documents",
	Long: `Watches a directory and ingests documents as they are created or
modified. Deleted files stay in the index; remove them with
'finsight document delete'. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchType, "type", "t", "",
		"document type for ingested files (bank_statement, credit_card, investment, tax)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if normaliserReg == nil {
		return errors.New("normaliser registry not configured")
	}

	docType, err := parseTypeFlag(watchType)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connector := filesystem.New(args[0])
	defer connector.Close()

	changes, err := connector.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}

	cmd.Printf("Watching %s for documents. Press Ctrl+C to stop.\n", args[0])

	for change := range changes {
		if change.Type == domain.ChangeDeleted {
			continue
		}

		raw := change.Document
		result, err := ingestOne(ctx, cmd, &raw, docType, "")
		if err != nil {
			cmd.Printf("  %s: %v\n", filepath.Base(raw.URI), err)
			continue
		}
		if result != nil {
			cmd.Printf("  %s: ingested as %s, %d chunks (document %s)\n",
				filepath.Base(raw.URI), result.Document.Type, result.ChunkCount, result.Document.ID)
		}
	}

	cmd.Println("Stopped watching.")
	return nil
}
