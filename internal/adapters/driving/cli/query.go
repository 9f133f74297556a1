package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/logger"
)

var (
	queryTopK       int
	queryMinScore   float64
	queryTypeFilter string
	queryJSON       bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question about your documents",
	Long: `Answers a natural-language question grounded in the ingested documents.

The question is embedded, the most relevant chunks are retrieved from
the local index, and the configured completion provider synthesizes an
answer with citations back to the source documents.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0,
		"number of chunks to ground the answer on (0 = configured default)")
	queryCmd.Flags().Float64Var(&queryMinScore, "min-score", 0,
		"similarity threshold in [0,1] (0 = configured default)")
	queryCmd.Flags().StringVarP(&queryTypeFilter, "type", "t", "",
		"restrict retrieval to one document type")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := args[0]

	if queryService == nil {
		return errors.New("query service not configured")
	}

	typeFilter, err := parseTypeFlag(queryTypeFilter)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	opts := domain.QueryOptions{
		TopK:       queryTopK,
		MinScore:   queryMinScore,
		TypeFilter: typeFilter,
	}

	result, err := queryService.Query(ctx, question, opts)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	recordQuery(ctx, question, result)

	if queryJSON {
		return outputQueryJSON(cmd, result)
	}

	return outputQueryText(cmd, result)
}

// recordQuery persists the answered query for history, best effort.
func recordQuery(ctx context.Context, question string, result *domain.QueryResult) {
	if historyService == nil {
		return
	}
	if err := historyService.Record(ctx, question, result); err != nil {
		logger.Warn("Recording query history failed: %v", err)
	}
}

func outputQueryJSON(cmd *cobra.Command, result *domain.QueryResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryText(cmd *cobra.Command, result *domain.QueryResult) error {
	cmd.Println(result.Answer)

	if len(result.Citations) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i := range result.Citations {
			citation := result.Citations[i]
			cmd.Printf("  [%d] %s (%s, %.2f)\n",
				i+1, citation.DocumentTitle, citation.DocumentType, citation.Score)
			if citation.Excerpt != "" {
				cmd.Printf("      %s\n", citation.Excerpt)
			}
		}
	}

	cmd.Println()
	cmd.Printf("(%.2fs, %d sources)\n", result.ProcessingTime.Seconds(), len(result.Citations))
	return nil
}
