package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent queries",
	Long:  `Lists recently answered queries with their answers and latency.`,
	RunE:  runHistory,
}

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show corpus and usage statistics",
	Long:  `Aggregates document counts by type, chunk totals, and query usage.`,
	RunE:  runAnalytics,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of entries")
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(analyticsCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	records, err := historyService.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(records) == 0 {
		cmd.Println("No queries recorded yet.")
		return nil
	}

	for i := range records {
		rec := records[i]
		cmd.Printf("%s  %s\n", rec.CreatedAt.Format("2006-01-02 15:04"), rec.Query)
		cmd.Printf("    %s\n", firstLine(rec.Answer, 120))
		cmd.Printf("    %d sources, top score %.2f, %dms\n",
			rec.ResultCount, rec.TopScore, rec.ProcessingMs)
		cmd.Println()
	}

	return nil
}

func runAnalytics(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	analytics, err := historyService.Analytics(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load analytics: %w", err)
	}

	cmd.Println("[Corpus]")
	cmd.Printf("  Documents: %d\n", analytics.TotalDocuments)

	// Stable output regardless of map order.
	types := make([]domain.DocumentType, 0, len(analytics.DocumentsByType))
	for docType := range analytics.DocumentsByType {
		types = append(types, docType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, docType := range types {
		cmd.Printf("    %s: %d\n", docType, analytics.DocumentsByType[docType])
	}

	cmd.Printf("  Chunks: %d\n", analytics.TotalChunks)
	cmd.Println()

	cmd.Println("[Usage]")
	cmd.Printf("  Queries: %d\n", analytics.TotalQueries)
	if analytics.TotalQueries > 0 {
		cmd.Printf("  Average latency: %.0fms\n", analytics.AvgProcessingMs)
	}

	if len(analytics.RecentQueries) > 0 {
		cmd.Println("  Recent:")
		for i := range analytics.RecentQueries {
			rec := analytics.RecentQueries[i]
			cmd.Printf("    %s  %s\n",
				rec.CreatedAt.Format("2006-01-02 15:04"), firstLine(rec.Query, 60))
		}
	}

	return nil
}

// firstLine flattens text to one line, truncated to max runes.
func firstLine(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
