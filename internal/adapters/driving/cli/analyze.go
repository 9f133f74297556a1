package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run LLM analysis over your documents",
	Long:  `Completion-provider analysis beyond grounded question answering.`,
}

var analyzeTrendsCmd = &cobra.Command{
	Use:   "trends [doc-id...]",
	Short: "Summarise financial trends across documents",
	Long: `Examines document contents for recurring income and spending patterns,
balance changes over time, and anything unusual. With no document IDs
every ingested document is analysed.`,
	RunE: runAnalyzeTrends,
}

var analyzeEntitiesCmd = &cobra.Command{
	Use:   "entities [text]",
	Short: "Extract financial entities from text",
	Long: `Pulls amounts, dates, accounts, institutions, and categories out of
free-form text. Reads from --file when no text argument is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyzeEntities,
}

// entitiesFile reads the extraction input from a file instead of an argument.
var entitiesFile string

func init() {
	analyzeEntitiesCmd.Flags().StringVarP(&entitiesFile, "file", "f", "", "read text from a file")

	analyzeCmd.AddCommand(analyzeTrendsCmd)
	analyzeCmd.AddCommand(analyzeEntitiesCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyzeTrends(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	cmd.Println("Analysing trends...")

	analysis, err := analysisService.AnalyzeTrends(cmd.Context(), args)
	if err != nil {
		return fmt.Errorf("trend analysis failed: %w", err)
	}

	cmd.Println()
	cmd.Println(analysis)
	return nil
}

func runAnalyzeEntities(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	var text string
	switch {
	case len(args) > 0 && entitiesFile != "":
		return errors.New("provide either text or --file, not both")
	case len(args) > 0:
		text = args[0]
	case entitiesFile != "":
		content, err := os.ReadFile(entitiesFile)
		if err != nil {
			return fmt.Errorf("read %s: %w", entitiesFile, err)
		}
		text = string(content)
	default:
		return errors.New("provide text to analyse or --file")
	}

	extraction, err := analysisService.ExtractEntities(cmd.Context(), text)
	if err != nil {
		return fmt.Errorf("entity extraction failed: %w", err)
	}

	if extraction.Entities == nil {
		// Provider strayed from strict JSON; show what it said.
		cmd.Println(extraction.Raw)
		return nil
	}

	for _, category := range []string{"amounts", "dates", "accounts", "institutions", "categories"} {
		values := extraction.Entities[category]
		if len(values) == 0 {
			continue
		}
		cmd.Printf("%s:\n", category)
		for _, value := range values {
			cmd.Printf("  - %s\n", value)
		}
	}

	return nil
}
