package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

// Analyze Command Tests

func TestAnalyzeCmd_Use(t *testing.T) {
	assert.Equal(t, "analyze", analyzeCmd.Use)
}

func TestAnalyzeCmd_HasSubcommands(t *testing.T) {
	commands := analyzeCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "trends")
	assert.Contains(t, commandNames, "entities")
}

// Trends Tests

func TestAnalyzeTrendsCmd_Use(t *testing.T) {
	assert.Equal(t, "trends [doc-id...]", analyzeTrendsCmd.Use)
}

func TestAnalyzeTrendsCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"analyze", "trends"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Analysing trends...")
	assert.Contains(t, buf.String(), "Spending increased 12% month over month")
}

func TestAnalyzeTrendsCmd_PassesDocumentIDs(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	var gotIDs []string
	analysisService = &mockAnalysisService{
		AnalyzeTrendsFunc: func(_ context.Context, documentIDs []string) (string, error) {
			gotIDs = documentIDs
			return "analysis", nil
		},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"analyze", "trends", "doc-1", "doc-2"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1", "doc-2"}, gotIDs)
}

func TestAnalyzeTrendsCmd_ServiceNotConfigured(t *testing.T) {
	oldService := analysisService
	analysisService = nil
	defer func() {
		analysisService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"analyze", "trends"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "analysis service not configured")
}

func TestAnalyzeTrendsCmd_ServiceError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	analysisService = &mockAnalysisServiceError{}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"analyze", "trends"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "trend analysis failed")
}

// Entities Tests

func TestAnalyzeEntitiesCmd_Use(t *testing.T) {
	assert.Equal(t, "entities [text]", analyzeEntitiesCmd.Use)
}

func TestAnalyzeEntitiesCmd_ExecutesWithText(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"analyze", "entities", "Paid 420.00 to First National Bank on 2025-03-01"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "amounts:")
	assert.Contains(t, buf.String(), "- 420.00")
	assert.Contains(t, buf.String(), "dates:")
	assert.Contains(t, buf.String(), "institutions:")
	assert.Contains(t, buf.String(), "- First National Bank")
}

func TestAnalyzeEntitiesCmd_OmitsEmptyCategories(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	analysisService = &mockAnalysisService{
		ExtractEntitiesFunc: func(_ context.Context, _ string) (*domain.EntityExtraction, error) {
			return &domain.EntityExtraction{
				Entities: map[string][]string{"amounts": {"99.00"}},
			}, nil
		},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"analyze", "entities", "99.00"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "amounts:")
	assert.NotContains(t, buf.String(), "dates:")
	assert.NotContains(t, buf.String(), "accounts:")
}

func TestAnalyzeEntitiesCmd_FromFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	var gotText string
	analysisService = &mockAnalysisService{
		ExtractEntitiesFunc: func(_ context.Context, text string) (*domain.EntityExtraction, error) {
			gotText = text
			return &domain.EntityExtraction{Entities: map[string][]string{}}, nil
		},
	}

	path := writeTestFile(t, t.TempDir(), "notes.txt", "transfer of 300.00 on 2025-06-01")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"analyze", "entities", "--file", path})
	defer func() {
		rootCmd.SetArgs(nil)
		entitiesFile = "" // Reset flag
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, "transfer of 300.00 on 2025-06-01", gotText)
}

func TestAnalyzeEntitiesCmd_TextAndFileConflict(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"analyze", "entities", "some text", "--file", "notes.txt"})
	defer func() {
		rootCmd.SetArgs(nil)
		entitiesFile = "" // Reset flag
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not both")
}

func TestAnalyzeEntitiesCmd_NoInput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"analyze", "entities"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "provide text to analyse or --file")
}

func TestAnalyzeEntitiesCmd_RawFallback(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	analysisService = &mockAnalysisService{
		ExtractEntitiesFunc: func(_ context.Context, _ string) (*domain.EntityExtraction, error) {
			return &domain.EntityExtraction{
				Raw: "The text mentions a payment of 420.00.",
			}, nil
		},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"analyze", "entities", "some text"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "The text mentions a payment of 420.00.")
}

func TestAnalyzeEntitiesCmd_ServiceError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	analysisService = &mockAnalysisServiceError{}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"analyze", "entities", "some text"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "entity extraction failed")
}
