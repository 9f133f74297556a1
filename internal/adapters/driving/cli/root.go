// Package cli implements the finsight command-line interface using cobra.
// Commands are thin adapters: they parse flags, call core services through
// the driving ports, and format output.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driving"
	"github.com/finsight-labs/finsight-cli/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// verbose enables debug logging to stderr.
var verbose bool

// Services used by the commands, injected via SetServices before Execute.
// Commands guard against nil services so a partially wired binary fails
// with a clear message instead of a panic.
var (
	ingestService   driving.IngestService
	queryService    driving.QueryService
	documentService driving.DocumentService
	historyService  driving.HistoryService
	analysisService driving.AnalysisService
	settingsService driving.SettingsService
	normaliserReg   driven.NormaliserRegistry
)

var rootCmd = &cobra.Command{
	Use:   "finsight",
	Short: "Ask questions about your financial documents",
	Long: `Finsight ingests financial documents (bank statements, credit card
statements, investment reports, tax forms) into a local vector index and
answers natural-language questions about them, grounded in the ingested
content with citations.

All data stays on your machine in ~/.finsight. Answering questions
requires a configured embedding provider and completion provider; run
'finsight settings' to set them up.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging to stderr")
}

// Services bundles the core service implementations the CLI drives.
type Services struct {
	Ingest      driving.IngestService
	Query       driving.QueryService
	Documents   driving.DocumentService
	History     driving.HistoryService
	Analysis    driving.AnalysisService
	Settings    driving.SettingsService
	Normalisers driven.NormaliserRegistry
}

// SetServices injects service implementations into the command tree.
// Call before Execute.
func SetServices(s Services) {
	ingestService = s.Ingest
	queryService = s.Query
	documentService = s.Documents
	historyService = s.History
	analysisService = s.Analysis
	settingsService = s.Settings
	normaliserReg = s.Normalisers
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
