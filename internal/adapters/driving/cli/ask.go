package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/finsight-labs/finsight-cli/internal/adapters/driving/tui"
)

// askCmd represents the ask command.
var askCmd = &cobra.Command{
	Use:     "ask",
	Aliases: []string{"tui"},
	Short:   "Ask questions interactively",
	Long: `Launch the interactive terminal interface for asking questions.

Type a question and press Enter; the answer is synthesised from your
ingested documents and shown with its source citations.

Controls:
  (type)   - Enter a question
  Enter    - Ask
  n        - New question
  Esc      - Clear
  q        - Quit`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	// Panic recovery keeps stack traces visible after the alt screen closes
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if queryService == nil {
		return errors.New("query service not configured")
	}

	app, err := tui.NewApp(tui.NewPorts(queryService, historyService))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	app.WithContext(cmd.Context())

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
