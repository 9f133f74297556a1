package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/finsight-labs/finsight-cli/internal/adapters/driving/api"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start a local REST API server exposing ingest, query, document,
history, and analysis endpoints under /api/v1.

The server binds to localhost only. It is meant for local tools and
scripts, not for exposure to a network.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ports := &api.Ports{
		Query:     queryService,
		Ingest:    ingestService,
		Documents: documentService,
		History:   historyService,
		Analysis:  analysisService,
	}

	server, err := api.New(ports)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf("127.0.0.1:%d", servePort)
	cmd.Printf("REST API listening on http://%s\n", addr)
	cmd.Println("Press Ctrl+C to stop.")

	return server.Run(ctx, addr)
}
