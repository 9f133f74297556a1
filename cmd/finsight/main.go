// Command finsight is a retrieval-augmented question answering tool for
// personal financial documents. Documents are ingested, chunked, and
// embedded into a local SQLite index; queries retrieve the most relevant
// chunks and a configured completion provider synthesises a grounded,
// cited answer. All state lives under ~/.finsight/.
package main

import (
	"fmt"
	"os"

	"github.com/finsight-labs/finsight-cli/internal/adapters/driven/ai"
	"github.com/finsight-labs/finsight-cli/internal/adapters/driven/config/file"
	"github.com/finsight-labs/finsight-cli/internal/adapters/driven/storage/sqlite"
	"github.com/finsight-labs/finsight-cli/internal/adapters/driving/cli"
	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsight-cli/internal/core/services"
	"github.com/finsight-labs/finsight-cli/internal/normalisers"
	"github.com/finsight-labs/finsight-cli/internal/normalisers/csv"
	"github.com/finsight-labs/finsight-cli/internal/normalisers/markdown"
	"github.com/finsight-labs/finsight-cli/internal/normalisers/plaintext"
	"github.com/finsight-labs/finsight-cli/internal/postprocessors"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config store: %w", err)
	}

	promptStore, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("opening prompt store: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	// A configured but unreachable provider degrades the session
	// instead of failing it; affected commands report the gap.
	aiServices := ai.Init(settings)
	defer aiServices.Close()
	for _, warning := range aiServices.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}

	dimensions := 0
	if aiServices.EmbeddingService != nil {
		dimensions = aiServices.EmbeddingService.Dimensions()
	}

	store, err := sqlite.NewStore("", dimensions)
	if err != nil {
		return fmt.Errorf("opening document store: %w", err)
	}
	defer store.Close()

	pipeline, err := buildPipeline(settings.Pipeline)
	if err != nil {
		return fmt.Errorf("building processing pipeline: %w", err)
	}

	ingestService := services.NewIngestService(
		aiServices.EmbeddingService,
		aiServices.LLMService,
		store.VectorIndex(),
		store.DocumentStore(),
		pipeline,
		settings.Ingest.EmbedConcurrency,
	)
	ingestService.SetPromptStore(promptStore)

	retrievalService := services.NewRetrievalService(
		aiServices.EmbeddingService,
		store.VectorIndex(),
		store.DocumentStore(),
	)

	synthesisService := services.NewSynthesisService(aiServices.LLMService, settings.Synthesis)
	synthesisService.SetPromptStore(promptStore)

	queryService := services.NewQueryService(retrievalService, synthesisService, settings.Retrieval)

	analysisService := services.NewAnalysisService(aiServices.LLMService, store.DocumentStore())
	analysisService.SetPromptStore(promptStore)

	cli.SetServices(cli.Services{
		Ingest:      ingestService,
		Query:       queryService,
		Documents:   services.NewDocumentService(store.DocumentStore()),
		History:     services.NewHistoryService(store.HistoryStore(), store.DocumentStore()),
		Analysis:    analysisService,
		Settings:    settingsService,
		Normalisers: normalisers.NewDefaultRegistry(plaintext.New(), markdown.New(), csv.New()),
	})
	cli.SetVersion(version)

	return cli.Execute()
}

// buildPipeline assembles the post-processing pipeline named in the
// settings. Unknown processor names fail startup rather than silently
// changing how documents are chunked.
func buildPipeline(cfg domain.PipelineConfig) (driven.PostProcessorPipeline, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	pipeline := postprocessors.NewPipeline()
	for _, name := range cfg.Processors {
		processor, err := registry.Build(name, cfg.GetProcessorConfig(name))
		if err != nil {
			return nil, err
		}
		pipeline.Add(processor)
	}

	return pipeline, nil
}
