package services

import (
	"fmt"
	"time"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyRetrievalTopK    = "retrieval.top_k"
	keyRetrievalScore   = "retrieval.min_score"
	keyRetrievalTimeout = "retrieval.query_timeout"
	keySynthBudget      = "synthesis.context_budget"
	keySynthMaxTokens   = "synthesis.max_tokens"
	keySynthTemperature = "synthesis.temperature"
	keySynthExcerpt     = "synthesis.excerpt_length"
	keyIngestWorkers    = "ingest.embed_concurrency"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider),
			Model:    s.configStore.GetString(keyEmbedModel),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider),
			Model:    s.configStore.GetString(keyLLMModel),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:         s.getInt(keyRetrievalTopK, defaults.Retrieval.TopK),
			MinScore:     s.getFloat(keyRetrievalScore, defaults.Retrieval.MinScore),
			QueryTimeout: s.getDuration(keyRetrievalTimeout, defaults.Retrieval.QueryTimeout),
		},
		Synthesis: domain.SynthesisSettings{
			ContextBudget: s.getInt(keySynthBudget, defaults.Synthesis.ContextBudget),
			MaxTokens:     s.getInt(keySynthMaxTokens, defaults.Synthesis.MaxTokens),
			Temperature:   s.getFloat(keySynthTemperature, defaults.Synthesis.Temperature),
			ExcerptLength: s.getInt(keySynthExcerpt, defaults.Synthesis.ExcerptLength),
		},
		Ingest: domain.IngestSettings{
			EmbedConcurrency: s.getInt(keyIngestWorkers, defaults.Ingest.EmbedConcurrency),
		},
		Pipeline: s.GetPipelineConfig(),
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Save embedding settings
	if err := s.configStore.Set(keyEmbedProvider, settings.Embedding.Provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, settings.Embedding.Model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}

	// Save LLM settings
	if err := s.configStore.Set(keyLLMProvider, settings.LLM.Provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, settings.LLM.Model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if err := s.configStore.Set(keyLLMBaseURL, settings.LLM.BaseURL); err != nil {
		return fmt.Errorf("save llm base_url: %w", err)
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	// Save retrieval settings
	if err := s.configStore.Set(keyRetrievalTopK, settings.Retrieval.TopK); err != nil {
		return fmt.Errorf("save retrieval top_k: %w", err)
	}
	if err := s.configStore.Set(keyRetrievalScore, settings.Retrieval.MinScore); err != nil {
		return fmt.Errorf("save retrieval min_score: %w", err)
	}
	if err := s.configStore.Set(keyRetrievalTimeout, settings.Retrieval.QueryTimeout.String()); err != nil {
		return fmt.Errorf("save retrieval query_timeout: %w", err)
	}

	// Save synthesis settings
	if err := s.configStore.Set(keySynthBudget, settings.Synthesis.ContextBudget); err != nil {
		return fmt.Errorf("save synthesis context_budget: %w", err)
	}
	if err := s.configStore.Set(keySynthMaxTokens, settings.Synthesis.MaxTokens); err != nil {
		return fmt.Errorf("save synthesis max_tokens: %w", err)
	}
	if err := s.configStore.Set(keySynthTemperature, settings.Synthesis.Temperature); err != nil {
		return fmt.Errorf("save synthesis temperature: %w", err)
	}
	if err := s.configStore.Set(keySynthExcerpt, settings.Synthesis.ExcerptLength); err != nil {
		return fmt.Errorf("save synthesis excerpt_length: %w", err)
	}

	// Save ingest settings
	if err := s.configStore.Set(keyIngestWorkers, settings.Ingest.EmbedConcurrency); err != nil {
		return fmt.Errorf("save ingest embed_concurrency: %w", err)
	}

	// Save pipeline settings
	if len(settings.Pipeline.Processors) > 0 {
		if err := s.configStore.Set("pipeline.processors", settings.Pipeline.Processors); err != nil {
			return fmt.Errorf("save pipeline processors: %w", err)
		}
	}
	for name, cfg := range settings.Pipeline.ProcessorConfigs {
		for key, value := range cfg {
			fullKey := "pipeline." + name + "." + key
			if err := s.configStore.Set(fullKey, value); err != nil {
				return fmt.Errorf("save %s: %w", fullKey, err)
			}
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	// Validate provider supports embeddings
	supported := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = defaultModel
	}

	// Local providers need a base URL; cloud providers use their own
	if provider.IsLocal() {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the completion provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}

	// Local providers need a base URL; cloud providers use their own
	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetRetrieval updates retrieval defaults.
func (s *SettingsService) SetRetrieval(retrieval domain.RetrievalSettings) error {
	if retrieval.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidConfig, retrieval.TopK)
	}
	if retrieval.MinScore < 0 || retrieval.MinScore > 1 {
		return fmt.Errorf("%w: min_score must be in [0,1], got %g", domain.ErrInvalidConfig, retrieval.MinScore)
	}
	if retrieval.QueryTimeout <= 0 {
		return fmt.Errorf("%w: query_timeout must be positive, got %s", domain.ErrInvalidConfig, retrieval.QueryTimeout)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Retrieval = retrieval

	return s.Save(settings)
}

// SetChunking updates the chunker's size and overlap.
func (s *SettingsService) SetChunking(chunkSize, overlap int) error {
	if chunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidConfig, chunkSize)
	}
	if overlap < 0 {
		return fmt.Errorf("%w: overlap must not be negative, got %d", domain.ErrInvalidConfig, overlap)
	}
	if overlap >= chunkSize {
		return fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", domain.ErrInvalidConfig, overlap, chunkSize)
	}

	if err := s.configStore.Set("pipeline.chunker.chunk_size", chunkSize); err != nil {
		return fmt.Errorf("save chunk size: %w", err)
	}
	if err := s.configStore.Set("pipeline.chunker.overlap", overlap); err != nil {
		return fmt.Errorf("save overlap: %w", err)
	}

	return nil
}

// Validate checks if current settings are internally consistent.
// The embedding provider is required for every pipeline operation; the
// completion provider stays optional.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider not configured; run 'finsight settings' to set one up")
	}

	if settings.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: retrieval top_k must be positive", domain.ErrInvalidConfig)
	}
	if settings.Retrieval.MinScore < 0 || settings.Retrieval.MinScore > 1 {
		return fmt.Errorf("%w: retrieval min_score must be in [0,1]", domain.ErrInvalidConfig)
	}

	chunkerCfg := settings.Pipeline.GetProcessorConfig("chunker")
	if chunkerCfg != nil {
		size, sizeOK := intFromAny(chunkerCfg["chunk_size"])
		overlap, overlapOK := intFromAny(chunkerCfg["overlap"])
		if sizeOK && overlapOK && overlap >= size {
			return fmt.Errorf("%w: chunker overlap %d must be smaller than chunk size %d", domain.ErrInvalidConfig, overlap, size)
		}
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// GetPipelineConfig returns the post-processor pipeline configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	defaults := domain.DefaultPipelineConfig()

	if processors := s.configStore.GetStringSlice("pipeline.processors"); len(processors) > 0 {
		defaults.Processors = processors
	}

	for _, name := range defaults.Processors {
		prefix := "pipeline." + name + "."
		cfg := s.loadProcessorConfig(prefix)
		if len(cfg) == 0 {
			continue
		}
		if defaults.ProcessorConfigs == nil {
			defaults.ProcessorConfigs = make(map[string]map[string]any)
		}
		existing := defaults.ProcessorConfigs[name]
		if existing == nil {
			existing = make(map[string]any)
		}
		for k, v := range cfg {
			existing[k] = v
		}
		defaults.ProcessorConfigs[name] = existing
	}

	return defaults
}

// loadProcessorConfig loads config keys with a given prefix into a map.
func (s *SettingsService) loadProcessorConfig(prefix string) map[string]any {
	cfg := make(map[string]any)

	knownKeys := []string{"chunk_size", "overlap", "max_length", "model"}
	for _, key := range knownKeys {
		if val, exists := s.configStore.Get(prefix + key); exists {
			cfg[key] = val
		}
	}

	return cfg
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return ""
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return ""
	}
	return provider
}

// intFromAny converts TOML and JSON number representations to int.
func intFromAny(val any) (int, bool) {
	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
