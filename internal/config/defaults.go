package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = 32
	}
	if cfg.Server.RequestTimeoutSecs == 0 {
		cfg.Server.RequestTimeoutSecs = 60
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "./data/docintel.db"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "random"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.Seed == 0 {
		cfg.Embedding.Seed = 42
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	oa := &cfg.Embedding.OpenAI
	if oa.Model == "" {
		oa.Model = "text-embedding-3-small"
	}
	if oa.APIKeyEnv == "" {
		oa.APIKeyEnv = "OPENAI_API_KEY"
	}
	if oa.TimeoutSecs == 0 {
		oa.TimeoutSecs = 30
	}
	if oa.BatchSize == 0 {
		oa.BatchSize = 64
	}
	if oa.Concurrency == 0 {
		oa.Concurrency = 4
	}
	if cfg.Index.Type == "" {
		cfg.Index.Type = "memory"
	}
	if cfg.Chunking.ChunkSize == 0 {
		cfg.Chunking.ChunkSize = 500
	}
	if cfg.Search.DefaultTopK == 0 {
		cfg.Search.DefaultTopK = 5
	}
	if cfg.Search.MaxTopK == 0 {
		cfg.Search.MaxTopK = 100
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = DefaultGenerationModel(cfg.Generation.Provider)
	}
	if cfg.Generation.APIKeyEnv == "" {
		cfg.Generation.APIKeyEnv = DefaultGenerationKeyEnv(cfg.Generation.Provider)
	}
	if cfg.Generation.TimeoutSecs == 0 {
		cfg.Generation.TimeoutSecs = 30
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".pdf", ".txt", ".md"}
	}
}

// DefaultGenerationModel returns the model used for a generation provider when none is configured.
func DefaultGenerationModel(provider string) string {
	if provider == "gemini" {
		return "gemini-2.0-flash"
	}
	return "gpt-4o-mini"
}

// DefaultGenerationKeyEnv returns the environment variable holding the provider's API key.
func DefaultGenerationKeyEnv(provider string) string {
	if provider == "gemini" {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}
