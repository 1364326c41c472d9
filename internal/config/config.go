// Package config provides configuration loading and structs for the docintel server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperjump/docintel/internal/apperr"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Index      IndexConfig      `yaml:"index"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Search     SearchConfig     `yaml:"search"`
	Generation GenerationConfig `yaml:"generation"`
	Watch      WatchConfig      `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	MaxUploadMB        int    `yaml:"max_upload_mb"`
	RequestTimeoutSecs int    `yaml:"request_timeout_secs"`
}

// RequestTimeout returns the per-request deadline.
func (s ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSecs) * time.Second
}

// MaxUploadBytes returns the upload size limit in bytes.
func (s ServerConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

// StorageConfig holds the document catalog location.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// EmbeddingConfig selects and configures the embedder.
type EmbeddingConfig struct {
	// Provider is one of mock, random, onnx, openai.
	Provider   string       `yaml:"provider"`
	Dimensions int          `yaml:"dimensions"`
	Seed       int64        `yaml:"seed"`
	ModelPath  string       `yaml:"model_path"`
	MaxTokens  int          `yaml:"max_tokens"`
	CacheSize  int          `yaml:"cache_size"`
	OpenAI     OpenAIConfig `yaml:"openai"`
}

// OpenAIConfig holds settings for the OpenAI embedding client.
type OpenAIConfig struct {
	Model       string `yaml:"model"`
	APIKeyEnv   string `yaml:"api_key_env"`
	BaseURL     string `yaml:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
	Concurrency int    `yaml:"concurrency"`
}

// IndexConfig selects the vector index backend.
type IndexConfig struct {
	// Type is memory or faiss.
	Type string `yaml:"type"`
}

// ChunkingConfig holds the chunker window size in characters.
type ChunkingConfig struct {
	ChunkSize int `yaml:"chunk_size"`
}

// SearchConfig holds retrieval limits.
type SearchConfig struct {
	DefaultTopK int `yaml:"default_top_k"`
	MaxTopK     int `yaml:"max_top_k"`
}

// GenerationConfig configures the optional answer generator. An empty provider disables generation.
type GenerationConfig struct {
	Provider    string   `yaml:"provider"`
	Model       string   `yaml:"model"`
	APIKeyEnv   string   `yaml:"api_key_env"`
	BaseURL     string   `yaml:"base_url"`
	TimeoutSecs int      `yaml:"timeout_secs"`
	Fallback    []string `yaml:"fallback"`
}

// Enabled reports whether a generator provider is configured.
func (g GenerationConfig) Enabled() bool {
	return strings.TrimSpace(g.Provider) != ""
}

// Timeout returns the generation deadline.
func (g GenerationConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSecs) * time.Second
}

// WatchConfig holds inbox directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
}

// Load reads and parses the config file at path, applies defaults, expands paths and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	if cfg.Embedding.ModelPath != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	}
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied, used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Validate rejects settings the retrieval core cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Chunking.ChunkSize <= 0:
		return fmt.Errorf("%w: chunking.chunk_size must be positive, got %d", apperr.ErrInvalidConfiguration, c.Chunking.ChunkSize)
	case c.Embedding.Dimensions <= 0:
		return fmt.Errorf("%w: embedding.dimensions must be positive, got %d", apperr.ErrInvalidConfiguration, c.Embedding.Dimensions)
	case c.Search.DefaultTopK <= 0:
		return fmt.Errorf("%w: search.default_top_k must be positive, got %d", apperr.ErrInvalidConfiguration, c.Search.DefaultTopK)
	case c.Search.MaxTopK < c.Search.DefaultTopK:
		return fmt.Errorf("%w: search.max_top_k (%d) is below default_top_k (%d)", apperr.ErrInvalidConfiguration, c.Search.MaxTopK, c.Search.DefaultTopK)
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return fmt.Errorf("%w: server.port out of range: %d", apperr.ErrInvalidConfiguration, c.Server.Port)
	}
	switch c.Embedding.Provider {
	case "mock", "random", "onnx", "openai":
	default:
		return fmt.Errorf("%w: unknown embedding.provider %q", apperr.ErrInvalidConfiguration, c.Embedding.Provider)
	}
	switch c.Index.Type {
	case "memory", "faiss":
	default:
		return fmt.Errorf("%w: unknown index.type %q", apperr.ErrInvalidConfiguration, c.Index.Type)
	}
	for _, p := range append([]string{c.Generation.Provider}, c.Generation.Fallback...) {
		switch p {
		case "", "openai", "gemini":
		default:
			return fmt.Errorf("%w: unknown generation provider %q", apperr.ErrInvalidConfiguration, p)
		}
	}
	return nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
