package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/docintel/internal/apperr"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
chunking:
  chunk_size: 200
embedding:
  provider: mock
  dimensions: 64
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Chunking.ChunkSize != 200 {
		t.Errorf("chunk_size = %d", cfg.Chunking.ChunkSize)
	}
	if cfg.Embedding.Provider != "mock" || cfg.Embedding.Dimensions != 64 {
		t.Errorf("embedding = %+v", cfg.Embedding)
	}
	if cfg.Search.DefaultTopK != 5 {
		t.Errorf("default_top_k should default to 5, got %d", cfg.Search.DefaultTopK)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
	if cfg.Generation.Enabled() {
		t.Error("generation should be disabled without a provider")
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_invalidChunkSize(t *testing.T) {
	path := writeConfig(t, `
chunking:
  chunk_size: -1
`)
	_, err := Load(path)
	if !errors.Is(err, apperr.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: "./data/db/docintel.db"
watch:
  directories: ["./inbox"]
`)
	dir := filepath.Dir(path)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantDB := filepath.Join(dir, "data", "db", "docintel.db")
	if cfg.Storage.DatabasePath != wantDB {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, wantDB)
	}
	if len(cfg.Watch.Directories) != 1 || cfg.Watch.Directories[0] != filepath.Join(dir, "inbox") {
		t.Errorf("watch directories = %v", cfg.Watch.Directories)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("server defaults: %+v", cfg.Server)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("default dimensions: got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.Provider != "random" {
		t.Errorf("default provider: got %s", cfg.Embedding.Provider)
	}
	if cfg.Chunking.ChunkSize != 500 {
		t.Errorf("default chunk size: got %d", cfg.Chunking.ChunkSize)
	}
	if cfg.Index.Type != "memory" {
		t.Errorf("default index type: got %s", cfg.Index.Type)
	}
	if cfg.Generation.Model != "gpt-4o-mini" {
		t.Errorf("default generation model: got %s", cfg.Generation.Model)
	}
	if len(cfg.Watch.Extensions) != 3 || cfg.Watch.Extensions[0] != ".pdf" {
		t.Errorf("watch extensions: got %v", cfg.Watch.Extensions)
	}
	if cfg.Server.MaxUploadBytes() != 32<<20 {
		t.Errorf("max upload bytes: got %d", cfg.Server.MaxUploadBytes())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestApplyDefaults_geminiGeneration(t *testing.T) {
	cfg := &Config{Generation: GenerationConfig{Provider: "gemini"}}
	ApplyDefaults(cfg)
	if cfg.Generation.Model != "gemini-2.0-flash" || cfg.Generation.APIKeyEnv != "GEMINI_API_KEY" {
		t.Errorf("gemini defaults: %+v", cfg.Generation)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero dimensions", func(c *Config) { c.Embedding.Dimensions = 0 }},
		{"negative top_k", func(c *Config) { c.Search.DefaultTopK = -3 }},
		{"max below default", func(c *Config) { c.Search.MaxTopK = 1 }},
		{"unknown provider", func(c *Config) { c.Embedding.Provider = "word2vec" }},
		{"unknown index", func(c *Config) { c.Index.Type = "hnsw" }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"unknown generator", func(c *Config) { c.Generation.Provider = "claude" }},
		{"unknown fallback", func(c *Config) { c.Generation.Fallback = []string{"gemini", "llama"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, apperr.ErrInvalidConfiguration) {
				t.Errorf("Validate() = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := Default()
	cfg.Server.Port = 9090
	cfg.Storage.DatabasePath = "/tmp/db"
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
}
