// Package config holds the policyqa configuration: YAML file with
// defaults and environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// StateDirName is the per-workspace directory holding the database,
// logs, and config.
const StateDirName = ".policyqa"

// Config holds all policyqa configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// LLM configures the generation/rewrite model.
	LLM LLMConfig `yaml:"llm"`

	// Embedding configures the embedding engine used at ingest time.
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Dataset configures the policy CSV input.
	Dataset DatasetConfig `yaml:"dataset"`

	// Store configures the SQLite database (vector index + session audit).
	Store StoreConfig `yaml:"store"`

	// Logging configures diagnostic file logging.
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the chat model.
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// EmbeddingConfig configures the embedding engine.
type EmbeddingConfig struct {
	Model    string `yaml:"model"`
	TaskType string `yaml:"task_type"`
	// BatchSize bounds how many documents are embedded per API call
	// during ingestion.
	BatchSize int `yaml:"batch_size"`
	// Parallelism bounds concurrent embedding batches during ingestion.
	Parallelism int `yaml:"parallelism"`
}

// DatasetConfig configures the policy dataset input.
type DatasetConfig struct {
	CSVPath string `yaml:"csv_path"`
}

// StoreConfig configures persistent storage.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures diagnostic logging.
type LoggingConfig struct {
	Debug bool   `yaml:"debug"`
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "policyqa",
		Version: "0.3.0",

		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-pro",
			BaseURL:  "https://generativelanguage.googleapis.com/v1beta",
			Timeout:  "120s",
		},

		Embedding: EmbeddingConfig{
			Model:       "gemini-embedding-001",
			TaskType:    "RETRIEVAL_DOCUMENT",
			BatchSize:   16,
			Parallelism: 4,
		},

		Dataset: DatasetConfig{
			CSVPath: "insurance_policies.csv",
		},

		Store: StoreConfig{
			DatabasePath: filepath.Join(StateDirName, "policyqa.db"),
		},

		Logging: LoggingConfig{
			Debug: false,
			Level: "info",
		},
	}
}

// Load reads the configuration. An explicit path must exist; an empty
// path falls back to <cwd>/.policyqa/config.yaml if present, defaults
// otherwise. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if path == "" {
		cwd, err := os.Getwd()
		if err == nil {
			path = filepath.Join(cwd, StateDirName, "config.yaml")
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case os.IsNotExist(err) && !explicit:
			// Missing default config is fine: run on defaults.
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variables on top of the loaded
// configuration. GEMINI_API_KEY wins over GOOGLE_API_KEY.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("POLICYQA_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("POLICYQA_DATASET"); v != "" {
		c.Dataset.CSVPath = v
	}
	if v := os.Getenv("POLICYQA_DB"); v != "" {
		c.Store.DatabasePath = v
	}
	if v := os.Getenv("POLICYQA_DEBUG"); v == "1" || v == "true" {
		c.Logging.Debug = true
	}
}

// LLMTimeout parses the configured LLM timeout, defaulting to two
// minutes on a missing or malformed value.
func (c *Config) LLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil || d <= 0 {
		return 2 * time.Minute
	}
	return d
}

// Save writes the configuration to the given path, creating parent
// directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
