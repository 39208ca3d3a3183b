package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "policyqa", cfg.Name)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.Model)
	assert.Equal(t, "gemini-embedding-001", cfg.Embedding.Model)
	assert.Equal(t, "RETRIEVAL_DOCUMENT", cfg.Embedding.TaskType)
	assert.Equal(t, 16, cfg.Embedding.BatchSize)
	assert.Equal(t, "insurance_policies.csv", cfg.Dataset.CSVPath)
	assert.Equal(t, filepath.Join(StateDirName, "policyqa.db"), cfg.Store.DatabasePath)
	assert.False(t, cfg.Logging.Debug)
}

func TestLoad_FromFile(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
llm:
  model: gemini-2.5-flash
  api_key: file-key
dataset:
  csv_path: /data/policies.csv
logging:
  debug: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, "file-key", cfg.LLM.APIKey)
	assert.Equal(t, "/data/policies.csv", cfg.Dataset.CSVPath)
	assert.True(t, cfg.Logging.Debug)
	// Unset fields keep defaults.
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-embedding-001", cfg.Embedding.Model)
}

func TestLoad_ExplicitMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAMLErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [not a map"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("POLICYQA_MODEL", "gemini-2.5-flash")
	t.Setenv("POLICYQA_DATASET", "/tmp/policies.csv")
	t.Setenv("POLICYQA_DB", "/tmp/policyqa.db")
	t.Setenv("POLICYQA_DEBUG", "true")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  api_key: file-key\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// GEMINI_API_KEY wins over both the file and GOOGLE_API_KEY.
	assert.Equal(t, "gemini-key", cfg.LLM.APIKey)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, "/tmp/policies.csv", cfg.Dataset.CSVPath)
	assert.Equal(t, "/tmp/policyqa.db", cfg.Store.DatabasePath)
	assert.True(t, cfg.Logging.Debug)
}

func TestLLMTimeout(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "120s", cfg.LLM.Timeout)
	assert.Equal(t, float64(120), cfg.LLMTimeout().Seconds())

	cfg.LLM.Timeout = "bogus"
	assert.Equal(t, float64(120), cfg.LLMTimeout().Seconds())

	cfg.LLM.Timeout = "30s"
	assert.Equal(t, float64(30), cfg.LLMTimeout().Seconds())
}

func TestSaveLoad_Roundtrip(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("POLICYQA_MODEL", "")
	t.Setenv("POLICYQA_DATASET", "")
	t.Setenv("POLICYQA_DB", "")
	t.Setenv("POLICYQA_DEBUG", "")

	cfg := DefaultConfig()
	cfg.LLM.Model = "gemini-2.5-flash"
	cfg.Embedding.BatchSize = 32

	path := filepath.Join(t.TempDir(), StateDirName, "config.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", loaded.LLM.Model)
	assert.Equal(t, 32, loaded.Embedding.BatchSize)
}
