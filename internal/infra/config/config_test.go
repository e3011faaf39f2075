package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"agent-orchestrator/internal/infra/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load()

	assert.Equal(t, "9020", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 6, cfg.Retrieval.TopK)
	assert.Equal(t, 2000, cfg.Retrieval.LocalBudget)
	assert.True(t, cfg.Rerank.Enabled)
	assert.InDelta(t, 0.6, cfg.Rerank.VectorWeight, 1e-9)
	assert.InDelta(t, 0.4, cfg.Rerank.LexicalWeight, 1e-9)
	assert.Equal(t, 900, cfg.Cache.TTLSeconds)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("RETRIEVAL_TOP_K", "10")
	t.Setenv("RERANK_ENABLED", "false")
	t.Setenv("RERANK_VECTOR_WEIGHT", "0.8")
	t.Setenv("LLM_MODEL", "gpt-4o")

	cfg := config.Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10, cfg.Retrieval.TopK)
	assert.False(t, cfg.Rerank.Enabled)
	assert.InDelta(t, 0.8, cfg.Rerank.VectorWeight, 1e-9)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("RETRIEVAL_TOP_K", "not-a-number")
	t.Setenv("RERANK_VECTOR_WEIGHT", "also-not")

	cfg := config.Load()

	assert.Equal(t, 6, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.6, cfg.Rerank.VectorWeight, 1e-9)
}

func TestLoad_SecretFromFile(t *testing.T) {
	dir := t.TempDir()
	secretPath := filepath.Join(dir, "llm_key")
	err := os.WriteFile(secretPath, []byte("file-secret\n"), 0o600)
	assert.NoError(t, err)

	t.Setenv("LLM_API_KEY_FILE", secretPath)

	cfg := config.Load()
	assert.Equal(t, "file-secret", cfg.LLM.APIKey)
}

func TestLoad_SecretEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	secretPath := filepath.Join(dir, "llm_key")
	err := os.WriteFile(secretPath, []byte("file-secret"), 0o600)
	assert.NoError(t, err)

	t.Setenv("LLM_API_KEY", "env-secret")
	t.Setenv("LLM_API_KEY_FILE", secretPath)

	cfg := config.Load()
	assert.Equal(t, "env-secret", cfg.LLM.APIKey)
}
