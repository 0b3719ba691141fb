package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "openai", cfg.API.GetActiveProvider())
	assert.Equal(t, 10, cfg.Agent.MaxIterations)
	assert.Equal(t, 120*time.Second, cfg.Agent.IterationTimeout)
	assert.Equal(t, "example-namespace", cfg.Pinecone.Namespace)
	assert.Equal(t, ":8000", cfg.Server.Addr)
}

func TestLoadFromFileWithEnvExpansion(t *testing.T) {
	t.Setenv("TEST_COPILOT_KEY", "sk-from-env")
	t.Setenv("OPENAI_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
api:
  openai_key: ${TEST_COPILOT_KEY}
model:
  name: gpt-4o-mini
agent:
  max_iterations: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.API.OpenAIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.Model.Name)
	assert.Equal(t, 5, cfg.Agent.MaxIterations)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-override")
	t.Setenv("COPILOT_MODEL", "gpt-4.1")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model:\n  name: gpt-4o\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-override", cfg.API.OpenAIKey)
	assert.Equal(t, "gpt-4.1", cfg.Model.Name)
}

func TestValidateRequiresKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.OpenAIKey = ""

	assert.ErrorIs(t, cfg.Validate(), ErrMissingAuth)

	cfg.API.OpenAIKey = "sk-test"
	assert.NoError(t, cfg.Validate())

	// Ollama needs no key
	cfg.API.OpenAIKey = ""
	cfg.API.ActiveProvider = "ollama"
	assert.NoError(t, cfg.Validate())
}
