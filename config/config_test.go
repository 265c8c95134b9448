package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hupe1980/pantrymesh/logging"
	"github.com/hupe1980/pantrymesh/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pantrymesh.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(func(o *Options) { o.EnvPrefix = "" })
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, validation.Strict, cfg.ValidationLevel())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, `
model:
  provider: ollama
  name: llama3.1
validation:
  level: moderate
store:
  driver: sqlite
  path: /tmp/pantry.db
factory:
  retry_backoff: 200ms
`)
	t.Setenv("PANTRYMESH_MODEL_NAME", "mistral")
	t.Setenv("PANTRYMESH_VALIDATION_MAX_ADDITIONAL", "5")
	t.Setenv("PANTRYMESH_ROUTER_LANGUAGE", "pl")

	cfg, err := Load(func(o *Options) { o.Path = path })
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.Model.Provider)
	assert.Equal(t, "mistral", cfg.Model.Name)
	assert.Equal(t, 60*time.Second, cfg.Model.Timeout, "defaults survive a partial file")
	assert.Equal(t, validation.Moderate, cfg.ValidationLevel())
	assert.Equal(t, 5, cfg.Validation.MaxAdditional)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "pl", cfg.Router.Language)
	assert.Equal(t, 200*time.Millisecond, cfg.Factory.RetryBackoff)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(func(o *Options) {
		o.Path = filepath.Join(t.TempDir(), "missing.yaml")
		o.EnvPrefix = ""
	})
	assert.Error(t, err)

	_, err = Load(func(o *Options) {
		o.Path = writeFile(t, "model: [unclosed")
		o.EnvPrefix = ""
	})
	assert.Error(t, err)

	_, err = Load(func(o *Options) {
		o.Path = writeFile(t, "validation:\n  level: extreme\nstore:\n  driver: sqlite\n")
		o.EnvPrefix = ""
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation.level")
	assert.Contains(t, err.Error(), "store.path")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Model.Provider = "bard"
	cfg.Logging.Format = "xml"
	cfg.Router.MaxConcurrent = -1
	err := cfg.Validate()
	require.Error(t, err)
	for _, field := range []string{"model.provider", "logging.format", "router.max_concurrent"} {
		assert.Contains(t, err.Error(), field)
	}
	assert.NoError(t, Default().Validate())
}

func TestTransformEnvKey(t *testing.T) {
	tests := map[string]string{
		"MODEL_BASE_URL":                "model.base_url",
		"REGISTRY_INTENT_MAPPINGS_FILE": "registry.intent_mappings_file",
		"STORE__PATH":                   "store.path",
		"LOGGING":                       "logging",
		"":                              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, transformEnvKey(in), in)
	}
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "debug"
	var l logging.Logger = cfg.NewLogger()
	assert.NotNil(t, l)
}
