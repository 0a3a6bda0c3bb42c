package descriptor_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhgd/typical/descriptor"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "typical.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_ParsesEveryKey(t *testing.T) {
	path := writeConfig(t, `
strict = true
language = "ja"
case = "camel"
descriptors = ["types.yaml", "more.yaml"]
log_level = "debug"
`)
	cfg, err := descriptor.LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "ja", cfg.Language)
	assert.Equal(t, "camel", cfg.Case)
	assert.Equal(t, []string{"types.yaml", "more.yaml"}, cfg.Descriptors)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_UnknownKeyFails(t *testing.T) {
	path := writeConfig(t, "strictt = true\n")
	_, err := descriptor.LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strictt")
}

func TestDefaultConfig(t *testing.T) {
	cfg := descriptor.DefaultConfig()
	assert.False(t, cfg.Strict)
	assert.Equal(t, "en", cfg.Language)
}
