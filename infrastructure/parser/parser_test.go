package parser

import (
	"testing"

	"github.com/archernet/callbridge/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYamlConfigParser_Parse(t *testing.T) {
	data := []byte(`
module_name: bridge
functions: [add]
log:
  level: debug
  backend: zap
`)
	cfg, err := NewYamlConfigParser().Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "bridge", cfg.ModuleName)
	assert.Equal(t, []string{"add"}, cfg.Functions)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "zap", cfg.Log.Backend)
	// Unset keys keep their defaults.
	assert.Equal(t, entities.DefaultMaxRequestSize, cfg.MaxRequestSize)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.True(t, cfg.RecoverPanics)
}

func TestYamlConfigParser_Invalid(t *testing.T) {
	_, err := NewYamlConfigParser().Parse([]byte("module_name: [unterminated"))
	assert.Error(t, err)
}

func TestYamlConfigParser_Document(t *testing.T) {
	doc, err := NewYamlConfigParser().Document([]byte("max_request_size: 10\nlog:\n  level: warn\n"))
	require.NoError(t, err)
	assert.Equal(t, 10, doc["max_request_size"])
	assert.Contains(t, doc, "log")
}

func TestTomlConfigParser_Parse(t *testing.T) {
	data := []byte(`
module_name = "bridge"
max_request_size = 4096
recover_panics = false

[log]
format = "json"
`)
	cfg, err := NewTomlConfigParser().Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "bridge", cfg.ModuleName)
	assert.Equal(t, 4096, cfg.MaxRequestSize)
	assert.False(t, cfg.RecoverPanics)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestTomlConfigParser_UnknownKey(t *testing.T) {
	_, err := NewTomlConfigParser().Parse([]byte(`modul_name = "x"`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "modul_name")
}

func TestTomlConfigParser_Document(t *testing.T) {
	doc, err := NewTomlConfigParser().Document([]byte("functions = [\"add\", \"log\"]\n"))
	require.NoError(t, err)
	assert.Equal(t, []any{"add", "log"}, doc["functions"])
}
