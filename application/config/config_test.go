package config

import (
	stdErrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/archernet/callbridge/domain/entities"
	"github.com/archernet/callbridge/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, entities.DefaultConfig(), *cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "bridge.yaml", "module_name: env\nfunctions: [add]\nlog:\n  level: debug\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env", cfg.ModuleName)
	assert.Equal(t, []string{"add"}, cfg.Functions)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "bridge.toml", "max_request_size = 2048\n[log]\nbackend = \"zap\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2048, cfg.MaxRequestSize)
	assert.Equal(t, "zap", cfg.Log.Backend)
	assert.Equal(t, entities.DefaultModuleName, cfg.ModuleName)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantCfg bool
	}{
		{name: "unknown extension", file: "bridge.json", content: "{}"},
		{name: "syntax error", file: "bridge.yaml", content: "log: [", wantCfg: false},
		{name: "schema violation", file: "bridge.yaml", content: "max_request_size: big\n", wantCfg: true},
		{name: "unknown key", file: "bridge.toml", content: "modul_name = \"x\"\n", wantCfg: true},
		{name: "tag violation", file: "bridge.yaml", content: "log:\n  level: loud\n", wantCfg: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			if tt.wantCfg {
				var cfgErr *errors.ConfigError
				assert.True(t, stdErrors.As(err, &cfgErr), "want ConfigError, got %v", err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
