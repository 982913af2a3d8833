package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "client_url: https://api.example.test\nadmin_url: https://admin.example.test\ntoken: \"  tok-123  \"\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg, err := LoadFileConfig(path)
	require.NoError(t, err)
	require.Equal(t, "https://api.example.test", cfg.ClientURL)
	require.Equal(t, "https://admin.example.test", cfg.AdminURL)
	require.Equal(t, "tok-123", cfg.Token)
}

func TestLoadFileConfigMissingFile(t *testing.T) {
	cfg, err := LoadFileConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, FileConfig{}, cfg)
}

func TestLoadFileConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("client_url: [unclosed"), 0600))

	_, err := LoadFileConfig(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse config")
}
