package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk CLI configuration, kept under
// ~/.config/carebridge/config.yaml. Flags and environment variables
// override it.
type FileConfig struct {
	ClientURL string `yaml:"client_url"`
	AdminURL  string `yaml:"admin_url"`
	Token     string `yaml:"token"`
}

const defaultConfig = `# carebridge CLI configuration
# Values can also be set via CAREBRIDGE_CLIENT_API_URL,
# CAREBRIDGE_ADMIN_API_URL, and the --token flag.

# client_url: https://api.carebridge.health
# admin_url: https://admin-api.carebridge.health
# token: ""
`

// ConfigDir returns ~/.config/carebridge/ on all platforms.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "carebridge"), nil
}

// EnsureConfigDir creates the config directory and a default config.yaml
// if missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return os.WriteFile(configFile, []byte(defaultConfig), 0600)
	}
	return nil
}

// LoadFileConfig reads the YAML config at path, or the default location
// when path is empty. A missing file yields a zero config.
func LoadFileConfig(path string) (FileConfig, error) {
	var cfg FileConfig

	if path == "" {
		dir, err := ConfigDir()
		if err != nil {
			return cfg, err
		}
		path = filepath.Join(dir, "config.yaml")
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.ClientURL = strings.TrimSpace(cfg.ClientURL)
	cfg.AdminURL = strings.TrimSpace(cfg.AdminURL)
	cfg.Token = strings.TrimSpace(cfg.Token)
	return cfg, nil
}
