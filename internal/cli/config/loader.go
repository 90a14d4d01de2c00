package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/fxgallery/internal/infra/confloader"
)

// EnvPrefix is the environment variable prefix for CLI settings.
const EnvPrefix = "FXTOKEN_"

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".fxgallery", "cli.yaml")
	}
	return filepath.Join(homeDir, ".fxgallery", "cli.yaml")
}

// Load reads the config file at path, or the default path when empty, and
// applies FXTOKEN_* environment variables. A missing file is not an error.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	opts := []confloader.Option{confloader.WithEnvPrefix(EnvPrefix)}
	exists, err := fileExists(path)
	if err != nil {
		return nil, err
	}
	if exists {
		opts = append(opts, confloader.WithConfigFile(path))
	}

	cfg := Default()
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads only the config file at path, ignoring the environment.
func LoadFile(path string) (*CLIConfig, error) {
	cfg := Default()
	exists, err := fileExists(path)
	if err != nil || !exists {
		return cfg, err
	}

	l := confloader.NewLoader()
	if err := l.LoadFile(path); err != nil {
		return nil, err
	}
	if err := l.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
}

// Save writes cfg to path, or the default path when empty. The file may
// hold the admin key so it is only readable by its owner.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Set assigns value to the named key.
func Set(cfg *CLIConfig, key, value string) error {
	switch key {
	case "server":
		cfg.Server = value
	case "admin_key":
		cfg.AdminKey = value
	case "ca_file":
		cfg.CAFile = value
	case "output":
		cfg.Output = value
	case "cipher":
		cfg.Cipher = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// Get returns the value of the named key.
func Get(cfg *CLIConfig, key string) (string, error) {
	switch key {
	case "server":
		return cfg.Server, nil
	case "admin_key":
		return cfg.AdminKey, nil
	case "ca_file":
		return cfg.CAFile, nil
	case "output":
		return cfg.Output, nil
	case "cipher":
		return cfg.Cipher, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}
