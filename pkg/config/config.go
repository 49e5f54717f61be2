package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// FileName is the settings file looked up next to the installed binary.
	FileName = "config.json"
	// ExampleFileName is the template shipped alongside FileName.
	ExampleFileName = FileName + ".example"
)

var (
	// ErrNotFound is returned when the settings file does not exist.
	ErrNotFound = fmt.Errorf("%s not found. Please create it from %s", FileName, ExampleFileName)
	// ErrMissingAPIKey is returned when the settings file has no geminiApiKey.
	ErrMissingAPIKey = fmt.Errorf("geminiApiKey is required in %s", FileName)
)

// Config holds the settings read from config.json.
type Config struct {
	GeminiAPIKey string `mapstructure:"geminiApiKey"`
}

// DefaultPath returns the location of config.json relative to the running executable.
func DefaultPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("error locating executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), FileName), nil
}

// Load reads and validates the settings file at path. It is meant to run once
// at startup; a non-nil error should be treated as fatal.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports whether the configuration can be used to start the server.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
