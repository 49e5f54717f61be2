package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("returns the credential unchanged", func(t *testing.T) {
		path := writeConfig(t, `{"geminiApiKey": "AIza-test-key"}`)

		cfg, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "AIza-test-key", cfg.GeminiAPIKey)
	})

	t.Run("ignores unrelated fields", func(t *testing.T) {
		path := writeConfig(t, `{"geminiApiKey": "key", "comment": "local dev"}`)

		cfg, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "key", cfg.GeminiAPIKey)
	})

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), FileName)

		cfg, err := Load(path)

		assert.Nil(t, cfg)
		require.ErrorIs(t, err, ErrNotFound)
		assert.EqualError(t, err, "config.json not found. Please create it from config.json.example")
	})

	t.Run("missing credential field", func(t *testing.T) {
		path := writeConfig(t, `{"somethingElse": "value"}`)

		cfg, err := Load(path)

		assert.Nil(t, cfg)
		require.ErrorIs(t, err, ErrMissingAPIKey)
		assert.EqualError(t, err, "geminiApiKey is required in config.json")
	})

	t.Run("empty credential", func(t *testing.T) {
		path := writeConfig(t, `{"geminiApiKey": ""}`)

		_, err := Load(path)

		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := writeConfig(t, `{"geminiApiKey": `)

		cfg, err := Load(path)

		assert.Nil(t, cfg)
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrNotFound))
		assert.False(t, errors.Is(err, ErrMissingAPIKey))
		assert.Contains(t, err.Error(), "error reading config file")
	})
}

func TestValidate(t *testing.T) {
	assert.NoError(t, (&Config{GeminiAPIKey: "k"}).Validate())
	assert.ErrorIs(t, (&Config{}).Validate(), ErrMissingAPIKey)
}

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath()

	require.NoError(t, err)
	assert.Equal(t, FileName, filepath.Base(path))
	assert.True(t, filepath.IsAbs(path))
}
