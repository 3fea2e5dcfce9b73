package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", cfg.ServerURL)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, 8*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5*time.Second, cfg.MessageTTL)
	assert.Equal(t, "en-US", cfg.Locale)
	assert.Empty(t, cfg.ViewAddr)
	assert.Zero(t, cfg.Seed)
}

func TestParse_FromEnv(t *testing.T) {
	t.Setenv("DICEGAME_SERVER_URL", "http://dice.example:8080")
	t.Setenv("DICEGAME_POLL_INTERVAL", "500ms")
	t.Setenv("DICEGAME_LOCALE", "ru-RU")
	t.Setenv("DICEGAME_VIEW_ADDR", "127.0.0.1:7070")
	t.Setenv("DICEGAME_SEED", "42")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "http://dice.example:8080", cfg.ServerURL)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, "ru-RU", cfg.Locale)
	assert.Equal(t, "127.0.0.1:7070", cfg.ViewAddr)
	assert.Equal(t, int64(42), cfg.Seed)
}

func TestParse_Invalid(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad duration", key: "DICEGAME_POLL_INTERVAL", value: "soon"},
		{name: "zero interval", key: "DICEGAME_POLL_INTERVAL", value: "0s"},
		{name: "negative ttl", key: "DICEGAME_MESSAGE_TTL", value: "-1s"},
		{name: "bad seed", key: "DICEGAME_SEED", value: "lucky"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Parse()
			require.Error(t, err)
		})
	}
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DICEGAME_LOCALE=ru-RU\n"), 0o600))

	// Keep the variable scoped to this test.
	t.Setenv("DICEGAME_LOCALE", "")
	require.NoError(t, os.Unsetenv("DICEGAME_LOCALE"))

	require.NoError(t, LoadDotenv(path))
	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "ru-RU", cfg.Locale)
}

func TestLoadDotenv_Missing(t *testing.T) {
	err := LoadDotenv(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
