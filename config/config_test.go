package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/fincalc/fx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, fx.DefaultURL, cfg.FX.URL)
	assert.Equal(t, "USD", cfg.FX.Base)
	assert.Equal(t, "INR", cfg.FX.Quote)
	assert.Equal(t, 5*time.Second, cfg.FX.Timeout)
	assert.Empty(t, cfg.FX.CacheDir)
	assert.Equal(t, "INR", cfg.Currency.Local)
	assert.Equal(t, "USD", cfg.Currency.Foreign)
	assert.Equal(t, 300*time.Millisecond, cfg.Session.Debounce)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.yaml", `
fx:
  url: http://localhost:9999/latest
  quote: EUR
  timeout: 2s
currency:
  local: EUR
session:
  debounce: 150ms
logging:
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999/latest", cfg.FX.URL)
	assert.Equal(t, "EUR", cfg.FX.Quote)
	assert.Equal(t, 2*time.Second, cfg.FX.Timeout)
	assert.Equal(t, "EUR", cfg.Currency.Local)
	assert.Equal(t, "USD", cfg.Currency.Foreign)
	assert.Equal(t, 150*time.Millisecond, cfg.Session.Debounce)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FCALC_FX_URL", "http://example.test/rates")
	t.Setenv("FCALC_SERVER_ADDR", "127.0.0.1:9000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://example.test/rates", cfg.FX.URL)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
}

func TestLoadDotEnv(t *testing.T) {
	keys := []string{"FCALC_CURRENCY_FOREIGN", "FCALC_FX_BASE"}
	for _, key := range keys {
		if _, set := os.LookupEnv(key); set {
			t.Skipf("%s is set in the environment", key)
		}
	}
	t.Cleanup(func() {
		for _, key := range keys {
			os.Unsetenv(key)
		}
	})

	dir := t.TempDir()
	writeFile(t, dir, ".env", "FCALC_CURRENCY_FOREIGN=GBP\nFCALC_FX_BASE=GBP\n")
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "GBP", cfg.Currency.Foreign)
	assert.Equal(t, "GBP", cfg.FX.Base)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})
	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Load(writeFile(t, dir, "bad.yaml", "fx: [\n"))
		assert.Error(t, err)
	})
	t.Run("invalid values", func(t *testing.T) {
		_, err := Load(writeFile(t, dir, "invalid.yaml", "fx:\n  url: \"\"\nsession:\n  debounce: 0s\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fx.url")
		assert.Contains(t, err.Error(), "session.debounce")
	})
	t.Run("currencies outside the rate pair", func(t *testing.T) {
		_, err := Load(writeFile(t, dir, "pair.yaml", "currency:\n  foreign: EUR\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fx.base and fx.quote pair")
	})
	t.Run("reversed pair", func(t *testing.T) {
		cfg, err := Load(writeFile(t, dir, "reversed.yaml", "currency:\n  local: USD\n  foreign: INR\n"))
		require.NoError(t, err)
		assert.Equal(t, "USD", cfg.Currency.Local)
	})
}
