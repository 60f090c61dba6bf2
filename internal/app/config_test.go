package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t,
		"OYSTER_CONFIG_PATH", "PORT", "HTTP_ADDR", "OPENAI_MODEL", "OPENAI_TEMPERATURE",
		"ENRICH_ADAPTER_CONCURRENCY", "ENRICH_ADAPTER_TIMEOUT",
		"DATABASE_URL", "POSTGRES_HOST", "SQLITE_PATH",
		"GOOGLE_APPLICATION_CREDENTIALS", "GOOGLE_APPLICATION_CREDENTIALS_JSON",
	)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTP.Addr)
	require.Equal(t, 8, cfg.Enrich.AdapterConcurrency)
	require.Equal(t, 60*time.Second, cfg.Enrich.AdapterTimeout)
	require.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	require.Nil(t, cfg.OpenAI.Temperature)
	require.False(t, cfg.Database.Configured())
	require.False(t, cfg.Speech.Credentials().Configured())
}

func TestLoadConfigRequiresOpenAIKey(t *testing.T) {
	t.Setenv("OYSTER_CONFIG_PATH", "")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := LoadConfig()
	require.ErrorContains(t, err, "OPENAI_API_KEY")
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_mode: production
http:
  addr: ":9000"
  cors_origins: ["https://app.oyster.ai"]
openai:
  api_key: sk-file
  model: gpt-4.1-mini
  temperature: 0.3
enrich:
  adapter_concurrency: 4
  adapter_timeout: 45s
database:
  sqlite_path: /tmp/oyster.db
`), 0o600))

	clearEnv(t, "HTTP_ADDR", "OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_TEMPERATURE", "LOG_MODE", "ENRICH_ADAPTER_CONCURRENCY")
	t.Setenv("OYSTER_CONFIG_PATH", path)
	t.Setenv("PORT", "7070")
	t.Setenv("ENRICH_ADAPTER_TIMEOUT", "30")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/secrets/sa.json")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "production", cfg.LogMode)
	require.Equal(t, ":7070", cfg.HTTP.Addr)
	require.Equal(t, []string{"https://app.oyster.ai"}, cfg.HTTP.CORSOrigins)
	require.Equal(t, "sk-file", cfg.OpenAI.APIKey)
	require.Equal(t, "gpt-4.1-mini", cfg.OpenAI.Model)
	require.NotNil(t, cfg.OpenAI.Temperature)
	require.InDelta(t, 0.3, *cfg.OpenAI.Temperature, 1e-9)
	require.Equal(t, 4, cfg.Enrich.AdapterConcurrency)
	require.Equal(t, 30*time.Second, cfg.Enrich.AdapterTimeout)
	require.True(t, cfg.Database.Configured())
	require.True(t, cfg.Speech.Credentials().Configured())
}

func TestSplitList(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, splitList(" a, ,b ,"))
	require.Nil(t, splitList(""))
}
