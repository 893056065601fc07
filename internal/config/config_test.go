package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 64, cfg.Search.MaxRounds)
	assert.Equal(t, 10*time.Second, cfg.Search.Timeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("SERVER_SEARCH_RPS", "2.5")
	t.Setenv("SEARCH_MAX_ROUNDS", "16")
	t.Setenv("SEARCH_TIMEOUT", "750ms")
	t.Setenv("GRAPH_URI", "bolt://localhost:7687")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 2.5, cfg.HTTP.SearchRPS)
	assert.Equal(t, 16, cfg.Search.MaxRounds)
	assert.Equal(t, 750*time.Millisecond, cfg.Search.Timeout)
	assert.Equal(t, "bolt://localhost:7687", cfg.Graph.URI)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advisor.yaml")
	content := `
http:
  port: 7000
  searchRps: 1
  searchBurst: 3
graph:
  uri: bolt://graph:7687
search:
  maxRounds: 8
  timeout: 2s
logging:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SEARCH_MAX_ROUNDS", "12")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.HTTP.Port)
	assert.Equal(t, 3, cfg.HTTP.SearchBurst)
	assert.Equal(t, "bolt://graph:7687", cfg.Graph.URI)
	assert.Equal(t, 12, cfg.Search.MaxRounds)
	assert.Equal(t, 2*time.Second, cfg.Search.Timeout)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, defaultReadTimeout, cfg.HTTP.ReadTimeout)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "port", key: "SERVER_PORT", val: "70000"},
		{name: "timeout", key: "SEARCH_TIMEOUT", val: "soon"},
		{name: "rps", key: "SERVER_SEARCH_RPS", val: "-1"},
		{name: "rounds", key: "SEARCH_MAX_ROUNDS", val: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_FILE", "")
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.ErrorContains(t, err, "read config file")
}
