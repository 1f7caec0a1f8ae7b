package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rovshanmuradov/token-pulse/internal/domain"
	"github.com/rovshanmuradov/token-pulse/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 800*time.Millisecond, cfg.SeedDelay)
	assert.Equal(t, 3*time.Second, cfg.TickInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.HighlightWindow)
	assert.Equal(t, time.Second, cfg.JanitorInterval)
	assert.Equal(t, 20, cfg.TokensPerCategory)
	assert.Equal(t, DataSourceRandom, cfg.DataSource)
	assert.Equal(t, 3, cfg.LoadRetries)
	assert.Empty(t, cfg.HTTPAddr)
	assert.Equal(t, "token_pulse", cfg.MetricsNamespace)
	assert.Equal(t, 0.1, cfg.QuickBuyAmount)
	assert.Equal(t, "exports", cfg.ExportDir)
	assert.Equal(t, "csv", cfg.ExportFormat)
	assert.Equal(t, view.DefaultSpec(), cfg.ViewSpec())
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, "config.json", `{
		"tick_interval": 1000,
		"highlight_window": 250,
		"default_category": "migrated",
		"default_sort_field": "marketCap",
		"default_sort_direction": "desc",
		"random_seed": 42,
		"http_addr": ":8080"
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, 250*time.Millisecond, cfg.HighlightWindow)
	assert.Equal(t, uint64(42), cfg.RandomSeed)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, view.Spec{
		Category:  domain.CategoryMigrated,
		SortField: domain.FieldMarketCap,
		Direction: view.Desc,
	}, cfg.ViewSpec())
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", "data_source: file\ndata_file: tokens.json\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DataSourceFile, cfg.DataSource)
	assert.Equal(t, "tokens.json", cfg.DataFile)
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("TOKEN_PULSE_TICK_INTERVAL", "1500")
	t.Setenv("TOKEN_PULSE_HTTP_ADDR", "127.0.0.1:9090")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, "127.0.0.1:9090", cfg.HTTPAddr)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero tick", `{"tick_interval": 0}`},
		{"negative window", `{"highlight_window": -1}`},
		{"unknown category", `{"default_category": "trending"}`},
		{"unknown sort field", `{"default_sort_field": "bogusField"}`},
		{"bad direction", `{"default_sort_direction": "sideways"}`},
		{"file without path", `{"data_source": "file"}`},
		{"unknown source", `{"data_source": "websocket"}`},
		{"no tokens", `{"tokens_per_category": 0}`},
		{"no retries", `{"load_retries": 0}`},
		{"zero amount", `{"quickbuy_amount": 0}`},
		{"bad export format", `{"export_format": "xml"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, "config.json", tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
