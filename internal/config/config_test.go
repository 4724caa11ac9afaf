package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LLM_API_KEY", "LLM_MODEL", "LLM_TIMEOUT", "HISTORY_LIMIT", "SHOPIFY_STORE_NAME", "SHOPIFY_ACCESS_TOKEN", "DATABASE_URL", "DEFAULT_LANGUAGE", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Empty(t, cfg.Server.CORSOrigins)
	assert.Equal(t, "llama3-8b-8192", cfg.AI.Model)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 10, cfg.AI.HistoryLimit)
	assert.False(t, cfg.AI.Enabled())
	assert.Equal(t, "2024-04", cfg.Commerce.APIVersion)
	assert.Equal(t, 10*time.Second, cfg.Commerce.Timeout)
	assert.False(t, cfg.Commerce.Enabled())
	assert.Equal(t, "en", cfg.Language.Default)
	assert.Empty(t, cfg.Database.URL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LLM_API_KEY", "gsk_test")
	t.Setenv("LLM_TIMEOUT", "5")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("HISTORY_LIMIT", "4")
	t.Setenv("SHOPIFY_STORE_NAME", "demo.myshopify.com")
	t.Setenv("SHOPIFY_ACCESS_TOKEN", "shpat_x")
	t.Setenv("SHOPIFY_TIMEOUT", "2500ms")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.AI.Enabled())
	assert.Equal(t, 5*time.Second, cfg.AI.Timeout)
	require.NotNil(t, cfg.AI.Temperature)
	assert.InDelta(t, 0.2, *cfg.AI.Temperature, 1e-9)
	assert.Equal(t, 4, cfg.AI.HistoryLimit)
	assert.True(t, cfg.Commerce.Enabled())
	assert.Equal(t, 2500*time.Millisecond, cfg.Commerce.Timeout)
	assert.Equal(t, "https://demo.myshopify.com/admin/api/2024-04", cfg.Commerce.Endpoint())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"LLM_TIMEOUT":     "soon",
		"LLM_TOP_P":       "high",
		"HISTORY_LIMIT":   "ten",
		"SHOPIFY_TIMEOUT": "-3",
		"PORT":            "80 80",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}
