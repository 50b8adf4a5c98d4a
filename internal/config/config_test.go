package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecureBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"banyan-api-production.up.railway.app", "https://banyan-api-production.up.railway.app"},
		{"http://example.com/", "https://example.com"},
		{"  https://example.com/api//  ", "https://example.com/api"},
		{"example.com:8443/v1", "https://example.com:8443/v1"},
		{"", "https://" + DefaultBaseURL},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SecureBaseURL(tt.in))
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("BANYAN_API_URL", "")
		t.Setenv("NEXT_PUBLIC_API_URL", "")
		t.Setenv("BANYAN_STORAGE_TYPE", "")
		t.Setenv("BANYAN_REPHRASE_BACKEND", "")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "https://"+DefaultBaseURL, cfg.API.BaseURL)
		assert.Equal(t, 10*time.Second, cfg.API.Timeout)
		assert.Equal(t, "json", cfg.Storage.Type)
		assert.Equal(t, "api", cfg.Rephrase.Backend)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("BANYAN_API_URL", "http://localhost:9000/")
		t.Setenv("BANYAN_API_TIMEOUT", "3s")
		t.Setenv("BANYAN_STORAGE_TYPE", "memory")
		t.Setenv("BANYAN_REPHRASE_BACKEND", "local")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "https://localhost:9000", cfg.API.BaseURL)
		assert.Equal(t, 3*time.Second, cfg.API.Timeout)
		assert.Equal(t, "memory", cfg.Storage.Type)
		assert.Equal(t, "local", cfg.Rephrase.Backend)
	})

	t.Run("legacy variable name", func(t *testing.T) {
		t.Setenv("BANYAN_API_URL", "")
		t.Setenv("NEXT_PUBLIC_API_URL", "api.example.org")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.org", cfg.API.BaseURL)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			API:      APIConfig{BaseURL: "https://x", Timeout: time.Second},
			Storage:  StorageConfig{Type: "json", Path: "./data/banyan.json"},
			Rephrase: RephraseConfig{Backend: "api"},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown storage", func(c *Config) { c.Storage.Type = "redis" }},
		{"postgres without dsn", func(c *Config) { c.Storage.Type = "postgres" }},
		{"json without path", func(c *Config) { c.Storage.Path = "" }},
		{"gemini without key", func(c *Config) { c.Rephrase.Backend = "gemini" }},
		{"unknown backend", func(c *Config) { c.Rephrase.Backend = "openai" }},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
