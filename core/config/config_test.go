package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Telegram:    TelegramConfig{Token: "123:abc"},
		ElasticPath: ElasticPathConfig{ClientID: "id-1", ClientSecret: "secret-1"},
		Redis:       RedisConfig{Addr: "localhost:6379"},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, Normalize(cfg))

	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, "https://api.moltin.com/", cfg.ElasticPath.BaseURL)
	assert.Equal(t, 3600, cfg.ElasticPath.TokenTTLSeconds)
	assert.Equal(t, "images", cfg.Images.Dir)
}

func TestNormalizeBaseURLTrailingSlash(t *testing.T) {
	cfg := validConfig()
	cfg.ElasticPath.BaseURL = "https://api.example.com"
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, "https://api.example.com/", cfg.ElasticPath.BaseURL)
}

func TestNormalizeRejectsMissingFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing token", func(c *Config) { c.Telegram.Token = "" }},
		{"missing client id", func(c *Config) { c.ElasticPath.ClientID = "" }},
		{"missing client secret", func(c *Config) { c.ElasticPath.ClientSecret = "" }},
		{"missing redis addr", func(c *Config) { c.Redis.Addr = "" }},
		{"bad run mode", func(c *Config) { c.Telegram.RunMode = "carrier-pigeon" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			assert.Error(t, Normalize(cfg))
		})
	}
}

func TestNormalizeWebhookMode(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "webhook"
	require.Error(t, Normalize(cfg), "webhook mode without webhook settings")

	cfg = validConfig()
	cfg.Telegram.RunMode = "Webhook"
	cfg.Webhook = WebhookConfig{URL: "https://bot.example.com/hook", Listen: "0.0.0.0", Port: 8443}
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, RunModeWebhook, cfg.Telegram.RunMode)
}

func TestNormalizePollingAlias(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "polling"
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
telegram:
  token: "123:abc"
elasticpath:
  client_id: "file-id"
  client_secret: "file-secret"
redis:
  addr: "localhost:6379"
images:
  dir: "/tmp/imgs"
`), 0o644))

	t.Setenv("ELASTIC_PATH_CLIENT_ID", "env-id")

	cfg, err := Load(path)
	require.NoError(t, err)
	// Environment wins over the file.
	assert.Equal(t, "env-id", cfg.ElasticPath.ClientID)
	assert.Equal(t, "file-secret", cfg.ElasticPath.ClientSecret)
	assert.Equal(t, "/tmp/imgs", cfg.Images.Dir)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
