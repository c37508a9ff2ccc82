package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"TELEGRAM_BOT_TOKEN"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format string `yaml:"format" envconfig:"LOG_FORMAT"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

// ElasticPathConfig holds credentials and endpoints for the commerce backend.
type ElasticPathConfig struct {
	BaseURL      string `yaml:"base_url" envconfig:"ELASTIC_PATH_BASE_URL"`
	ClientID     string `yaml:"client_id" envconfig:"ELASTIC_PATH_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" envconfig:"ELASTIC_PATH_CLIENT_SECRET"`
	// TokenTTLSeconds is the fallback token lifetime used when the token
	// endpoint does not report an expiry.
	TokenTTLSeconds int `yaml:"token_ttl_seconds" envconfig:"ELASTIC_PATH_TOKEN_TTL_SECONDS"`
}

// RedisConfig holds connection settings for the session store.
type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
}

// ImagesConfig controls the transient product image directory.
type ImagesConfig struct {
	Dir string `yaml:"dir" envconfig:"IMAGES_DIR"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	defaultBaseURL   = "https://api.moltin.com/"
	defaultImagesDir = "images"
	defaultTokenTTL  = 3600
)

// Config aggregates the bot configuration.
type Config struct {
	Telegram    TelegramConfig    `yaml:"telegram"`
	Webhook     WebhookConfig     `yaml:"webhook"`
	Logging     LoggingConfig     `yaml:"logging"`
	ElasticPath ElasticPathConfig `yaml:"elasticpath"`
	Redis       RedisConfig       `yaml:"redis"`
	Images      ImagesConfig      `yaml:"images"`
}

// Load reads configuration from a YAML file and environment variables.
// An empty path skips the file and relies on env only.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	if cfg.ElasticPath.ClientID == "" || cfg.ElasticPath.ClientSecret == "" {
		return fmt.Errorf("elasticpath client_id and client_secret are required")
	}
	if strings.TrimSpace(cfg.ElasticPath.BaseURL) == "" {
		cfg.ElasticPath.BaseURL = defaultBaseURL
	}
	if !strings.HasSuffix(cfg.ElasticPath.BaseURL, "/") {
		cfg.ElasticPath.BaseURL += "/"
	}
	if cfg.ElasticPath.TokenTTLSeconds <= 0 {
		cfg.ElasticPath.TokenTTLSeconds = defaultTokenTTL
	}

	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		return fmt.Errorf("redis.addr is required")
	}

	if strings.TrimSpace(cfg.Images.Dir) == "" {
		cfg.Images.Dir = defaultImagesDir
	}

	return nil
}
