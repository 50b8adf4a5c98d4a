package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultBaseURL is the production API used when no base URL is configured.
const DefaultBaseURL = "banyan-api-production.up.railway.app"

// Config holds the application configuration
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Rephrase RephraseConfig `mapstructure:"rephrase"`
	Log      LogConfig      `mapstructure:"log"`
}

// APIConfig holds remote API settings
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StorageConfig holds client storage settings
type StorageConfig struct {
	Type     string `mapstructure:"type"`
	Path     string `mapstructure:"path"`
	DSN      string `mapstructure:"dsn"`
	MaxBytes int    `mapstructure:"max_bytes"`
}

// RephraseConfig selects where alternative phrasings come from
type RephraseConfig struct {
	Backend      string `mapstructure:"backend"`
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Verbose bool `mapstructure:"verbose"`
}

// LoadConfig loads .env, then configuration from file and environment variables
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.AutomaticEnv()
	v.BindEnv("api.base_url", "BANYAN_API_URL", "NEXT_PUBLIC_API_URL")
	v.BindEnv("api.timeout", "BANYAN_API_TIMEOUT")
	v.BindEnv("storage.type", "BANYAN_STORAGE_TYPE")
	v.BindEnv("storage.path", "BANYAN_STORAGE_PATH")
	v.BindEnv("storage.dsn", "DATABASE_URL")
	v.BindEnv("rephrase.backend", "BANYAN_REPHRASE_BACKEND")
	v.BindEnv("rephrase.gemini_api_key", "GEMINI_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.API.BaseURL = SecureBaseURL(cfg.API.BaseURL)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("storage.type", "json")
	v.SetDefault("storage.path", "./data/banyan.json")
	v.SetDefault("storage.max_bytes", 5*1024*1024)
	v.SetDefault("rephrase.backend", "api")
	v.SetDefault("log.verbose", false)
}

// Validate rejects settings no component can serve.
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "json", "pebble", "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for %s storage", c.Storage.Type)
		}
	case "memory":
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn (DATABASE_URL) is required for postgres storage")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	switch c.Rephrase.Backend {
	case "api", "local":
	case "gemini":
		if c.Rephrase.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini rephrase backend")
		}
	default:
		return fmt.Errorf("unsupported rephrase backend: %s", c.Rephrase.Backend)
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	return nil
}

// SecureBaseURL forces the https scheme and strips trailing slashes.
func SecureBaseURL(raw string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		rest := trimmed
		if i := strings.Index(rest, "://"); i >= 0 {
			rest = rest[i+3:]
		}
		return "https://" + strings.TrimRight(rest, "/")
	}
	u.Scheme = "https"
	return strings.TrimRight(u.String(), "/")
}
