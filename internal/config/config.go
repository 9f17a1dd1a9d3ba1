package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither --config nor HOLIDAZE_CONFIG is set.
const DefaultPath = "configs/config.yaml"

type Config struct {
	API struct {
		BaseURL            string  `yaml:"base_url"`
		APIKey             string  `yaml:"api_key"`
		TimeoutSeconds     int     `yaml:"timeout_seconds"`
		RateLimitPerSecond float64 `yaml:"rate_limit_per_second"`
		RateLimitBurst     int     `yaml:"rate_limit_burst"`
		CacheTTLSeconds    int     `yaml:"cache_ttl_seconds"`
	} `yaml:"api"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Booking struct {
		Timezone              string `yaml:"timezone"`
		SessionTimeoutMinutes int    `yaml:"session_timeout_minutes"`
		SearchDebounceMillis  int    `yaml:"search_debounce_ms"`
		PageSize              int    `yaml:"page_size"`
	} `yaml:"booking"`

	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// ResolvePath picks the config path: flag, then HOLIDAZE_CONFIG, then the
// default.
func ResolvePath(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv("HOLIDAZE_CONFIG"); env != "" {
		return env
	}
	return DefaultPath
}

// Load reads the YAML config at path. A missing file at the default path
// yields the defaults; a missing explicit file is an error.
func Load(path string) (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	explicit := path != ""
	if path == "" {
		path = DefaultPath
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Support ${ENV_VAR} placeholders in YAML config.
		data = []byte(os.ExpandEnv(string(data)))
		if err = yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && (!explicit || path == DefaultPath):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("booking.timezone: %w", err)
	}
	return &cfg, nil
}

// applyEnv lets common secrets be supplied without a config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("NOROFF_API_KEY"); v != "" && c.API.APIKey == "" {
		c.API.APIKey = v
	}
	if v := os.Getenv("HOLIDAZE_API_URL"); v != "" && c.API.BaseURL == "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" && c.Telegram.BotToken == "" {
		c.Telegram.BotToken = v
	}
}

func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "https://v2.api.noroff.dev"
	}
	if c.API.RateLimitPerSecond == 0 {
		c.API.RateLimitPerSecond = 5
	}
	if c.API.RateLimitBurst == 0 {
		c.API.RateLimitBurst = 10
	}
	if c.Booking.Timezone == "" {
		c.Booking.Timezone = "Local"
	}
	if c.Booking.PageSize <= 0 {
		c.Booking.PageSize = 12
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8090
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Location is the time zone "today" is computed in.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Booking.Timezone)
}

func (c *Config) APITimeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	if c.API.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.API.CacheTTLSeconds) * time.Second
}

func (c *Config) SessionTimeout() time.Duration {
	if c.Booking.SessionTimeoutMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.Booking.SessionTimeoutMinutes) * time.Minute
}

func (c *Config) SearchDebounce() time.Duration {
	if c.Booking.SearchDebounceMillis <= 0 {
		return 300 * time.Millisecond
	}
	return time.Duration(c.Booking.SearchDebounceMillis) * time.Millisecond
}
