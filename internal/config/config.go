package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	APIBaseURL string `mapstructure:"api_base_url"`
	APIKey     string `mapstructure:"api_key"`
	AuthToken  string `mapstructure:"auth_token"`

	TimeoutSeconds int64         `mapstructure:"timeout_seconds"`
	Timeout        time.Duration `mapstructure:"-"`
	RetryCount     int           `mapstructure:"retry_count"`
	RetryDelayMs   int64         `mapstructure:"retry_delay_ms"`
	RetryDelay     time.Duration `mapstructure:"-"`
	VerifyTLS      bool          `mapstructure:"verify_tls"`

	ParallelWorkers int    `mapstructure:"parallel_workers"`
	EndpointsFile   string `mapstructure:"endpoints_file"`
	SinksFile       string `mapstructure:"sinks_file"`

	RecorderType       string        `mapstructure:"recorder_type"`
	RecorderPath       string        `mapstructure:"recorder_path"`
	RecorderTTLSeconds int64         `mapstructure:"recorder_ttl_seconds"`
	RecorderTTL        time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-apicheck")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("api_base_url", "")
	v.SetDefault("api_key", "")
	v.SetDefault("auth_token", "")
	v.SetDefault("timeout_seconds", 30)
	v.SetDefault("retry_count", 3)
	v.SetDefault("retry_delay_ms", 1000)
	v.SetDefault("verify_tls", true)
	v.SetDefault("parallel_workers", 4)
	v.SetDefault("endpoints_file", "./configs/endpoints.yaml")
	v.SetDefault("sinks_file", "./configs/sinks.yaml")
	v.SetDefault("recorder_type", "bbolt")
	v.SetDefault("recorder_path", "./data/exchanges.db")
	v.SetDefault("recorder_ttl_seconds", int64((24*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid timeout_seconds (must be positive seconds)")
	}
	cfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second

	if cfg.RetryCount < 0 {
		return nil, fmt.Errorf("invalid retry_count (must be >= 0)")
	}
	if cfg.RetryDelayMs <= 0 {
		return nil, fmt.Errorf("invalid retry_delay_ms (must be positive milliseconds)")
	}
	cfg.RetryDelay = time.Duration(cfg.RetryDelayMs) * time.Millisecond

	if cfg.ParallelWorkers <= 0 {
		return nil, fmt.Errorf("invalid parallel_workers (must be >= 1)")
	}

	if cfg.RecorderTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid recorder_ttl_seconds (must be positive seconds)")
	}
	cfg.RecorderTTL = time.Duration(cfg.RecorderTTLSeconds) * time.Second

	return &cfg, nil
}

// Redacted returns a copy safe for logging: credential fields are masked.
func (c *Config) Redacted() Config {
	cp := *c
	cp.APIKey = MaskSecret(c.APIKey)
	cp.AuthToken = MaskSecret(c.AuthToken)
	return cp
}

// MaskSecret hides the middle of a credential, keeping the first and last two
// characters of longer values so operators can still tell keys apart.
func MaskSecret(value string) string {
	if len(value) > 4 {
		return value[:2] + strings.Repeat("*", len(value)-4) + value[len(value)-2:]
	}
	return strings.Repeat("*", len(value))
}
