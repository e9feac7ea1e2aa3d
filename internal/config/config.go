// Package config loads concord settings from defaults, an optional YAML file,
// CONCORD_ environment variables and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultFile is read from the working directory when no file is given.
const DefaultFile = "concord.yaml"

// Config holds application configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Guidance  GuidanceConfig  `mapstructure:"guidance"`
	Guide     GuideConfig     `mapstructure:"guide"`
	Advisor   AdvisorConfig   `mapstructure:"advisor"`
	History   HistoryConfig   `mapstructure:"history"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds the web onboarding server settings.
type ServerConfig struct {
	Addr          string        `mapstructure:"addr"`
	PageTTL       time.Duration `mapstructure:"page_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	Metrics       bool          `mapstructure:"metrics"`
}

// GuidanceConfig points the coordinators at the guidance service.
type GuidanceConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// GuideConfig holds the guidance API server settings.
type GuideConfig struct {
	Addr string `mapstructure:"addr"`
}

// AdvisorConfig selects how the guidance API produces advice.
type AdvisorConfig struct {
	Provider  string        `mapstructure:"provider"`
	Model     string        `mapstructure:"model"`
	BaseURL   string        `mapstructure:"base_url"`
	APIKeyEnv string        `mapstructure:"api_key_env"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// HistoryConfig selects where resolved attempts are recorded.
type HistoryConfig struct {
	Backend          string      `mapstructure:"backend"`
	Path             string      `mapstructure:"path"`
	Redis            RedisConfig `mapstructure:"redis"`
	EncryptionKeyEnv string      `mapstructure:"encryption_key_env"`
	PIIFields        []string    `mapstructure:"pii_fields"`
}

// RedisConfig holds the redis history settings.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// TelemetryConfig holds the tracing exporter settings.
type TelemetryConfig struct {
	OTelEndpoint string `mapstructure:"otel_endpoint"`
}

// History backends.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Advisor providers.
const (
	ProviderHeuristic = "heuristic"
	ProviderOpenAI    = "openai"
)

var (
	ErrUnknownBackend  = errors.New("unknown history backend")
	ErrUnknownProvider = errors.New("unknown advisor provider")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.page_ttl", 30*time.Minute)
	v.SetDefault("server.sweep_interval", time.Minute)
	v.SetDefault("server.metrics", true)

	v.SetDefault("guidance.endpoint", "http://localhost:5001/api/guidance")
	v.SetDefault("guidance.timeout", 30*time.Second)

	v.SetDefault("guide.addr", ":5001")

	v.SetDefault("advisor.provider", ProviderHeuristic)
	v.SetDefault("advisor.model", "gpt-4o-mini")
	v.SetDefault("advisor.base_url", "https://api.openai.com/v1")
	v.SetDefault("advisor.api_key_env", "OPENAI_API_KEY")
	v.SetDefault("advisor.timeout", 60*time.Second)

	v.SetDefault("history.backend", BackendNone)
	v.SetDefault("history.path", ".concord/history")
	v.SetDefault("history.redis.addr", "localhost:6379")
	v.SetDefault("history.redis.password", "")
	v.SetDefault("history.redis.db", 0)
	v.SetDefault("history.redis.prefix", "concord:history:")
	v.SetDefault("history.redis.ttl", time.Duration(0))
	v.SetDefault("history.encryption_key_env", "")
	v.SetDefault("history.pii_fields", []string{})

	v.SetDefault("telemetry.otel_endpoint", "")
}

// Load reads configuration. An explicit path must exist; otherwise DefaultFile
// is read when present. Overrides win over every other source and are keyed
// like the file ("server.addr").
func Load(path string, overrides map[string]any) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path == "" {
		path = os.Getenv("CONCORD_CONFIG")
	}
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	v.SetConfigFile(path)

	v.SetEnvPrefix("CONCORD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	for key, val := range overrides {
		v.Set(key, val)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings no component can honour.
func (c Config) Validate() error {
	switch c.History.Backend {
	case BackendNone, BackendMemory, BackendFile, BackendRedis, BackendSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.History.Backend)
	}
	switch c.Advisor.Provider {
	case ProviderHeuristic, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Advisor.Provider)
	}
	if c.Server.PageTTL < 0 || c.Guidance.Timeout < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}

// APIKey resolves the advisor key from the configured environment variable.
func (c AdvisorConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// EncryptionKey resolves the base64 history key from the configured environment variable.
func (c HistoryConfig) EncryptionKey() string {
	if c.EncryptionKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.EncryptionKeyEnv)
}
