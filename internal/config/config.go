package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	AppName        = "radio-browser-mcp"
	ConfigDir      = ".config/radio-browser-mcp"
	ConfigFileName = "config"

	DefaultTrackingInterval          = 60.0
	DefaultInitialReconnectDelay     = 0.1
	DefaultMaxReconnectDelay         = 30.0
	DefaultReconnectBackoffThreshold = 5.0
	DefaultMaxPlaylistBytes          = 262144
	DefaultLogLevel                  = "info"

	MinVolume = 0
	MaxVolume = 100
)

// AppVersion can be overridden at build time using ldflags:
// go build -ldflags "-X radio-browser-mcp/internal/config.AppVersion=1.0.0"
var AppVersion = "1.0.0"

// ClampVolume ensures volume is within the valid range [0, 100].
func ClampVolume(volume int) int {
	if volume < MinVolume {
		return MinVolume
	}
	if volume > MaxVolume {
		return MaxVolume
	}
	return volume
}

// Config holds all runtime settings. Every field maps to a RADIO_-prefixed
// environment variable; an optional config.yaml in ~/.config/radio-browser-mcp
// is read first and the environment wins.
type Config struct {
	EnableBackgroundTracking         bool    `mapstructure:"enable_background_tracking"`
	TrackingIntervalSeconds          float64 `mapstructure:"tracking_interval"`
	InitialReconnectDelaySeconds     float64 `mapstructure:"initial_reconnect_delay"`
	MaxReconnectDelaySeconds         float64 `mapstructure:"max_reconnect_delay"`
	ReconnectBackoffThresholdSeconds float64 `mapstructure:"reconnect_backoff_threshold"`
	MaxPlaylistBytes                 int64   `mapstructure:"max_playlist_bytes"`
	DBPath                           string  `mapstructure:"db_path"`
	MetricsAddr                      string  `mapstructure:"metrics_addr"`
	LogLevel                         string  `mapstructure:"log_level"`
}

func (c *Config) TrackingInterval() time.Duration {
	return secondsToDuration(c.TrackingIntervalSeconds)
}

func (c *Config) InitialReconnectDelay() time.Duration {
	return secondsToDuration(c.InitialReconnectDelaySeconds)
}

func (c *Config) MaxReconnectDelay() time.Duration {
	return secondsToDuration(c.MaxReconnectDelaySeconds)
}

func (c *Config) ReconnectBackoffThreshold() time.Duration {
	return secondsToDuration(c.ReconnectBackoffThresholdSeconds)
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

func DefaultConfig() *Config {
	return &Config{
		EnableBackgroundTracking:         true,
		TrackingIntervalSeconds:          DefaultTrackingInterval,
		InitialReconnectDelaySeconds:     DefaultInitialReconnectDelay,
		MaxReconnectDelaySeconds:         DefaultMaxReconnectDelay,
		ReconnectBackoffThresholdSeconds: DefaultReconnectBackoffThreshold,
		MaxPlaylistBytes:                 DefaultMaxPlaylistBytes,
		DBPath:                           DefaultDBPath(),
		MetricsAddr:                      "",
		LogLevel:                         DefaultLogLevel,
	}
}

// DefaultDBPath places the SQLite database under the user's data directory,
// falling back to the working directory when no home is resolvable.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "radio.db"
	}
	return filepath.Join(home, ".local", "share", "radio-browser-mcp", "radio.db")
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RADIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	keys := []string{
		"enable_background_tracking",
		"tracking_interval",
		"initial_reconnect_delay",
		"max_reconnect_delay",
		"reconnect_backoff_threshold",
		"max_playlist_bytes",
		"db_path",
		"metrics_addr",
		"log_level",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	v.SetDefault("enable_background_tracking", true)
	v.SetDefault("tracking_interval", DefaultTrackingInterval)
	v.SetDefault("initial_reconnect_delay", DefaultInitialReconnectDelay)
	v.SetDefault("max_reconnect_delay", DefaultMaxReconnectDelay)
	v.SetDefault("reconnect_backoff_threshold", DefaultReconnectBackoffThreshold)
	v.SetDefault("max_playlist_bytes", DefaultMaxPlaylistBytes)
	v.SetDefault("db_path", DefaultDBPath())
	v.SetDefault("metrics_addr", "")
	v.SetDefault("log_level", DefaultLogLevel)

	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ConfigDir))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.sanitize()
	return cfg, nil
}

// Out-of-range settings fall back to defaults rather than failing startup.
func (c *Config) sanitize() {
	if c.TrackingIntervalSeconds <= 0 {
		c.TrackingIntervalSeconds = DefaultTrackingInterval
	}
	if c.InitialReconnectDelaySeconds <= 0 {
		c.InitialReconnectDelaySeconds = DefaultInitialReconnectDelay
	}
	if c.MaxReconnectDelaySeconds <= 0 {
		c.MaxReconnectDelaySeconds = DefaultMaxReconnectDelay
	}
	if c.MaxReconnectDelaySeconds < c.InitialReconnectDelaySeconds {
		c.MaxReconnectDelaySeconds = c.InitialReconnectDelaySeconds
	}
	if c.ReconnectBackoffThresholdSeconds <= 0 {
		c.ReconnectBackoffThresholdSeconds = DefaultReconnectBackoffThreshold
	}
	if c.MaxPlaylistBytes <= 0 {
		c.MaxPlaylistBytes = DefaultMaxPlaylistBytes
	}
	if c.DBPath == "" {
		c.DBPath = DefaultDBPath()
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}
