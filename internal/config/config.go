package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. NETFETCH_LOGGING_LEVEL
const EnvPrefix = "NETFETCH"

// Config represents the entire application configuration
type Config struct {
	Client      ClientConfig      `mapstructure:"client"`
	Download    DownloadConfig    `mapstructure:"download"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ClientConfig contains outbound HTTP client settings
type ClientConfig struct {
	UserAgent             string `mapstructure:"user_agent"`
	ConnectTimeout        string `mapstructure:"connect_timeout"`
	ResponseHeaderTimeout string `mapstructure:"response_header_timeout"`
	MaxConnsPerHost       int    `mapstructure:"max_conns_per_host"`
	BufferSizeKB          int    `mapstructure:"buffer_size_kb"`
	SkipTLSVerify         bool   `mapstructure:"skip_tls_verify"`

	// RequestsPerHost limits outbound requests per second and host, 0 disables
	RequestsPerHost float64 `mapstructure:"requests_per_host"`
	RequestBurst    int     `mapstructure:"request_burst"`
}

// DownloadConfig contains task runtime settings
type DownloadConfig struct {
	OutputDir            string `mapstructure:"output_dir"`
	MaxConcurrent        int    `mapstructure:"max_concurrent"`
	ProgressLogInterval  string `mapstructure:"progress_log_interval"`
	ProgressSaveInterval string `mapstructure:"progress_save_interval"`
}

// HTTPConfig contains control API server configuration
type HTTPConfig struct {
	BindAddr     string `mapstructure:"bind_addr"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
	IdleTimeout  string `mapstructure:"idle_timeout"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// MaintenanceConfig contains history maintenance settings
type MaintenanceConfig struct {
	CleanupInterval string `mapstructure:"cleanup_interval"`
	HistoryMaxAge   string `mapstructure:"history_max_age"`
}

// setDefaults registers a default for every key so that environment
// overrides are picked up by Unmarshal
func setDefaults(v *viper.Viper) {
	v.SetDefault("client.user_agent", "netfetch/1.0")
	v.SetDefault("client.connect_timeout", "15s")
	v.SetDefault("client.response_header_timeout", "30s")
	v.SetDefault("client.max_conns_per_host", 16)
	v.SetDefault("client.buffer_size_kb", 64)
	v.SetDefault("client.skip_tls_verify", false)
	v.SetDefault("client.requests_per_host", 0)
	v.SetDefault("client.request_burst", 1)
	v.SetDefault("download.output_dir", "./downloads")
	v.SetDefault("download.max_concurrent", 4)
	v.SetDefault("download.progress_log_interval", "2s")
	v.SetDefault("download.progress_save_interval", "5s")
	v.SetDefault("http.bind_addr", "127.0.0.1:8080")
	v.SetDefault("http.read_timeout", "30s")
	v.SetDefault("http.write_timeout", "30s")
	v.SetDefault("http.idle_timeout", "60s")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("database.path", "./netfetch.db")
	v.SetDefault("maintenance.cleanup_interval", "1h")
	v.SetDefault("maintenance.history_max_age", "168h")
}

// Load loads configuration from the specified file path. An empty path
// uses defaults and environment overrides only.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate download config
	if c.Download.OutputDir == "" {
		return errors.New("download.output_dir is required")
	}
	if c.Download.MaxConcurrent < 1 || c.Download.MaxConcurrent > 64 {
		return errors.New("download.max_concurrent must be between 1 and 64")
	}
	if c.Client.MaxConnsPerHost < 0 {
		return errors.New("client.max_conns_per_host must not be negative")
	}
	if c.Client.RequestsPerHost < 0 {
		return errors.New("client.requests_per_host must not be negative")
	}
	if c.Client.BufferSizeKB < 0 {
		return errors.New("client.buffer_size_kb must not be negative")
	}

	// Validate durations
	durations := map[string]string{
		"client.connect_timeout":          c.Client.ConnectTimeout,
		"client.response_header_timeout":  c.Client.ResponseHeaderTimeout,
		"download.progress_log_interval":  c.Download.ProgressLogInterval,
		"download.progress_save_interval": c.Download.ProgressSaveInterval,
		"http.read_timeout":               c.HTTP.ReadTimeout,
		"http.write_timeout":              c.HTTP.WriteTimeout,
		"http.idle_timeout":               c.HTTP.IdleTimeout,
		"maintenance.cleanup_interval":    c.Maintenance.CleanupInterval,
		"maintenance.history_max_age":     c.Maintenance.HistoryMaxAge,
	}
	for key, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}

	// Validate logging config
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid levels
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
		// Valid formats
	default:
		return fmt.Errorf("invalid logging.format: %s", c.Logging.Format)
	}

	return nil
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, _ := time.ParseDuration(s)
	if d == 0 {
		return def
	}
	return d
}

// GetConnectTimeout returns the connect timeout as time.Duration
func (c *ClientConfig) GetConnectTimeout() time.Duration {
	return parseDuration(c.ConnectTimeout, 15*time.Second)
}

// GetResponseHeaderTimeout returns the response header timeout as time.Duration
func (c *ClientConfig) GetResponseHeaderTimeout() time.Duration {
	return parseDuration(c.ResponseHeaderTimeout, 30*time.Second)
}

// GetProgressLogInterval returns how often progress is logged per task
func (c *DownloadConfig) GetProgressLogInterval() time.Duration {
	return parseDuration(c.ProgressLogInterval, 2*time.Second)
}

// GetProgressSaveInterval returns how often progress is written to the history
func (c *DownloadConfig) GetProgressSaveInterval() time.Duration {
	return parseDuration(c.ProgressSaveInterval, 5*time.Second)
}

// GetReadTimeout returns the read timeout as time.Duration
func (c *HTTPConfig) GetReadTimeout() time.Duration {
	return parseDuration(c.ReadTimeout, 30*time.Second)
}

// GetWriteTimeout returns the write timeout as time.Duration
func (c *HTTPConfig) GetWriteTimeout() time.Duration {
	return parseDuration(c.WriteTimeout, 30*time.Second)
}

// GetIdleTimeout returns the idle timeout as time.Duration
func (c *HTTPConfig) GetIdleTimeout() time.Duration {
	return parseDuration(c.IdleTimeout, 60*time.Second)
}

// GetCleanupInterval returns the history cleanup interval as time.Duration
func (c *MaintenanceConfig) GetCleanupInterval() time.Duration {
	return parseDuration(c.CleanupInterval, time.Hour)
}

// GetHistoryMaxAge returns how long finished tasks are kept
func (c *MaintenanceConfig) GetHistoryMaxAge() time.Duration {
	return parseDuration(c.HistoryMaxAge, 7*24*time.Hour)
}
