// Package models - Service configuration and operational settings.
// This file defines configuration structures for all service components.
//
// Configuration Philosophy:
// - Hierarchical configuration with logical grouping (server, storage, rate limiting, etc.)
// - Environment-friendly defaults that work out of the box
// - Comprehensive validation to catch misconfigurations early
// - Support for multiple deployment scenarios (development, production, cloud)
package models

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypePostgres = "postgres"
	StorageTypeSQLite   = "sqlite"
)

// Rate limit mode constants. The mode selects which built-in policy tier the
// admission limiter uses: development quotas are generous, production quotas
// are strict.
const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// Config is the root configuration structure containing all service settings.
//
// Configuration Structure:
// - Server: HTTP server and network settings
// - Storage: Admission event log persistence
// - RateLimit: Admission control quotas and mode
// - Upstream: AI backend forwarding
// - Logging: Structured logging and output configuration
// - Metrics: Monitoring and observability
type Config struct {
	Server        ServerConfig        `yaml:"server" json:"server"`
	Storage       StorageConfig       `yaml:"storage" json:"storage"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit" json:"rate_limit"`
	Upstream      UpstreamConfig      `yaml:"upstream" json:"upstream"`
	Logging       LoggingConfig       `yaml:"logging" json:"logging"`
	Metrics       MetricsConfig       `yaml:"metrics" json:"metrics"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

type ServerConfig struct {
	Port         int           `yaml:"port" json:"port"`
	Host         string        `yaml:"host" json:"host"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	TLSEnabled   bool          `yaml:"tls_enabled" json:"tls_enabled"`
	TLSCertFile  string        `yaml:"tls_cert_file" json:"tls_cert_file"`
	TLSKeyFile   string        `yaml:"tls_key_file" json:"tls_key_file"`
}

type StorageConfig struct {
	Type     string            `yaml:"type" json:"type"`
	Database DatabaseConfig    `yaml:"database" json:"database"`
	Options  map[string]string `yaml:"options" json:"options"`
}

type DatabaseConfig struct {
	DSN             string        `yaml:"dsn" json:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
}

// RateLimitConfig drives the admission limiter and the local token-bucket
// pre-filter. Per-endpoint quotas come from the built-in policy tier selected
// by Mode; Overrides lets operators replace individual endpoint quotas without
// a rebuild.
type RateLimitConfig struct {
	Enabled      bool                      `yaml:"enabled" json:"enabled"`
	Mode         string                    `yaml:"mode" json:"mode"`
	StoreTimeout time.Duration             `yaml:"store_timeout" json:"store_timeout"`
	Local        LocalLimitConfig          `yaml:"local" json:"local"`
	Overrides    map[string]EndpointPolicy `yaml:"overrides" json:"overrides"`
}

// LocalLimitConfig configures the per-process token-bucket pre-filter that
// runs before the store-backed check.
type LocalLimitConfig struct {
	Enabled           bool          `yaml:"enabled" json:"enabled"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	BurstSize         int           `yaml:"burst_size" json:"burst_size"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval" json:"cleanup_interval"`
}

// EndpointPolicy is an operator-supplied quota override for one endpoint.
type EndpointPolicy struct {
	MaxRequests int           `yaml:"max_requests" json:"max_requests"`
	Window      time.Duration `yaml:"window" json:"window"`
}

// UpstreamConfig describes the AI backend that admitted requests are
// forwarded to.
type UpstreamConfig struct {
	BaseURL        string        `yaml:"base_url" json:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
	MaxRetries     int           `yaml:"max_retries" json:"max_retries"`
	RetryInterval  time.Duration `yaml:"retry_interval" json:"retry_interval"`
	APIKey         string        `yaml:"api_key" json:"api_key"`
}

type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	Format   string `yaml:"format" json:"format"`
	Output   string `yaml:"output" json:"output"`
	FilePath string `yaml:"file_path" json:"file_path"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
	Port    int    `yaml:"port" json:"port"`
}

type ObservabilityConfig struct {
	ServiceName string        `yaml:"service_name" json:"service_name"`
	Tracing     TracingConfig `yaml:"tracing" json:"tracing"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	Exporter     string  `yaml:"exporter" json:"exporter"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" json:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate" json:"sample_rate"`
}

// NewDefaultConfig creates a configuration with production-ready defaults.
//
// Default Values Rationale:
// - Port 8080: Standard non-privileged HTTP port
// - 30-second timeouts: Balance between user experience and resource protection
// - Memory storage: Simple setup without external dependencies
// - Rate limiting enabled: Prevent abuse from the start
// - 2-second store timeout: A slow event log must not stall admitted traffic
// - Structured logging: Better for log aggregation and analysis
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
			TLSEnabled:   false,
		},
		Storage: StorageConfig{
			Type: StorageTypeMemory,
			Database: DatabaseConfig{
				MaxOpenConns:    25,
				MaxIdleConns:    5,
				ConnMaxLifetime: 5 * time.Minute,
			},
			Options: make(map[string]string),
		},
		RateLimit: RateLimitConfig{
			Enabled:      true,
			Mode:         ModeProduction,
			StoreTimeout: 2 * time.Second,
			Local: LocalLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				BurstSize:         30,
				CleanupInterval:   5 * time.Minute,
			},
			Overrides: make(map[string]EndpointPolicy),
		},
		Upstream: UpstreamConfig{
			BaseURL:        "http://localhost:9000",
			RequestTimeout: 60 * time.Second,
			MaxRetries:     2,
			RetryInterval:  500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
			Port:    9090,
		},
		Observability: ObservabilityConfig{
			ServiceName: "lanagate",
			Tracing: TracingConfig{
				Enabled:    false,
				Exporter:   "stdout",
				SampleRate: 1.0,
			},
		},
	}
}

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}

	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("invalid storage config: %w", err)
	}

	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("invalid rate limit config: %w", err)
	}

	if err := c.Upstream.Validate(); err != nil {
		return fmt.Errorf("invalid upstream config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}

	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("invalid metrics config: %w", err)
	}

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}

	return nil
}

func (sc *ServerConfig) Validate() error {
	if sc.Port <= 0 || sc.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}

	if sc.Host == "" {
		return errors.New("host cannot be empty")
	}

	if sc.ReadTimeout < 0 {
		return errors.New("read timeout cannot be negative")
	}

	if sc.WriteTimeout < 0 {
		return errors.New("write timeout cannot be negative")
	}

	if sc.IdleTimeout < 0 {
		return errors.New("idle timeout cannot be negative")
	}

	if sc.TLSEnabled {
		if sc.TLSCertFile == "" {
			return errors.New("TLS cert file is required when TLS is enabled")
		}
		if sc.TLSKeyFile == "" {
			return errors.New("TLS key file is required when TLS is enabled")
		}
	}

	return nil
}

func (stc *StorageConfig) Validate() error {
	switch stc.Type {
	case StorageTypeMemory:
		// Memory storage requires no additional configuration
	case StorageTypePostgres, StorageTypeSQLite:
		if stc.Database.DSN == "" {
			return errors.New("database DSN is required for database storage")
		}
	default:
		return fmt.Errorf("invalid storage type: %s", stc.Type)
	}

	return nil
}

func (rlc *RateLimitConfig) Validate() error {
	if !rlc.Enabled {
		return nil
	}

	if rlc.Mode != ModeDevelopment && rlc.Mode != ModeProduction {
		return fmt.Errorf("invalid rate limit mode: %s", rlc.Mode)
	}

	if rlc.StoreTimeout < 0 {
		return errors.New("store timeout cannot be negative")
	}

	if rlc.Local.Enabled {
		if rlc.Local.RequestsPerMinute <= 0 {
			return errors.New("local requests per minute must be positive")
		}
		if rlc.Local.BurstSize <= 0 {
			return errors.New("local burst size must be positive")
		}
		if rlc.Local.CleanupInterval <= 0 {
			return errors.New("local cleanup interval must be positive")
		}
	}

	for endpoint, policy := range rlc.Overrides {
		if policy.MaxRequests <= 0 {
			return fmt.Errorf("override for %s: max requests must be positive", endpoint)
		}
		if policy.Window <= 0 {
			return fmt.Errorf("override for %s: window must be positive", endpoint)
		}
	}

	return nil
}

func (uc *UpstreamConfig) Validate() error {
	if uc.BaseURL == "" {
		return errors.New("upstream base URL cannot be empty")
	}

	parsed, err := url.Parse(uc.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid upstream base URL: %s", uc.BaseURL)
	}

	if uc.RequestTimeout <= 0 {
		return errors.New("upstream request timeout must be positive")
	}

	if uc.MaxRetries < 0 {
		return errors.New("upstream max retries cannot be negative")
	}

	return nil
}

func (lc *LoggingConfig) Validate() error {
	validLevels := []string{"debug", "info", "warn", "error"}
	found := false
	for _, vl := range validLevels {
		if lc.Level == vl {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("invalid log level: %s", lc.Level)
	}

	validFormats := []string{"json", "text"}
	found = false
	for _, vf := range validFormats {
		if lc.Format == vf {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("invalid log format: %s", lc.Format)
	}

	validOutputs := []string{"stdout", "stderr", "file"}
	found = false
	for _, vo := range validOutputs {
		if lc.Output == vo {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("invalid log output: %s", lc.Output)
	}

	if lc.Output == "file" && lc.FilePath == "" {
		return errors.New("file path is required when output is file")
	}

	return nil
}

func (mc *MetricsConfig) Validate() error {
	if !mc.Enabled {
		return nil
	}

	if mc.Path == "" {
		return errors.New("metrics path cannot be empty")
	}

	if mc.Port <= 0 || mc.Port > 65535 {
		return errors.New("metrics port must be between 1 and 65535")
	}

	return nil
}

func (oc *ObservabilityConfig) Validate() error {
	if oc.ServiceName == "" {
		return errors.New("service name cannot be empty")
	}

	if oc.Tracing.Enabled {
		if oc.Tracing.Exporter != "stdout" && oc.Tracing.Exporter != "otlp" {
			return fmt.Errorf("invalid trace exporter: %s", oc.Tracing.Exporter)
		}
		if oc.Tracing.Exporter == "otlp" && oc.Tracing.OTLPEndpoint == "" {
			return errors.New("OTLP endpoint is required for the otlp exporter")
		}
		if oc.Tracing.SampleRate < 0 || oc.Tracing.SampleRate > 1 {
			return errors.New("trace sample rate must be between 0 and 1")
		}
	}

	return nil
}
