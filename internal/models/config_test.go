package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	// Test server defaults
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, 30*time.Second, config.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, config.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, config.Server.IdleTimeout)
	assert.False(t, config.Server.TLSEnabled)

	// Test storage defaults
	assert.Equal(t, StorageTypeMemory, config.Storage.Type)
	assert.Equal(t, 25, config.Storage.Database.MaxOpenConns)
	assert.Equal(t, 5, config.Storage.Database.MaxIdleConns)
	assert.NotNil(t, config.Storage.Options)

	// Test rate limit defaults
	assert.True(t, config.RateLimit.Enabled)
	assert.Equal(t, ModeProduction, config.RateLimit.Mode)
	assert.Equal(t, 2*time.Second, config.RateLimit.StoreTimeout)
	assert.True(t, config.RateLimit.Local.Enabled)
	assert.Equal(t, 120, config.RateLimit.Local.RequestsPerMinute)
	assert.Equal(t, 30, config.RateLimit.Local.BurstSize)
	assert.NotNil(t, config.RateLimit.Overrides)

	// Test upstream defaults
	assert.Equal(t, "http://localhost:9000", config.Upstream.BaseURL)
	assert.Equal(t, 60*time.Second, config.Upstream.RequestTimeout)
	assert.Equal(t, 2, config.Upstream.MaxRetries)

	// Test logging defaults
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
	assert.Equal(t, "stdout", config.Logging.Output)

	// Test metrics defaults
	assert.True(t, config.Metrics.Enabled)
	assert.Equal(t, "/metrics", config.Metrics.Path)
	assert.Equal(t, 9090, config.Metrics.Port)

	// Test observability defaults
	assert.Equal(t, "lanagate", config.Observability.ServiceName)
	assert.False(t, config.Observability.Tracing.Enabled)
	assert.Equal(t, "stdout", config.Observability.Tracing.Exporter)
	assert.Equal(t, 1.0, config.Observability.Tracing.SampleRate)
}

func TestConfig_Validate_Defaults(t *testing.T) {
	config := NewDefaultConfig()
	assert.NoError(t, config.Validate())
}

func TestServerConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      ServerConfig
		expectError bool
	}{
		{
			name: "valid config",
			config: ServerConfig{
				Port: 8080,
				Host: "localhost",
			},
			expectError: false,
		},
		{
			name: "zero port",
			config: ServerConfig{
				Port: 0,
				Host: "localhost",
			},
			expectError: true,
		},
		{
			name: "port too large",
			config: ServerConfig{
				Port: 70000,
				Host: "localhost",
			},
			expectError: true,
		},
		{
			name: "empty host",
			config: ServerConfig{
				Port: 8080,
				Host: "",
			},
			expectError: true,
		},
		{
			name: "negative read timeout",
			config: ServerConfig{
				Port:        8080,
				Host:        "localhost",
				ReadTimeout: -1 * time.Second,
			},
			expectError: true,
		},
		{
			name: "TLS enabled without cert",
			config: ServerConfig{
				Port:       8080,
				Host:       "localhost",
				TLSEnabled: true,
				TLSKeyFile: "/path/key.pem",
			},
			expectError: true,
		},
		{
			name: "TLS enabled without key",
			config: ServerConfig{
				Port:        8080,
				Host:        "localhost",
				TLSEnabled:  true,
				TLSCertFile: "/path/cert.pem",
			},
			expectError: true,
		},
		{
			name: "TLS fully configured",
			config: ServerConfig{
				Port:        8080,
				Host:        "localhost",
				TLSEnabled:  true,
				TLSCertFile: "/path/cert.pem",
				TLSKeyFile:  "/path/key.pem",
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStorageConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      StorageConfig
		expectError bool
	}{
		{
			name:        "memory storage",
			config:      StorageConfig{Type: StorageTypeMemory},
			expectError: false,
		},
		{
			name: "postgres with DSN",
			config: StorageConfig{
				Type:     StorageTypePostgres,
				Database: DatabaseConfig{DSN: "postgres://localhost/lanagate"},
			},
			expectError: false,
		},
		{
			name:        "postgres without DSN",
			config:      StorageConfig{Type: StorageTypePostgres},
			expectError: true,
		},
		{
			name: "sqlite with DSN",
			config: StorageConfig{
				Type:     StorageTypeSQLite,
				Database: DatabaseConfig{DSN: "file:events.db"},
			},
			expectError: false,
		},
		{
			name:        "sqlite without DSN",
			config:      StorageConfig{Type: StorageTypeSQLite},
			expectError: true,
		},
		{
			name:        "unknown type",
			config:      StorageConfig{Type: "redis"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRateLimitConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      RateLimitConfig
		expectError bool
	}{
		{
			name:        "disabled skips validation",
			config:      RateLimitConfig{Enabled: false, Mode: "bogus"},
			expectError: false,
		},
		{
			name: "valid production mode",
			config: RateLimitConfig{
				Enabled: true,
				Mode:    ModeProduction,
			},
			expectError: false,
		},
		{
			name: "valid development mode",
			config: RateLimitConfig{
				Enabled: true,
				Mode:    ModeDevelopment,
			},
			expectError: false,
		},
		{
			name: "invalid mode",
			config: RateLimitConfig{
				Enabled: true,
				Mode:    "staging",
			},
			expectError: true,
		},
		{
			name: "negative store timeout",
			config: RateLimitConfig{
				Enabled:      true,
				Mode:         ModeProduction,
				StoreTimeout: -1 * time.Second,
			},
			expectError: true,
		},
		{
			name: "local enabled with zero rpm",
			config: RateLimitConfig{
				Enabled: true,
				Mode:    ModeProduction,
				Local: LocalLimitConfig{
					Enabled:   true,
					BurstSize: 10,
				},
			},
			expectError: true,
		},
		{
			name: "override with zero window",
			config: RateLimitConfig{
				Enabled: true,
				Mode:    ModeProduction,
				Overrides: map[string]EndpointPolicy{
					"/api/v1/chat": {MaxRequests: 10},
				},
			},
			expectError: true,
		},
		{
			name: "valid override",
			config: RateLimitConfig{
				Enabled: true,
				Mode:    ModeProduction,
				Overrides: map[string]EndpointPolicy{
					"/api/v1/chat": {MaxRequests: 10, Window: time.Minute},
				},
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpstreamConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      UpstreamConfig
		expectError bool
	}{
		{
			name: "valid config",
			config: UpstreamConfig{
				BaseURL:        "https://ai.lanamind.example",
				RequestTimeout: 30 * time.Second,
			},
			expectError: false,
		},
		{
			name:        "empty base URL",
			config:      UpstreamConfig{RequestTimeout: time.Second},
			expectError: true,
		},
		{
			name: "URL without scheme",
			config: UpstreamConfig{
				BaseURL:        "ai.lanamind.example",
				RequestTimeout: time.Second,
			},
			expectError: true,
		},
		{
			name: "zero timeout",
			config: UpstreamConfig{
				BaseURL: "https://ai.lanamind.example",
			},
			expectError: true,
		},
		{
			name: "negative retries",
			config: UpstreamConfig{
				BaseURL:        "https://ai.lanamind.example",
				RequestTimeout: time.Second,
				MaxRetries:     -1,
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoggingConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      LoggingConfig
		expectError bool
	}{
		{
			name:        "valid json stdout",
			config:      LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
			expectError: false,
		},
		{
			name:        "valid text stderr",
			config:      LoggingConfig{Level: "debug", Format: "text", Output: "stderr"},
			expectError: false,
		},
		{
			name:        "invalid level",
			config:      LoggingConfig{Level: "trace", Format: "json", Output: "stdout"},
			expectError: true,
		},
		{
			name:        "invalid format",
			config:      LoggingConfig{Level: "info", Format: "xml", Output: "stdout"},
			expectError: true,
		},
		{
			name:        "invalid output",
			config:      LoggingConfig{Level: "info", Format: "json", Output: "syslog"},
			expectError: true,
		},
		{
			name:        "file output without path",
			config:      LoggingConfig{Level: "info", Format: "json", Output: "file"},
			expectError: true,
		},
		{
			name:        "file output with path",
			config:      LoggingConfig{Level: "info", Format: "json", Output: "file", FilePath: "/var/log/lanagate.log"},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMetricsConfig_Validate(t *testing.T) {
	assert.NoError(t, (&MetricsConfig{Enabled: false}).Validate())
	assert.NoError(t, (&MetricsConfig{Enabled: true, Path: "/metrics", Port: 9090}).Validate())
	assert.Error(t, (&MetricsConfig{Enabled: true, Port: 9090}).Validate())
	assert.Error(t, (&MetricsConfig{Enabled: true, Path: "/metrics", Port: 0}).Validate())
}

func TestObservabilityConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      ObservabilityConfig
		expectError bool
	}{
		{
			name:        "tracing disabled",
			config:      ObservabilityConfig{ServiceName: "lanagate"},
			expectError: false,
		},
		{
			name:        "empty service name",
			config:      ObservabilityConfig{},
			expectError: true,
		},
		{
			name: "stdout exporter",
			config: ObservabilityConfig{
				ServiceName: "lanagate",
				Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SampleRate: 0.5},
			},
			expectError: false,
		},
		{
			name: "otlp without endpoint",
			config: ObservabilityConfig{
				ServiceName: "lanagate",
				Tracing:     TracingConfig{Enabled: true, Exporter: "otlp"},
			},
			expectError: true,
		},
		{
			name: "otlp with endpoint",
			config: ObservabilityConfig{
				ServiceName: "lanagate",
				Tracing:     TracingConfig{Enabled: true, Exporter: "otlp", OTLPEndpoint: "localhost:4317", SampleRate: 1.0},
			},
			expectError: false,
		},
		{
			name: "unknown exporter",
			config: ObservabilityConfig{
				ServiceName: "lanagate",
				Tracing:     TracingConfig{Enabled: true, Exporter: "jaeger"},
			},
			expectError: true,
		},
		{
			name: "sample rate out of range",
			config: ObservabilityConfig{
				ServiceName: "lanagate",
				Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SampleRate: 1.5},
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
