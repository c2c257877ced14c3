package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service. Core components never read
// the environment themselves; everything below is passed into constructors
// by the wiring layer.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// UPS
	UPSClientID       string        `envconfig:"UPS_CLIENT_ID"`
	UPSClientSecret   string        `envconfig:"UPS_CLIENT_SECRET"`
	UPSBaseURL        string        `envconfig:"UPS_BASE_URL" default:"https://onlinetools.ups.com/api"`
	UPSOAuthTokenPath string        `envconfig:"UPS_OAUTH_TOKEN_PATH" default:"/security/v1/oauth/token"`
	UPSRateVersion    string        `envconfig:"UPS_RATE_VERSION" default:"v2409"`
	UPSTransactionSrc string        `envconfig:"UPS_TRANSACTION_SRC" default:"rategate"`
	UPSEnabled        bool          `envconfig:"UPS_ENABLED" default:"true"`
	UPSUseMock        bool          `envconfig:"UPS_USE_MOCK" default:"false"`
	HTTPTimeout       time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`
	TokenTimeout      time.Duration `envconfig:"TOKEN_TIMEOUT" default:"10s"`
	TokenSkew         time.Duration `envconfig:"TOKEN_SKEW" default:"30s"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"rategate"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// TokenURL returns the full UPS OAuth token endpoint.
func (c *Config) TokenURL() string {
	return c.UPSBaseURL + c.UPSOAuthTokenPath
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("ups.enabled", c.UPSEnabled),
	}
}
