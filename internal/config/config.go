// Package config provides configuration loading and validation for caldera.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents a caldera client configuration: which user pool/app
// client to authenticate against, how to reach the identity provider, and
// the ambient logging/HTTP settings.
type Config struct {
	Pool    PoolSettings    `yaml:"pool"`
	IDP     IDPSettings     `yaml:"idp"`
	Logging LoggingSettings `yaml:"logging"`
}

// PoolSettings identifies the user pool and app client this configuration
// authenticates against.
type PoolSettings struct {
	UserPoolID   string `yaml:"user_pool_id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret,omitempty"`
	Region       string `yaml:"region"`
}

// IDPSettings contains identity-provider transport configuration.
type IDPSettings struct {
	// Endpoint overrides the default region-derived IDP endpoint — used
	// against local emulators and non-AWS-hosted pools.
	Endpoint string `yaml:"endpoint,omitempty"`
	Timeout  string `yaml:"timeout"`
}

// LoggingSettings contains logging configuration.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the configuration file.
//
//nolint:gosec // G304: Config path is from command-line argument
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if endpoint := os.Getenv("CALDERA_IDP_ENDPOINT"); endpoint != "" {
		cfg.IDP.Endpoint = endpoint
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// validate performs basic validation on the configuration. Detailed
// validation is in validate.go.
func (c *Config) validate() error {
	if c.Pool.UserPoolID == "" {
		return fmt.Errorf("pool.user_pool_id is required")
	}

	if c.Pool.ClientID == "" {
		return fmt.Errorf("pool.client_id is required")
	}

	if c.Pool.Region == "" && c.IDP.Endpoint == "" {
		return fmt.Errorf("pool.region is required unless idp.endpoint is set")
	}

	if c.IDP.Timeout == "" {
		c.IDP.Timeout = "30s"
	}

	return nil
}

// Endpoint returns the IDP endpoint to dial: the configured override, or
// the standard regional Cognito Identity Provider endpoint.
func (c *Config) Endpoint() string {
	if c.IDP.Endpoint != "" {
		return c.IDP.Endpoint
	}
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com", c.Pool.Region)
}

// GetTimeout parses and returns the IDP request timeout.
func (c *Config) GetTimeout() (time.Duration, error) {
	duration, err := time.ParseDuration(c.IDP.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid idp.timeout: %w", err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("idp.timeout must be positive")
	}
	return duration, nil
}
