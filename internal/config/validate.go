package config

import (
	"fmt"
	"slices"
	"strings"
)

// Validate performs comprehensive validation on the configuration.
func Validate(cfg *Config) error {
	if err := validatePool(cfg); err != nil {
		return fmt.Errorf("pool validation failed: %w", err)
	}

	if err := validateIDP(cfg); err != nil {
		return fmt.Errorf("idp validation failed: %w", err)
	}

	if err := validateLogging(cfg); err != nil {
		return fmt.Errorf("logging validation failed: %w", err)
	}

	return nil
}

func validatePool(cfg *Config) error {
	if !strings.Contains(cfg.Pool.UserPoolID, "_") {
		return fmt.Errorf("pool.user_pool_id must be of the form <region>_<id>")
	}

	if cfg.Pool.Region != "" && !strings.HasPrefix(cfg.Pool.UserPoolID, cfg.Pool.Region+"_") {
		return fmt.Errorf("pool.user_pool_id %q does not match pool.region %q", cfg.Pool.UserPoolID, cfg.Pool.Region)
	}

	return nil
}

func validateIDP(cfg *Config) error {
	if _, err := cfg.GetTimeout(); err != nil {
		return err
	}

	if cfg.IDP.Endpoint != "" && !strings.HasPrefix(cfg.IDP.Endpoint, "https://") {
		return fmt.Errorf("idp.endpoint must use https://")
	}

	return nil
}

func validateLogging(cfg *Config) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, cfg.Logging.Level) {
		return fmt.Errorf("logging.level must be one of: %s", strings.Join(validLevels, ", "))
	}

	validFormats := []string{"json", "human"}
	if !slices.Contains(validFormats, cfg.Logging.Format) {
		return fmt.Errorf("logging.format must be one of: %s", strings.Join(validFormats, ", "))
	}

	return nil
}
