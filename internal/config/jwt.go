package config

import "github.com/cockroachdb/errors"

// JWTConfig holds configuration for JWT token generation and validation.
type JWTConfig struct {
	Secret          string `mapstructure:"secret"`
	ExpirationHours int    `mapstructure:"expiration_hours"`
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return errors.New("JWT_SECRET is required but not set")
	}
	if c.ExpirationHours < 1 {
		return errors.Newf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
