// Package config provides configuration parsing and validation for the alert-service.
package config

import (
	"fmt"
	"time"
)

// Config holds all configuration parameters for the alert-service.
type Config struct {
	HTTPPort           string
	PostgresDSN        string
	KafkaBrokers       string
	AlertsCreatedTopic string
	RedisAddr          string
	CheckInitialDelay  time.Duration
	CheckInterval      time.Duration
}

// Validate checks that all required configuration fields are set and have valid values.
// Returns an error if validation fails, nil otherwise.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("http-port cannot be empty")
	}
	if c.PostgresDSN == "" {
		return fmt.Errorf("postgres-dsn cannot be empty")
	}
	if c.KafkaBrokers == "" {
		return fmt.Errorf("kafka-brokers cannot be empty")
	}
	if c.AlertsCreatedTopic == "" {
		return fmt.Errorf("alerts-created-topic cannot be empty")
	}
	if c.RedisAddr == "" {
		return fmt.Errorf("redis-addr cannot be empty")
	}
	if c.CheckInitialDelay < 0 {
		return fmt.Errorf("check-initial-delay cannot be negative")
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("check-interval must be positive")
	}
	return nil
}
