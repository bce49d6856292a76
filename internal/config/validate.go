package config

import (
	"errors"
	"fmt"
	"net"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRecords(); err != nil {
		return err
	}
	if err := c.validateWorker(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind must be host:port: %w", err)
	}
	return nil
}

func (c *Config) validateRecords() error {
	switch c.Records.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Records.DSN == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = defaultConfigPath
			}
			return fmt.Errorf("records.dsn is required for the postgres driver. Set %s or edit %s (create with 'wpp config init')", recordsDSNEnv, defaultPath)
		}
	default:
		return fmt.Errorf("records.driver: unsupported value %q (want %q or %q)", c.Records.Driver, DriverSQLite, DriverPostgres)
	}
	return nil
}

func (c *Config) validateWorker() error {
	if c.Worker.PaceIntervalMillis < 0 {
		return errors.New("worker.pace_interval_ms must be >= 0")
	}
	if c.Worker.QueuePollIntervalMillis <= 0 {
		return errors.New("worker.queue_poll_interval_ms must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
