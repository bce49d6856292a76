package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeRecords(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeRecords() error {
	c.Records.Driver = strings.ToLower(strings.TrimSpace(c.Records.Driver))
	switch c.Records.Driver {
	case "":
		c.Records.Driver = defaultRecordsDriver
	case "postgresql", "pg":
		c.Records.Driver = DriverPostgres
	case "sqlite3":
		c.Records.Driver = DriverSQLite
	}
	c.Records.DSN = strings.TrimSpace(c.Records.DSN)
	if c.Records.DSN == "" {
		if value, ok := os.LookupEnv(recordsDSNEnv); ok {
			c.Records.DSN = strings.TrimSpace(value)
		}
	}
	if c.Records.Driver == DriverSQLite && c.Records.DSN != "" && !strings.Contains(c.Records.DSN, ":") {
		expanded, err := expandPath(c.Records.DSN)
		if err != nil {
			return fmt.Errorf("records.dsn: %w", err)
		}
		c.Records.DSN = expanded
	}
	if c.Records.StatementTimeoutSeconds <= 0 {
		c.Records.StatementTimeoutSeconds = defaultStatementTimeout
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
