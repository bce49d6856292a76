package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
	APIBind string `toml:"api_bind"`
}

// Records selects the relational store that receives normalized submissions.
type Records struct {
	Driver                  string `toml:"driver"`
	DSN                     string `toml:"dsn"`
	StatementTimeoutSeconds int    `toml:"statement_timeout_seconds"`
}

// Worker contains configuration for the queue consumer loop.
type Worker struct {
	PaceIntervalMillis      int  `toml:"pace_interval_ms"`
	QueuePollIntervalMillis int  `toml:"queue_poll_interval_ms"`
	RecordFailures          bool `toml:"record_failures"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for wpp.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories and the HTTP bind address
//   - Records: relational store driver and connection string
//   - Worker: pacing, polling and failure recording for the consumer loop
//   - Logging: log format, level, and retention
type Config struct {
	Paths   Paths   `toml:"paths"`
	Records Records `toml:"records"`
	Worker  Worker  `toml:"worker"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("wpp.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// QueueDBPath is the SQLite file backing the work queue.
func (c *Config) QueueDBPath() string {
	return filepath.Join(c.Paths.DataDir, "queue.db")
}

// StatusDBPath is the SQLite file backing the submission status store.
func (c *Config) StatusDBPath() string {
	return filepath.Join(c.Paths.DataDir, "status.db")
}

// RecordsDSN returns the data source name handed to database/sql for the
// configured records driver. SQLite stores live under the data directory.
func (c *Config) RecordsDSN() string {
	if c.Records.Driver == DriverSQLite {
		if c.Records.DSN != "" {
			return c.Records.DSN
		}
		return filepath.Join(c.Paths.DataDir, "records.db")
	}
	return c.Records.DSN
}

// WorkerLockPath is the flock target that keeps the worker loop single-consumer.
func (c *Config) WorkerLockPath() string {
	return filepath.Join(c.Paths.DataDir, "wpp-worker.lock")
}

// PIDPath is where the daemon records its process id.
func (c *Config) PIDPath() string {
	return filepath.Join(c.Paths.DataDir, "wpp.pid")
}

// PaceInterval is the delay the worker observes after each message.
func (c *Config) PaceInterval() time.Duration {
	return time.Duration(c.Worker.PaceIntervalMillis) * time.Millisecond
}

// QueuePollInterval bounds how long a blocked consumer waits before re-checking
// the queue for rows appended by another process.
func (c *Config) QueuePollInterval() time.Duration {
	return time.Duration(c.Worker.QueuePollIntervalMillis) * time.Millisecond
}

// StatementTimeout bounds each persistence transaction.
func (c *Config) StatementTimeout() time.Duration {
	return time.Duration(c.Records.StatementTimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
