package testsupport

import (
	"path/filepath"
	"testing"

	"wpp/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Records default to a SQLite file inside the data directory, pacing is
// disabled and the queue polls quickly so worker tests finish fast.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Records.Driver = config.DriverSQLite
	cfgVal.Records.DSN = filepath.Join(base, "data", "records.db")
	cfgVal.Worker.PaceIntervalMillis = 0
	cfgVal.Worker.QueuePollIntervalMillis = 10

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithRecordFailures enables the failed status in the worker.
func WithRecordFailures() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Worker.RecordFailures = true
	}
}

// WithPaceInterval sets the worker pacing delay in milliseconds.
func WithPaceInterval(ms int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Worker.PaceIntervalMillis = ms
	}
}

// WithPostgres points the records store at dsn.
func WithPostgres(dsn string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Records.Driver = config.DriverPostgres
		b.cfg.Records.DSN = dsn
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
