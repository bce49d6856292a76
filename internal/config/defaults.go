package config

// Records drivers understood by the records store.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	defaultConfigPath              = "~/.config/wpp/config.toml"
	defaultDataDir                 = "~/.local/share/wpp"
	defaultLogDir                  = "~/.local/share/wpp/logs"
	defaultAPIBind                 = "127.0.0.1:8000"
	defaultRecordsDriver           = DriverSQLite
	defaultStatementTimeout        = 30
	defaultPaceIntervalMillis      = 1000
	defaultQueuePollIntervalMillis = 500
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
	defaultLogRetentionDays        = 30
	recordsDSNEnv                  = "WPP_RECORDS_DSN"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Records: Records{
			Driver:                  defaultRecordsDriver,
			StatementTimeoutSeconds: defaultStatementTimeout,
		},
		Worker: Worker{
			PaceIntervalMillis:      defaultPaceIntervalMillis,
			QueuePollIntervalMillis: defaultQueuePollIntervalMillis,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
