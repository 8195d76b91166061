package config

const (
	defaultDBHost           = "localhost"
	defaultDBPort           = 5432
	defaultDBUser           = "postgres"
	defaultVerifyAttempts   = 30
	defaultVerifyIntervalMS = 200
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Database: Database{
			Host: defaultDBHost,
			Port: defaultDBPort,
			User: defaultDBUser,
		},
		Edit: Edit{
			Comment: true,
			Report:  true,
		},
		Verify: Verify{
			Attempts:   defaultVerifyAttempts,
			IntervalMS: defaultVerifyIntervalMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
