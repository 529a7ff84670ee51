// Package config provides configuration management using Viper
package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Database types
const (
	SQLiteDatabase = "sqlite"
)

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName       string   `mapstructure:"appname"`
	AppPort       string   `mapstructure:"appport"`
	Environment   string   `mapstructure:"environment"`
	LogLevel      LogLevel `mapstructure:"loglevel"`
	PublicBaseURL string   `mapstructure:"publicbaseurl"`

	// Reporting settings
	Timezone            string `mapstructure:"timezone"`
	DefaultSpanDays     int    `mapstructure:"defaultspandays"`
	StrictSpan          bool   `mapstructure:"strictspan"`
	FetchTimeoutSeconds int    `mapstructure:"fetchtimeoutseconds"`

	// File paths
	DatabasePath string `mapstructure:"storagepath"`
	DatabaseName string `mapstructure:"-"` // Derived from other settings

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Database settings
	DatabaseType         string `mapstructure:"dbtype"`
	DatabaseMaxOpenConns int    `mapstructure:"dbmaxopenconns"`
	DatabaseMaxIdleConns int    `mapstructure:"dbmaxidleconns"`

	// Background jobs; 0 disables the WAL checkpoint job
	CheckpointIntervalSeconds int `mapstructure:"checkpointintervalseconds"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	once.Do(func() {
		v := viper.New()

		v.SetDefault("appname", "pagepulse")
		v.SetDefault("appport", "3000")
		v.SetDefault("environment", Development)
		v.SetDefault("loglevel", string(LogLevelDebug))
		v.SetDefault("publicbaseurl", "http://localhost:3000")
		v.SetDefault("timezone", "UTC")
		v.SetDefault("defaultspandays", 30)
		v.SetDefault("strictspan", false)
		v.SetDefault("fetchtimeoutseconds", 10)
		v.SetDefault("storagepath", "storage")
		v.SetDefault("logsdir", "logs")
		v.SetDefault("logsmaxsizeinmb", 20)
		v.SetDefault("logsmaxbackups", 10)
		v.SetDefault("logsmaxageindays", 30)
		v.SetDefault("dbtype", SQLiteDatabase)
		v.SetDefault("dbmaxopenconns", 0)
		v.SetDefault("dbmaxidleconns", 0)
		v.SetDefault("checkpointintervalseconds", 300)

		v.BindEnv("appname", "PAGEPULSE_APP_NAME")
		v.BindEnv("appport", "PAGEPULSE_APP_PORT")
		v.BindEnv("environment", "PAGEPULSE_ENV")
		v.BindEnv("loglevel", "PAGEPULSE_LOG_LEVEL")
		v.BindEnv("publicbaseurl", "PAGEPULSE_PUBLIC_BASE_URL")
		v.BindEnv("timezone", "PAGEPULSE_TIMEZONE")
		v.BindEnv("defaultspandays", "PAGEPULSE_DEFAULT_SPAN_DAYS")
		v.BindEnv("strictspan", "PAGEPULSE_STRICT_SPAN")
		v.BindEnv("fetchtimeoutseconds", "PAGEPULSE_FETCH_TIMEOUT_SECONDS")
		v.BindEnv("storagepath", "PAGEPULSE_STORAGE_PATH")
		v.BindEnv("logsdir", "PAGEPULSE_LOGS_DIR")
		v.BindEnv("logsmaxsizeinmb", "PAGEPULSE_LOGS_MAX_SIZE_IN_MB")
		v.BindEnv("logsmaxbackups", "PAGEPULSE_LOGS_MAX_BACKUPS")
		v.BindEnv("logsmaxageindays", "PAGEPULSE_LOGS_MAX_AGE_IN_DAYS")
		v.BindEnv("dbtype", "PAGEPULSE_DB_TYPE")
		v.BindEnv("dbmaxopenconns", "PAGEPULSE_DB_MAX_OPEN_CONNS")
		v.BindEnv("dbmaxidleconns", "PAGEPULSE_DB_MAX_IDLE_CONNS")
		v.BindEnv("checkpointintervalseconds", "PAGEPULSE_CHECKPOINT_INTERVAL_SECONDS")

		cfg = &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			log.Fatalf("config: failed to unmarshal configuration: %v", err)
		}

		if err := cfg.validate(); err != nil {
			log.Fatalf("config: invalid configuration: %v", err)
		}

		cfg.DatabaseName = cfg.GetDatabasePath()
	})
	return cfg
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	validDBTypes := map[string]bool{
		SQLiteDatabase: true,
	}
	if !validDBTypes[c.DatabaseType] {
		return fmt.Errorf("invalid database type: %s", c.DatabaseType)
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}

	switch c.DefaultSpanDays {
	case 7, 30, 90:
	default:
		return fmt.Errorf("invalid default span: %d (allowed: 7, 30, 90)", c.DefaultSpanDays)
	}

	if c.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %d", c.FetchTimeoutSeconds)
	}

	if c.CheckpointIntervalSeconds < 0 {
		return fmt.Errorf("checkpoint interval cannot be negative, got %d", c.CheckpointIntervalSeconds)
	}

	return nil
}

// GetDatabasePath returns the appropriate database path based on environment
func (c *Config) GetDatabasePath() string {
	if c.DatabaseName == "" {
		c.DatabaseName = filepath.Join(c.DatabasePath,
			fmt.Sprintf("%s-%s.db", c.AppName, c.Environment))
	}
	return c.DatabaseName
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest returns true if the environment is test
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

// Location returns the timezone used to decide what "today" is for report periods.
// validate has already rejected unknown zones, so UTC is only a fallback for
// hand-built configs.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FetchTimeout bounds a single report's row retrieval.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// CheckpointInterval is how often the WAL is folded back into the database file.
func (c *Config) CheckpointInterval() time.Duration {
	return time.Duration(c.CheckpointIntervalSeconds) * time.Second
}

// GetMaxOpenConns returns the appropriate MaxOpenConns value based on environment
// If explicitly set via env var, uses that value. Otherwise:
// - Test: 1 (in-memory sqlite is per connection)
// - Development/Production: 10 (the two period fetches run concurrently)
func (c *Config) GetMaxOpenConns() int {
	if c.DatabaseMaxOpenConns > 0 {
		return c.DatabaseMaxOpenConns
	}

	if c.Environment == Test {
		return 1
	}

	return 10
}

// GetMaxIdleConns returns the appropriate MaxIdleConns value based on environment
func (c *Config) GetMaxIdleConns() int {
	if c.DatabaseMaxIdleConns > 0 {
		return c.DatabaseMaxIdleConns
	}

	if c.Environment == Test {
		return 1
	}

	return 5
}

// Reset clears the cached configuration; intended for tests.
func Reset() {
	once = sync.Once{}
	cfg = nil
}
