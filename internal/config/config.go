package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type DatabaseDriver string

const (
	DriverSQLite   DatabaseDriver = "sqlite"   // Single file database (default)
	DriverPostgres DatabaseDriver = "postgres" // External server, uses Database.DSN
)

type (
	Config struct {
		HTTP
		Global
		Database
		UI
		Session
		CSRF
		Tasks
		Overdue
		Activity
		Metrics
		Logging
		Loans
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver   DatabaseDriver
		Path     string // sqlite file
		DSN      string // postgres connection string
		LogLevel string // gorm logger level: silent, error, warn, info
	}
	UI struct {
		TemplatesPath string // Empty means use the embedded templates
		StaticPath    string // Empty means use the embedded assets
	}
	Session struct {
		Lifetime      time.Duration
		SecureCookies bool // Set to false for local dev without HTTPS
	}
	CSRF struct {
		Enabled bool
		Secret  string // hex or raw; generated per process when empty
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Overdue struct {
		ScanEnabled  bool
		ScanSchedule string // Cron format: "0 * * * *" = hourly
	}
	Activity struct {
		RetentionDays   int
		CleanupSchedule string // Cron format
	}
	Metrics struct {
		Enabled bool
	}
	Logging struct {
		Level  string
		Format string // text or json
	}
	Loans struct {
		PeriodDays int // Default days between loaned_on and return_by
	}
)

// loadDotEnv populates the process environment from a .env file when one is
// present. Existing variables win.
func loadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("WARNING: could not load env file: %v", err)
	}
}

func NewConfig() *Config {
	loadDotEnv()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	v.SetDefault("database_driver", string(DriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("database_log_level", "warn")

	v.SetDefault("templates_path", "")
	v.SetDefault("static_path", "")

	v.SetDefault("session_lifetime", "12h")
	v.SetDefault("secure_cookies", false)
	v.SetDefault("csrf_enabled", true)
	v.SetDefault("csrf_secret", "")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("overdue_scan_enabled", true)
	v.SetDefault("overdue_scan_schedule", "0 * * * *") // Hourly at :00

	v.SetDefault("activity_retention_days", DefaultActivityRetentionDays)
	v.SetDefault("activity_cleanup_schedule", "30 3 * * *") // Daily at 03:30

	v.SetDefault("metrics_enabled", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("loan_period_days", DefaultLoanPeriodDays)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver:   DatabaseDriver(v.GetString("DATABASE_DRIVER")),
			Path:     v.GetString("DATABASE_PATH"),
			DSN:      v.GetString("DATABASE_DSN"),
			LogLevel: v.GetString("DATABASE_LOG_LEVEL"),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
			StaticPath:    v.GetString("STATIC_PATH"),
		},
		Session: Session{
			Lifetime:      v.GetDuration("SESSION_LIFETIME"),
			SecureCookies: v.GetBool("SECURE_COOKIES"),
		},
		CSRF: CSRF{
			Enabled: v.GetBool("CSRF_ENABLED"),
			Secret:  v.GetString("CSRF_SECRET"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Overdue: Overdue{
			ScanEnabled:  v.GetBool("OVERDUE_SCAN_ENABLED"),
			ScanSchedule: v.GetString("OVERDUE_SCAN_SCHEDULE"),
		},
		Activity: Activity{
			RetentionDays:   v.GetInt("ACTIVITY_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("ACTIVITY_CLEANUP_SCHEDULE"),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
		Logging: Logging{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Loans: Loans{
			PeriodDays: v.GetInt("LOAN_PERIOD_DAYS"),
		},
	}
}

// ConfigureLogging applies the level and format to the global logger.
func ConfigureLogging(cfg Logging) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.Printf("WARNING: unknown log level %q, using info", cfg.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
