package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8080), cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, 12*time.Hour, cfg.Session.Lifetime)
	assert.True(t, cfg.CSRF.Enabled)
	assert.Equal(t, "0 * * * *", cfg.Overdue.ScanSchedule)
	assert.Equal(t, DefaultLoanPeriodDays, cfg.Loans.PeriodDays)
	assert.Equal(t, DefaultActivityRetentionDays, cfg.Activity.RetentionDays)
	assert.Equal(t, "30 3 * * *", cfg.Activity.CleanupSchedule)
}

func TestNewConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "host=db user=lib dbname=lib")
	t.Setenv("SESSION_LIFETIME", "30m")
	t.Setenv("CSRF_ENABLED", "false")
	t.Setenv("OVERDUE_SCAN_SCHEDULE", "*/5 * * * *")
	t.Setenv("LOAN_PERIOD_DAYS", "14")

	cfg := NewConfig()

	assert.Equal(t, int32(9090), cfg.HTTP.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "host=db user=lib dbname=lib", cfg.Database.DSN)
	assert.Equal(t, 30*time.Minute, cfg.Session.Lifetime)
	assert.False(t, cfg.CSRF.Enabled)
	assert.Equal(t, "*/5 * * * *", cfg.Overdue.ScanSchedule)
	assert.Equal(t, 14, cfg.Loans.PeriodDays)
}

func TestLoadDotEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("LIBRARY_DOTENV_PROBE=from-file\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("LIBRARY_DOTENV_PROBE") })

	loadDotEnv(envFile)

	assert.Equal(t, "from-file", os.Getenv("LIBRARY_DOTENV_PROBE"))
}

func TestLoadDotEnv_MissingFileIsIgnored(t *testing.T) {
	assert.NotPanics(t, func() {
		loadDotEnv(filepath.Join(t.TempDir(), "missing.env"))
	})
}

func TestConfigureLogging(t *testing.T) {
	t.Cleanup(func() {
		log.SetLevel(log.InfoLevel)
		log.SetFormatter(&log.TextFormatter{})
	})

	ConfigureLogging(Logging{Level: "debug", Format: "json"})
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	ConfigureLogging(Logging{Level: "nonsense", Format: "text"})
	assert.Equal(t, log.InfoLevel, log.GetLevel())
}
