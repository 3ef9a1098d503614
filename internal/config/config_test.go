package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8080), cfg.HTTP.Port)
	assert.Equal(t, BackendCSV, cfg.Storage.CatalogBackend)
	assert.Equal(t, BackendAuto, cfg.Storage.UserBackend)
	assert.Equal(t, DefaultDatabasePath, cfg.Storage.DatabasePath)
	assert.Equal(t, 14, cfg.Lending.DefaultLoanDays)
	assert.Equal(t, DefaultSeedPath, cfg.Bootstrap.SeedPath)
	assert.Equal(t, "*/30 * * * *", cfg.Consistency.Schedule)
	assert.Equal(t, 30*time.Second, cfg.Tasks.RetryDelay)
	assert.Empty(t, cfg.Telemetry.OTLPEndpoint)
}

func TestNewConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CATALOG_BACKEND", "sqlite")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DEFAULT_LOAN_DAYS", "21")
	t.Setenv("TASKS_ENABLED", "false")
	t.Setenv("TASK_TIMEOUT", "90s")

	cfg := NewConfig()

	assert.Equal(t, BackendSQLite, cfg.Storage.CatalogBackend)
	assert.Equal(t, int32(9090), cfg.HTTP.Port)
	assert.Equal(t, 21, cfg.Lending.DefaultLoanDays)
	assert.False(t, cfg.Tasks.Enabled)
	assert.Equal(t, 90*time.Second, cfg.Tasks.TaskTimeout)
}
