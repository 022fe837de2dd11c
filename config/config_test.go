package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "database:\n  dsn: postgres://localhost/resort\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, time.UTC, cfg.Booking.Location)
	assert.Equal(t, time.Sunday, cfg.Booking.FirstWeekday)
	assert.Equal(t, 30*time.Second, cfg.Booking.PendingTTL())
	assert.Equal(t, time.Minute, cfg.Refresh.Interval)
	assert.Equal(t, 5*time.Minute, cfg.Server.CacheTTL())
	assert.Equal(t, 1.0, cfg.Server.ClickRatePerSec)
	assert.Equal(t, 3, cfg.Server.ClickBurst)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Equal(t, 3600, cfg.Push.TTL)
	assert.False(t, cfg.Push.Enabled())
}

func TestLoad_ExplicitValues(t *testing.T) {
	body := `
server:
  port: 9000
  cors_allowed_origins: ["https://resort.example"]
database:
  driver: sqlite
  dsn: "file:resort.db"
booking:
  timezone: Europe/Helsinki
  week_start: monday
  pending_ttl_seconds: 5
refresh:
  enabled: true
  interval_seconds: 15
worker_pool:
  size: 4
`
	cfg, err := Load(writeConfig(t, body))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"https://resort.example"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "Europe/Helsinki", cfg.Booking.Location.String())
	assert.Equal(t, time.Monday, cfg.Booking.FirstWeekday)
	assert.Equal(t, 5*time.Second, cfg.Booking.PendingTTL())
	assert.True(t, cfg.Refresh.Enabled)
	assert.Equal(t, 15*time.Second, cfg.Refresh.Interval)
	assert.Equal(t, 4, cfg.WorkerPool.Size)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "unknown driver", body: "database:\n  driver: mysql\n"},
		{name: "unknown timezone", body: "booking:\n  timezone: Mars/Olympus\n"},
		{name: "unknown week start", body: "booking:\n  week_start: someday\n"},
		{name: "malformed yaml", body: "server: [\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
