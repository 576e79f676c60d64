package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/courier/internal/config"
	"github.com/stretchr/testify/assert"
)

func Test_MustLoadFromEnv(t *testing.T) {
	t.Setenv("COURIER_ENV", "local")
	t.Setenv("COURIER_INTERVAL", "5m")
	t.Setenv("COURIER_PROVIDER_KEY", "testAPIKey")
	t.Setenv("COURIER_PROVIDER_TYPE", "google")
	t.Setenv("DB_HOST", "testHost")
	t.Setenv("DB_PORT", "12345")
	t.Setenv("DB_USERNAME", "admin")
	t.Setenv("DB_PASSWORD", "adminpass")
	t.Setenv("DB_NAME", "testName")

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "testHost", cfg.Database.Host)
	assert.Equal(t, "12345", cfg.Database.Port)
	assert.Equal(t, "admin", cfg.Database.User)
	assert.Equal(t, "adminpass", cfg.Database.Password)
	assert.Equal(t, "testName", cfg.Database.Name)
	assert.Equal(t, 5*time.Minute, cfg.Interval)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "google", cfg.ProviderType)
	assert.Equal(t, "testAPIKey", cfg.APIKey)
	assert.Equal(t, "ru", cfg.Region)
	assert.Equal(t, 10, cfg.Workers)
	assert.Zero(t, cfg.RateLimit)
}

func Test_MustLoadFromFile(t *testing.T) {
	defer filet.CleanUp(t)

	dir := filet.TmpDir(t, "")
	path := filepath.Join(dir, "courier.yaml")
	filet.File(t, path, `
courier_env: development
courier_http_port: 9090
courier_provider_type: nominatim
courier_region: kz
courier_workers: 3
courier_interval: 1m
db_host: file-host
db_name: file-db
`)

	t.Setenv("COURIER_CONFIG_FILE", path)
	t.Setenv("DB_NAME", "env-db")

	cfg := config.MustLoad()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "nominatim", cfg.ProviderType)
	assert.Equal(t, "kz", cfg.Region)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, time.Minute, cfg.Interval)
	assert.Equal(t, "file-host", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "env-db", cfg.Database.Name, "environment wins over the file")
}

func TestMustLoad_MissingFile(t *testing.T) {
	t.Setenv("COURIER_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	assert.PanicsWithValue(t, "failed to read configuration file", func() {
		config.MustLoad()
	})
}

func TestMustLoad_IntervalError(t *testing.T) {
	t.Setenv("COURIER_INTERVAL", "error_value")

	assert.PanicsWithValue(t, "failed to parse interval from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_PortError(t *testing.T) {
	t.Setenv("COURIER_HTTP_PORT", "error_value")

	assert.PanicsWithValue(t, "failed to parse port for http server from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_WorkersError(t *testing.T) {
	t.Setenv("COURIER_WORKERS", "error_value")

	assert.PanicsWithValue(t, "failed to parse workers from configuration, must be an integer types", func() {
		config.MustLoad()
	})
}

func TestMustLoad_RateLimitError(t *testing.T) {
	t.Setenv("COURIER_RATE_LIMIT", "error_value")

	assert.PanicsWithValue(t, "failed to parse rate limit from configuration, must be an integer types", func() {
		config.MustLoad()
	})
}
