package config

import (
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the dispatch service.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port of the HTTP server (staff API, health checks and metrics).
// - ProviderType: The type of geocoding provider to use (google, yandex, nominatim, visicom).
// - APIKey: The API key of the geocoding provider.
// - Region: Region hint sent to the geocoding provider.
// - Workers: The number of concurrent geocoding requests.
// - RateLimit: Requests per second allowed towards the provider, 0 for the provider default.
// - Interval: The duration between background passes.
// - Database: Configuration settings for the PostgreSQL database.
type Config struct {
	Env          string         `yaml:"env"`             // Env is the current environment: local, development, production.
	Port         int            `yaml:"http.port"`       // Port is the HTTP server port.
	ProviderType string         `yaml:"provider.type"`   // ProviderType specifies which geocoding provider to use
	APIKey       string         `yaml:"provider.key"`    // The API key for accessing external services.
	Region       string         `yaml:"provider.region"` // Region hint for the geocoder (ISO country code).
	Workers      int            `yaml:"workers"`         // The number of concurrent geocoding requests.
	RateLimit    int            `yaml:"rate_limit"`      // Provider requests per second.
	Interval     time.Duration  `yaml:"interval"`        // The duration between background passes.
	Database     PostgresConfig `yaml:"postgres"`        // Database holds the postgres database configuration
	AddrPrefix   string         `yaml:"addr_prefix"`     // Address prefix for more accurate geocoding
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`     // Host is the database server address.
	Port     string `yaml:"port"`     // Port is the database server port.
	User     string `yaml:"user"`     // User is the database user.
	Password string `yaml:"password"` // Password is the database user's password.
	Name     string `yaml:"db_name"`  // Name is the name of the database.
}

// MustLoad reads the configuration from the environment, a .env file in the working
// directory and, if COURIER_CONFIG_FILE names one, a YAML file whose keys are the
// lower-cased variable names. Environment variables win over the file.
// It panics when a value cannot be parsed.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if path := v.GetString("courier_config_file"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			panic("failed to read configuration file")
		}
	}

	interval, err := time.ParseDuration(v.GetString("courier_interval"))
	if err != nil {
		panic("failed to parse interval from configuration")
	}

	port, err := strconv.Atoi(v.GetString("courier_http_port"))
	if err != nil {
		panic("failed to parse port for http server from configuration")
	}

	workers, err := strconv.Atoi(v.GetString("courier_workers"))
	if err != nil {
		panic("failed to parse workers from configuration, must be an integer types")
	}

	rateLimit, err := strconv.Atoi(v.GetString("courier_rate_limit"))
	if err != nil {
		panic("failed to parse rate limit from configuration, must be an integer types")
	}

	return &Config{
		Env:          v.GetString("courier_env"),
		Port:         port,
		ProviderType: v.GetString("courier_provider_type"),
		APIKey:       v.GetString("courier_provider_key"),
		Region:       v.GetString("courier_region"),
		Workers:      workers,
		RateLimit:    rateLimit,
		Interval:     interval,
		AddrPrefix:   v.GetString("courier_address_prefix"),
		Database: PostgresConfig{
			Host:     v.GetString("db_host"),
			Port:     v.GetString("db_port"),
			User:     v.GetString("db_username"),
			Password: v.GetString("db_password"),
			Name:     v.GetString("db_name"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("courier_env", "production")
	v.SetDefault("courier_http_port", "8080")
	v.SetDefault("courier_provider_type", "yandex")
	v.SetDefault("courier_region", "ru")
	v.SetDefault("courier_workers", "10")
	v.SetDefault("courier_rate_limit", "0")
	v.SetDefault("courier_interval", "10m")
	v.SetDefault("courier_address_prefix", "")
	v.SetDefault("db_port", "5432")
}
