package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Generator Generator `mapstructure:"generator"`
	Transform Transform `mapstructure:"transform"`
	Database  Database  `mapstructure:"database"`
	Logger    Logger    `mapstructure:"logger"`
	Server    Server    `mapstructure:"server"`
	Report    Report    `mapstructure:"report"`
	Tracing   Tracing   `mapstructure:"tracing"`
}

// Generator holds the configuration for the synthetic trade generator.
type Generator struct {
	Count   int      `mapstructure:"count"`
	Seed    uint64   `mapstructure:"seed"` // 0 picks a time-based seed
	Year    int      `mapstructure:"year"`
	Symbols []string `mapstructure:"symbols"`
}

// Transform holds the configuration for the transformation stage.
type Transform struct {
	HighValueThreshold float64 `mapstructure:"high_value_threshold"`
}

// Database holds the locations of the primary and secondary stores.
type Database struct {
	PrimaryDSN   string `mapstructure:"primary_dsn"`
	SecondaryDSN string `mapstructure:"secondary_dsn"`
	BatchSize    int    `mapstructure:"batch_size"`
}

// Server holds the configuration for the reporting web server.
type Server struct {
	Port           int     `mapstructure:"port"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Report holds the configuration for the reporting API client.
type Report struct {
	BaseURL        string  `mapstructure:"base_url"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	TopN           int     `mapstructure:"top_n"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"` // optional rotating log file
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Tracing toggles the stdout span exporter.
type Tracing struct {
	Enabled bool `mapstructure:"enabled"`
}

// DefaultSymbols is the instrument set used when none is configured.
var DefaultSymbols = []string{"AAPL", "TSLA", "GOOGL", "AMZN", "MSFT"}

// LoadConfig reads configuration from file or environment variables.
// A missing config file is not an error; defaults and environment apply.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config") // name of config file (without extension)
	v.SetConfigType("yml")

	// Allow environment variables to override config file
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		err = nil
	}

	err = v.Unmarshal(&config)
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("generator.count", 1000)
	v.SetDefault("generator.seed", 0)
	v.SetDefault("generator.year", 2025)
	v.SetDefault("generator.symbols", DefaultSymbols)

	v.SetDefault("transform.high_value_threshold", 50000.0)

	v.SetDefault("database.primary_dsn", "trading.db")
	v.SetDefault("database.secondary_dsn", "trading_summary.db")
	v.SetDefault("database.batch_size", 200)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.max_size_mb", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age_days", 28)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 20)      // requests per second
	v.SetDefault("server.rate_limit_burst", 5) // burst size

	v.SetDefault("report.base_url", "http://localhost:8080")
	v.SetDefault("report.rate_limit", 10)
	v.SetDefault("report.rate_limit_burst", 1)
	v.SetDefault("report.top_n", 3)

	v.SetDefault("tracing.enabled", false)
}
