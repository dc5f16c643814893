package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime settings, populated from environment variables
// (optionally via a .env file in the working directory).
type Config struct {
	AppPort string `mapstructure:"APP_PORT"`
	DBPath  string `mapstructure:"DB_PATH"`

	JWTSecret   string `mapstructure:"JWT_SECRET"`
	JWTIssuer   string `mapstructure:"JWT_ISSUER"`
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`

	// CacheTTL is the freshness window for server-side response cache entries.
	CacheTTL time.Duration `mapstructure:"CACHE_TTL"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`
}

// Load reads configuration from the environment. A missing .env file is not
// an error; explicit environment variables always win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("APP_PORT", "8008")
	v.SetDefault("DB_PATH", "marketplace.db")
	v.SetDefault("JWT_SECRET", "development-insecure-secret-change-me")
	v.SetDefault("JWT_ISSUER", "marketplace-api")
	v.SetDefault("JWT_AUDIENCE", "marketplace-clients")
	v.SetDefault("CACHE_TTL", "60s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)

	// AutomaticEnv alone does not populate Unmarshal; bind each key explicitly.
	for _, key := range []string{
		"APP_PORT", "DB_PATH",
		"JWT_SECRET", "JWT_ISSUER", "JWT_AUDIENCE",
		"CACHE_TTL", "LOG_LEVEL", "LOG_PRETTY",
	} {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.AppPort = strings.TrimPrefix(cfg.AppPort, ":")
	return &cfg, nil
}
