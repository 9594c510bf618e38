package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	ServerAddress string   `toml:"server_address" env:"SERVER_ADDRESS"`
	DatabasePath  string   `toml:"database_path" env:"DATABASE_PATH"`
	DatabaseURL   string   `toml:"database_url" env:"DATABASE_URL"`
	CORSOrigins   []string `toml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
	FrontendURL   string   `toml:"frontend_url" env:"FRONTEND_URL"`
	Environment   string   `toml:"environment" env:"ENVIRONMENT"`

	JWT    JWT    `toml:"jwt" envPrefix:"JWT_"`
	Log    Log    `toml:"log" envPrefix:"LOG_"`
	Redis  Redis  `toml:"redis" envPrefix:"REDIS_"`
	SMTP   SMTP   `toml:"smtp" envPrefix:"SMTP_"`
	Sentry Sentry `toml:"sentry" envPrefix:"SENTRY_"`
	OTEL   OTEL   `toml:"otel" envPrefix:"OTEL_"`
}

// JWT configuration
type JWT struct {
	Secret                   string `toml:"secret" env:"SECRET"`
	AccessTokenExpireMinutes int    `toml:"access_token_expire_minutes" env:"ACCESS_TOKEN_EXPIRE_MINUTES"`
	RefreshTokenExpireDays   int    `toml:"refresh_token_expire_days" env:"REFRESH_TOKEN_EXPIRE_DAYS"`
}

// AccessTTL is the lifetime of an access token
func (j JWT) AccessTTL() time.Duration {
	return time.Duration(j.AccessTokenExpireMinutes) * time.Minute
}

// RefreshTTL is the lifetime of a refresh token
func (j JWT) RefreshTTL() time.Duration {
	return time.Duration(j.RefreshTokenExpireDays) * 24 * time.Hour
}

// Log configuration
type Log struct {
	Level  string `toml:"level" env:"LEVEL"`
	Format string `toml:"format" env:"FORMAT"`
}

// Redis configuration. Login rate limiting is off when Addr is empty.
type Redis struct {
	Addr                   string `toml:"addr" env:"ADDR"`
	Password               string `toml:"password" env:"PASSWORD"`
	DB                     int    `toml:"db" env:"DB"`
	LoginRateLimit         int    `toml:"login_rate_limit" env:"LOGIN_RATE_LIMIT"`
	LoginRateWindowSeconds int    `toml:"login_rate_window_seconds" env:"LOGIN_RATE_WINDOW_SECONDS"`
}

// LoginRateWindow is the window the login limit applies to
func (r Redis) LoginRateWindow() time.Duration {
	return time.Duration(r.LoginRateWindowSeconds) * time.Second
}

// SMTP configuration. Invite emails are not sent when Host is empty.
type SMTP struct {
	Host     string `toml:"host" env:"HOST"`
	Port     int    `toml:"port" env:"PORT"`
	Username string `toml:"username" env:"USERNAME"`
	Password string `toml:"password" env:"PASSWORD"`
	From     string `toml:"from" env:"FROM"`
}

// Sentry configuration
type Sentry struct {
	DSN string `toml:"dsn" env:"DSN"`
}

// OTEL configuration
type OTEL struct {
	Enabled  bool   `toml:"enabled" env:"ENABLED"`
	Endpoint string `toml:"endpoint" env:"ENDPOINT"`
}

// UsePostgres returns true if PostgreSQL should be used
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		ServerAddress: ":8000",
		DatabasePath:  "boone_gifts.db",
		CORSOrigins:   []string{"http://localhost:3000"},
		FrontendURL:   "http://localhost:3000",
		Environment:   "development",
		JWT: JWT{
			Secret:                   "CHANGE_THIS_TO_A_SECURE_SECRET",
			AccessTokenExpireMinutes: 30,
			RefreshTokenExpireDays:   7,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Redis: Redis{
			LoginRateLimit:         10,
			LoginRateWindowSeconds: 60,
		},
		SMTP: SMTP{
			Port: 587,
		},
		OTEL: OTEL{
			Endpoint: "localhost:4317",
		},
	}
}

// Load builds the configuration from defaults, an optional TOML file at
// CONFIG_PATH (default config.toml), an optional .env file and APP_
// prefixed environment variables, in that order.
func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.toml"
	}
	if err := loadFile(configPath, cfg); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "APP_"}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt secret must be set")
	}
	if c.JWT.AccessTokenExpireMinutes <= 0 || c.JWT.RefreshTokenExpireDays <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.Redis.Addr != "" && (c.Redis.LoginRateLimit <= 0 || c.Redis.LoginRateWindowSeconds <= 0) {
		return errors.New("login rate limit and window must be positive")
	}
	return nil
}
