package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	CRM      CRMConfig      `toml:"crm"`
	Terminal TerminalConfig `toml:"terminal"`
	Checkout CheckoutConfig `toml:"checkout"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	NewRelic NewRelicConfig `toml:"newrelic"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        `toml:"port"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	AllowOrigin  string        `toml:"allow_origin"`
}

// CRMConfig holds the remote CRM backend configuration.
type CRMConfig struct {
	BaseURL string        `toml:"base_url"`
	APIKey  string        `toml:"api_key"`
	Timeout time.Duration `toml:"timeout"`
}

// TerminalConfig identifies this POS terminal to the CRM.
type TerminalConfig struct {
	DeviceID string `toml:"device_id"`
	Location string `toml:"location"`
}

// CheckoutConfig holds checkout workflow timings.
type CheckoutConfig struct {
	Countdown     time.Duration `toml:"countdown"`
	Tick          time.Duration `toml:"tick"`
	CardLockTTL   time.Duration `toml:"card_lock_ttl"`
	SideEffectTTL time.Duration `toml:"side_effect_timeout"`
	IdleTimeout   time.Duration `toml:"idle_timeout"`
}

// DatabaseConfig holds PostgreSQL configuration for the receipt journal.
type DatabaseConfig struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DBName   string `toml:"dbname"`
	SSLMode  string `toml:"sslmode"`
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string `toml:"app_name"`
	LicenseKey string `toml:"license_key"`
	Enabled    bool   `toml:"enabled"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			AllowOrigin:  "*",
		},
		CRM: CRMConfig{
			BaseURL: "https://crm-n577.onrender.com",
			APIKey:  "",
			Timeout: 15 * time.Second,
		},
		Terminal: TerminalConfig{
			DeviceID: "POS-001",
			Location: "POS Terminal",
		},
		Checkout: CheckoutConfig{
			Countdown:     3 * time.Second,
			Tick:          time.Second,
			CardLockTTL:   5 * time.Minute,
			SideEffectTTL: 10 * time.Second,
			IdleTimeout:   2 * time.Minute,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "postgres",
			DBName:   "pos",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		NewRelic: NewRelicConfig{
			AppName: "transit-pos",
		},
	}
}

// Load builds the configuration from defaults, then the optional TOML file at
// path, then environment variables. Later sources win.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnv("SERVER_PORT", cfg.Server.Port)
	cfg.Server.ReadTimeout = getDurationEnv("SERVER_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getDurationEnv("SERVER_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.AllowOrigin = getEnv("SERVER_ALLOW_ORIGIN", cfg.Server.AllowOrigin)

	cfg.CRM.BaseURL = getEnv("CRM_BASE_URL", cfg.CRM.BaseURL)
	cfg.CRM.APIKey = getEnv("CRM_API_KEY", cfg.CRM.APIKey)
	cfg.CRM.Timeout = getDurationEnv("CRM_TIMEOUT", cfg.CRM.Timeout)

	cfg.Terminal.DeviceID = getEnv("TERMINAL_ID", cfg.Terminal.DeviceID)
	cfg.Terminal.Location = getEnv("TERMINAL_LOCATION", cfg.Terminal.Location)

	cfg.Checkout.Countdown = getDurationEnv("CHECKOUT_COUNTDOWN", cfg.Checkout.Countdown)
	cfg.Checkout.Tick = getDurationEnv("CHECKOUT_TICK", cfg.Checkout.Tick)
	cfg.Checkout.CardLockTTL = getDurationEnv("CHECKOUT_CARD_LOCK_TTL", cfg.Checkout.CardLockTTL)
	cfg.Checkout.SideEffectTTL = getDurationEnv("CHECKOUT_SIDE_EFFECT_TIMEOUT", cfg.Checkout.SideEffectTTL)
	cfg.Checkout.IdleTimeout = getDurationEnv("CHECKOUT_IDLE_TIMEOUT", cfg.Checkout.IdleTimeout)

	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.DBName = getEnv("DB_NAME", cfg.Database.DBName)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getIntEnv("REDIS_DB", cfg.Redis.DB)

	cfg.NewRelic.AppName = getEnv("NEW_RELIC_APP_NAME", cfg.NewRelic.AppName)
	cfg.NewRelic.LicenseKey = getEnv("NEW_RELIC_LICENSE_KEY", cfg.NewRelic.LicenseKey)
	cfg.NewRelic.Enabled = getBoolEnv("NEW_RELIC_ENABLED", cfg.NewRelic.Enabled)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
