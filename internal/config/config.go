package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const ConfigPath = "config.yaml"

type Config struct {
	Discord   DiscordConfig   `yaml:"discord"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	API       APIConfig       `yaml:"api"`
	Reconcile ReconcileConfig `yaml:"reconcile"`

	// EmptyGracePeriod delays teardown of an empty room, 0 tears down at once.
	EmptyGracePeriod time.Duration `yaml:"emptyGracePeriod"`
}

type DiscordConfig struct {
	Token string `yaml:"token"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslMode"`
}

// DSN — lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type APIConfig struct {
	Addr      string        `yaml:"addr"`
	JWTSecret string        `yaml:"jwtSecret"`
	TokenTTL  time.Duration `yaml:"tokenTTL"`
}

type ReconcileConfig struct {
	Interval    time.Duration `yaml:"interval"`
	Concurrency int           `yaml:"concurrency"`
}

func defaults() Config {
	return Config{
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			Name:    "autoroom",
			SSLMode: "disable",
		},
		Log: LogConfig{Level: "info", Format: "json"},
		API: APIConfig{Addr: ":8080", TokenTTL: 24 * time.Hour},
		Reconcile: ReconcileConfig{
			Interval: 10 * time.Minute,
		},
	}
}

// Load reads config from path (defaults to config.yaml). A missing file is
// not an error: defaults and environment variables still apply.
func Load(path string) (Config, error) {
	cfg := defaults()
	if path == "" {
		path = ConfigPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		cfg.Discord.Token = strings.TrimSpace(v)
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: DB_PORT: %w", err)
		}
		cfg.Database.Port = n
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}
	if v := os.Getenv("API_ADDR"); v != "" {
		cfg.API.Addr = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.API.JWTSecret = v
	}
	if v := os.Getenv("RECONCILE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: RECONCILE_INTERVAL: %w", err)
		}
		cfg.Reconcile.Interval = d
	}
	if v := os.Getenv("RECONCILE_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: RECONCILE_CONCURRENCY: %w", err)
		}
		cfg.Reconcile.Concurrency = n
	}
	if v := os.Getenv("EMPTY_GRACE_PERIOD"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: EMPTY_GRACE_PERIOD: %w", err)
		}
		cfg.EmptyGracePeriod = d
	}
	return nil
}

func validateConfig(cfg Config) error {
	if cfg.Discord.Token == "" {
		return errors.New("config: discord.token is required (set in config.yaml or DISCORD_TOKEN)")
	}
	if cfg.Database.Host == "" || cfg.Database.Name == "" {
		return errors.New("config: database.host and database.name are required")
	}
	if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
		return errors.New("config: database.port must be in 1..65535")
	}
	switch cfg.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q must be json or console", cfg.Log.Format)
	}
	if cfg.API.Addr != "" && cfg.API.JWTSecret == "" {
		return errors.New("config: api.jwtSecret is required when the operator API is enabled (or JWT_SECRET)")
	}
	if cfg.Reconcile.Interval < 0 {
		return errors.New("config: reconcile.interval must be >= 0")
	}
	if cfg.Reconcile.Concurrency < 0 {
		return errors.New("config: reconcile.concurrency must be >= 0")
	}
	if cfg.EmptyGracePeriod < 0 {
		return errors.New("config: emptyGracePeriod must be >= 0")
	}
	return nil
}
