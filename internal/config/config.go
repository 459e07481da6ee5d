package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultJWTSecret = "dev-secret-change-in-production"

const (
	StorageMySQL  = "mysql"
	StorageMemory = "memory"
)

// Config is the server configuration. Values come from defaults, then the
// optional YAML file, then environment variables.
type Config struct {
	Port        string          `yaml:"port"`
	Env         string          `yaml:"env"`
	Storage     string          `yaml:"storage"`
	DatabaseDSN string          `yaml:"database_dsn"`
	AutoMigrate bool            `yaml:"auto_migrate"`
	JWT         JWTConfig       `yaml:"jwt"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	Admin       AdminConfig     `yaml:"admin"`
}

// JWTConfig configures token signing and lifetimes.
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	AccessTTL  time.Duration `yaml:"access_ttl"`
	RefreshTTL time.Duration `yaml:"refresh_ttl"`
}

// RateLimitConfig applies per IP to the unauthenticated endpoints.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// AdminConfig names an admin account to create at startup. Empty disables it.
type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Default returns the development defaults.
func Default() Config {
	return Config{
		Port:        "8080",
		Env:         "development",
		Storage:     StorageMySQL,
		DatabaseDSN: "root:password@tcp(127.0.0.1:3306)/taskmanager?parseTime=true",
		JWT: JWTConfig{
			Secret:     defaultJWTSecret,
			AccessTTL:  5 * time.Minute,
			RefreshTTL: 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{RPS: 5, Burst: 10},
	}
}

// Load builds the configuration. path may be empty, in which case no file is read.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Port, "PORT")
	setString(&cfg.Env, "ENV")
	setString(&cfg.Storage, "STORAGE")
	setString(&cfg.DatabaseDSN, "DATABASE_DSN")
	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.Admin.Username, "ADMIN_USERNAME")
	setString(&cfg.Admin.Password, "ADMIN_PASSWORD")

	if v := os.Getenv("AUTO_MIGRATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("AUTO_MIGRATE: %w", err)
		}
		cfg.AutoMigrate = b
	}
	if v := os.Getenv("JWT_ACCESS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("JWT_ACCESS_TTL: %w", err)
		}
		cfg.JWT.AccessTTL = d
	}
	if v := os.Getenv("JWT_REFRESH_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("JWT_REFRESH_TTL: %w", err)
		}
		cfg.JWT.RefreshTTL = d
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		cfg.RateLimit.RPS = f
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		cfg.RateLimit.Burst = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c Config) validate() error {
	if c.Env == "production" && c.JWT.Secret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production environment")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt secret must not be empty")
	}
	if c.Storage != StorageMySQL && c.Storage != StorageMemory {
		return fmt.Errorf("unknown storage %q (want %q or %q)", c.Storage, StorageMySQL, StorageMemory)
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.JWT.AccessTTL >= c.JWT.RefreshTTL {
		return errors.New("access token lifetime must be shorter than refresh token lifetime")
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("rate limit rps and burst must be positive")
	}
	if (c.Admin.Username == "") != (c.Admin.Password == "") {
		return errors.New("admin username and password must be set together")
	}
	return nil
}
