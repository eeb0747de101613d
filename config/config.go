package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the service settings. Values come from an optional YAML file,
// then .env, then the process environment, each overriding the previous.
type Config struct {
	Env         string   `yaml:"env"`
	Port        string   `yaml:"port"`
	DatabaseURL string   `yaml:"database_url"`
	JWTSecret   string   `yaml:"jwt_secret"`
	CORSOrigins []string `yaml:"cors_origins"`
	SentryDSN   string   `yaml:"sentry_dsn"`
	Release     string   `yaml:"release"`

	Redis RedisConfig `yaml:"redis"`
	MQ    MQConfig    `yaml:"mq"`

	SessionTTL     time.Duration `yaml:"session_ttl"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MQConfig struct {
	URL string `yaml:"url"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Env:            "local",
		Port:           "8080",
		CORSOrigins:    []string{"http://localhost:3000"},
		Release:        "dev",
		SessionTTL:     24 * time.Hour,
		CacheTTL:       5 * time.Minute,
		IdempotencyTTL: 10 * time.Second,
	}
}

// Load reads path (if it exists), then .env, then environment overrides.
// DATABASE_URL and JWT_SECRET are required.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return cfg, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	LoadEnv()
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("JWT_SECRET is not set")
	}
	return cfg, nil
}

// IsLocal reports whether the service runs in a developer environment.
func (c Config) IsLocal() bool {
	return c.Env == "" || c.Env == "local"
}

func applyEnv(cfg *Config) error {
	cfg.Env = GetEnv("APP_ENV", cfg.Env)
	cfg.Port = GetEnv("PORT", cfg.Port)
	cfg.DatabaseURL = GetEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.JWTSecret = GetEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.SentryDSN = GetEnv("SENTRY_DSN", cfg.SentryDSN)
	cfg.Release = GetEnv("APP_VERSION", cfg.Release)
	cfg.Redis.Addr = GetEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = GetEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.MQ.URL = GetEnv("MQ_URL", cfg.MQ.URL)

	if origins, ok := os.LookupEnv("CORS_ORIGINS"); ok {
		cfg.CORSOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	for name, target := range map[string]*time.Duration{
		"CACHE_TTL":       &cfg.CacheTTL,
		"SESSION_TTL":     &cfg.SessionTTL,
		"IDEMPOTENCY_TTL": &cfg.IdempotencyTTL,
	} {
		raw, ok := os.LookupEnv(name)
		if !ok || raw == "" {
			continue
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		*target = d
	}
	return nil
}

// LoadEnv loads environment variables from .env file
func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}
}

// GetEnv gets an environment variable or returns a default value if not present
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
