package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// Enabled reports whether a redis address was configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// Config is built once at startup and handed to components by value.
type Config struct {
	Env           string      `env:"APP_ENV" envDefault:"dev"`
	Port          int         `env:"PORT" envDefault:"5005"`
	DBURL         string      `env:"DATABASE_URL"`
	StoreDriver   string      `env:"STORE_DRIVER" envDefault:"postgres"`
	TokenSecret   string      `env:"TOKEN_SECRET,notEmpty"`
	Redis         RedisConfig `envPrefix:"REDIS_"`
	CORSOrigins   []string    `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	PublicDir     string      `env:"PUBLIC_DIR"`
	OTLPEndpoint  string      `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	MaxBodyBytes  int64       `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	AuthRateLimit int         `env:"AUTH_RATE_LIMIT" envDefault:"20"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	// a missing .env is normal outside local dev
	_ = godotenv.Load()

	var cfg Config

	err := env.Parse(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse env config: %w", err)
	}

	if cfg.DBURL == "" {
		cfg.DBURL = buildDBURL()
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %d", cfg.Port)
	}

	return cfg, nil
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "cohorthub")
	pass := getEnv("DB_PASSWORD", "cohorthub")
	name := getEnv("DB_NAME", "cohorthub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
