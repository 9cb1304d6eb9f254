// Package database provides PostgreSQL connection management and schema setup.
package database

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds database connection configuration.
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ConfigFromEnv creates a Config from environment variables.
func ConfigFromEnv() Config {
	port, _ := strconv.Atoi(getEnvOrDefault("DB_PORT", "5432"))
	maxOpen, _ := strconv.Atoi(getEnvOrDefault("DB_MAX_OPEN_CONNS", "10"))
	maxIdle, _ := strconv.Atoi(getEnvOrDefault("DB_MAX_IDLE_CONNS", "5"))
	lifetime, _ := time.ParseDuration(getEnvOrDefault("DB_CONN_MAX_LIFETIME", "5m"))

	return Config{
		Host:            getEnvOrDefault("DB_HOST", "localhost"),
		Port:            port,
		User:            getEnvOrDefault("DB_USER", "papertrail"),
		Password:        getEnvOrDefault("DB_PASSWORD", "localdev"),
		Database:        getEnvOrDefault("DB_NAME", "papertrail"),
		SSLMode:         getEnvOrDefault("DB_SSL_MODE", "disable"),
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    maxIdle,
		ConnMaxLifetime: lifetime,
	}
}

// ConnectionString returns the PostgreSQL connection string.
func (c Config) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// Connect creates a new database connection pool.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns) //nolint:gosec // bounded by config
	poolConfig.MinConns = int32(cfg.MaxIdleConns) //nolint:gosec // bounded by config
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Migrate creates the gateway tables if they don't exist. The uniqueness
// constraints here are load-bearing: device_id dedupes concurrent
// registrations, and (device_id, period_key) is what makes the ledger's
// upsert-increment atomic.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	schema := `
		CREATE TABLE IF NOT EXISTS devices (
			device_id TEXT PRIMARY KEY,
			token TEXT UNIQUE NOT NULL,
			plan TEXT NOT NULL DEFAULT 'free',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS idx_devices_token ON devices (token);

		CREATE TABLE IF NOT EXISTS usage_periods (
			device_id TEXT NOT NULL REFERENCES devices (device_id),
			period_key DATE NOT NULL,
			actions_used INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (device_id, period_key)
		);
	`
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
