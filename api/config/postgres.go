// Package config initializes the PostgreSQL connection pool from the
// environment and applies the embedded schema migrations on request.
package config

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx driver with database/sql
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var EmbedMigrations embed.FS

// PgConfig holds the PostgreSQL configuration.
type PgConfig struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
	SSLMode  string
}

// FromEnv reads the DB_* environment variables. DB_NAME and DB_USER are
// required; the rest default for local development.
func FromEnv() (PgConfig, error) {
	cfg := PgConfig{
		Host:     envOr("DB_HOST", "localhost"),
		Port:     envOr("DB_PORT", "5432"),
		Database: os.Getenv("DB_NAME"),
		Username: os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Schema:   envOr("DB_SCHEMA", "public"),
		SSLMode:  envOr("DB_SSLMODE", "disable"),
	}
	if cfg.Database == "" {
		return cfg, fmt.Errorf("DB_NAME is required")
	}
	if cfg.Username == "" {
		return cfg, fmt.Errorf("DB_USER is required")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ConnString renders the pgx connection string, pinning search_path to the
// configured schema.
func (c PgConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&search_path=%s",
		url.QueryEscape(c.Username), url.QueryEscape(c.Password),
		c.Host, c.Port, c.Database, c.SSLMode, c.Schema,
	)
}

// LoadPostgres creates and pings the connection pool.
func LoadPostgres(ctx context.Context, log *slog.Logger, cfg PgConfig) (*pgxpool.Pool, error) {
	log.Info("connecting to PostgreSQL",
		"host", cfg.Host, "port", cfg.Port, "database", cfg.Database,
		"schema", cfg.Schema, "username", cfg.Username)

	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(pingCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	log.Info("connected to PostgreSQL")
	return pool, nil
}

// RunMigrations applies the embedded goose migrations. The ingestion
// pipeline owns the production schema; this exists for dev and test
// environments that boot from nothing.
func RunMigrations(log *slog.Logger, connStr string) error {
	log.Info("running PostgreSQL migrations")

	goose.SetBaseFS(EmbedMigrations)

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("PostgreSQL migrations completed")
	return nil
}
