package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the global Postgres connection pool.
var Pool *pgxpool.Pool

// PGConfig holds the Postgres configuration.
type PGConfig struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
}

// cfg holds the parsed configuration
var cfg PGConfig

// Database returns the configured database name
func Database() string {
	return cfg.Database
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// URL returns the Postgres connection URL. DATABASE_URL wins when set;
// otherwise the URL is assembled from the PG* variables.
func URL() string {
	if u := os.Getenv("DATABASE_URL"); u != "" {
		return u
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
}

// Load initializes configuration from environment variables and creates the connection pool
func Load() error {
	cfg.Host = getenv("PGHOST", "localhost")
	cfg.Port = getenv("PGPORT", "5432")
	cfg.Database = getenv("PGDATABASE", "dev_likert")
	cfg.Username = getenv("PGUSER", "postgres")
	cfg.Password = os.Getenv("PGPASSWORD")

	log.Printf("Connecting to Postgres: host=%s, port=%s, database=%s, username=%s", cfg.Host, cfg.Port, cfg.Database, cfg.Username)

	poolCfg, err := pgxpool.ParseConfig(URL())
	if err != nil {
		return fmt.Errorf("failed to parse postgres config: %w", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	Pool = pool
	log.Printf("Connected to Postgres successfully")

	return nil
}

// SetPool replaces the global pool (for testing).
func SetPool(p *pgxpool.Pool) {
	Pool = p
}

// Close closes the Postgres connection pool
func Close() {
	if Pool != nil {
		Pool.Close()
	}
}
