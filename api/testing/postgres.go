package apitesting

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	tcpg "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/likertlabs/pulse/api/config"
)

// PostgresDBConfig holds the Postgres test container configuration.
type PostgresDBConfig struct {
	Database       string
	Username       string
	Password       string
	ContainerImage string
}

func (cfg *PostgresDBConfig) Validate() error {
	if cfg.Database == "" {
		cfg.Database = "test"
	}
	if cfg.Username == "" {
		cfg.Username = "postgres"
	}
	if cfg.Password == "" {
		cfg.Password = "password"
	}
	if cfg.ContainerImage == "" {
		cfg.ContainerImage = "postgres:16-alpine"
	}
	return nil
}

// PostgresDB represents a Postgres test container with migrations applied.
type PostgresDB struct {
	log       *slog.Logger
	cfg       *PostgresDBConfig
	addr      string
	dsn       string
	pool      *pgxpool.Pool
	container *tcpg.PostgresContainer
}

// Addr returns the Postgres address (host:port).
func (db *PostgresDB) Addr() string {
	return db.addr
}

// DSN returns the Postgres connection string.
func (db *PostgresDB) DSN() string {
	return db.dsn
}

// Pool returns the connection pool for the test database.
func (db *PostgresDB) Pool() *pgxpool.Pool {
	return db.pool
}

// Close terminates the Postgres container.
func (db *PostgresDB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
	terminateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.container.Terminate(terminateCtx); err != nil {
		db.log.Error("failed to terminate Postgres container", "error", err)
	}
}

// NewPostgresDB creates a new Postgres testcontainer and applies the
// schema migrations once; tests share the container and reset data via
// SetupTestPostgres.
func NewPostgresDB(ctx context.Context, log *slog.Logger, cfg *PostgresDBConfig) (*PostgresDB, error) {
	if cfg == nil {
		cfg = &PostgresDBConfig{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate Postgres DB config: %w", err)
	}

	// Retry container start up to 3 times for transient docker errors
	var container *tcpg.PostgresContainer
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		var err error
		container, err = tcpg.Run(ctx,
			cfg.ContainerImage,
			tcpg.WithDatabase(cfg.Database),
			tcpg.WithUsername(cfg.Username),
			tcpg.WithPassword(cfg.Password),
			tcpg.BasicWaitStrategies(),
		)
		if err != nil {
			lastErr = err
			if attempt < 3 {
				time.Sleep(time.Duration(attempt) * 750 * time.Millisecond)
				continue
			}
			return nil, fmt.Errorf("failed to start Postgres container after retries: %w", lastErr)
		}
		break
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Postgres container host: %w", err)
	}
	mappedPort, err := container.MappedPort(ctx, nat.Port("5432/tcp"))
	if err != nil {
		return nil, fmt.Errorf("failed to get Postgres container mapped port: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, fmt.Errorf("failed to get Postgres connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create Postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping Postgres container: %w", err)
	}

	db := &PostgresDB{
		log:       log,
		cfg:       cfg,
		addr:      fmt.Sprintf("%s:%s", host, mappedPort.Port()),
		dsn:       dsn,
		pool:      pool,
		container: container,
	}

	config.SetPool(pool)
	if err := config.RunMigrations(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// SetupTestPostgres points config.Pool at the test container and
// clears survey data so each test starts from an empty table.
func SetupTestPostgres(t *testing.T, db *PostgresDB) {
	ctx := t.Context()

	config.SetPool(db.pool)

	_, err := db.pool.Exec(ctx, "TRUNCATE surveydata RESTART IDENTITY")
	require.NoError(t, err, "failed to reset surveydata")
}
