package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/KevinKickass/OpenSitePlanner/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresClient struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresClient(cfg config.DatabaseConfig) (*PostgresClient, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	if cfg.MaxConnections > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConnections)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	// Connection testen
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	client := &PostgresClient{pool: pool, now: time.Now}

	if cfg.EnsureSchema {
		if err := client.EnsureSchema(context.Background()); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return client, nil
}

func (p *PostgresClient) Close() {
	p.pool.Close()
}

func (p *PostgresClient) Pool() *pgxpool.Pool {
	return p.pool
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sites (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	path            TEXT NOT NULL,
	address         TEXT NOT NULL DEFAULT '',
	lat             DOUBLE PRECISION NOT NULL DEFAULT 0,
	long            DOUBLE PRECISION NOT NULL DEFAULT 0,
	stage           TEXT NOT NULL DEFAULT 'design',
	created_date    BIGINT NOT NULL,
	updated_date    BIGINT NOT NULL,
	market          TEXT NOT NULL DEFAULT '',
	metering        TEXT NOT NULL DEFAULT '',
	revenue_streams TEXT[],
	layout          JSONB
);

CREATE TABLE IF NOT EXISTS devices (
	name         TEXT PRIMARY KEY,
	mfg          TEXT,
	category     TEXT NOT NULL,
	length       DOUBLE PRECISION NOT NULL,
	width        DOUBLE PRECISION NOT NULL,
	cost         DOUBLE PRECISION NOT NULL,
	release_date INTEGER,
	capacity_kwh DOUBLE PRECISION NOT NULL,
	color        TEXT,
	img          TEXT
);

CREATE TABLE IF NOT EXISTS costs (
	name            TEXT PRIMARY KEY,
	display         TEXT NOT NULL,
	sort            INTEGER NOT NULL DEFAULT 0,
	multiplier_type TEXT NOT NULL,
	multiplier      DOUBLE PRECISION NOT NULL
);
`

// EnsureSchema creates the tables the planner needs if they are missing.
func (p *PostgresClient) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
