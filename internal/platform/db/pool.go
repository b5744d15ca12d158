package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// PostgresDriver is the sqlx driver name used for pgx connections. It
// selects $n placeholders when queries are rebound.
const PostgresDriver = "pgx"

func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	if minConns > 0 {
		cfg.MinConns = minConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// OpenPostgres opens a pgx pool and exposes it through sqlx so the record
// store runs the same queries on postgres and sqlite. Closing the returned
// DB does not close the pool; call closePool for that.
func OpenPostgres(ctx context.Context, databaseURL string, maxConns, minConns int32) (db *sqlx.DB, closePool func(), err error) {
	pool, err := NewPool(ctx, databaseURL, maxConns, minConns)
	if err != nil {
		return nil, nil, err
	}
	return sqlx.NewDb(stdlib.OpenDBFromPool(pool), PostgresDriver), pool.Close, nil
}
