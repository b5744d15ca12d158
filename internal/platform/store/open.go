package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/paperwork/paperwork/internal/platform/db"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Driver      string
	SQLitePath  string
	DatabaseURL string
	MaxConns    int32
	MinConns    int32
	Sealer      *Sealer
	Logger      zerolog.Logger
}

// Open connects the configured backend, applies migrations and returns the
// store with a function that releases its connections.
func Open(ctx context.Context, opts Options) (Store, func(), error) {
	var (
		conn    *sqlx.DB
		release = func() {}
		err     error
	)
	switch opts.Driver {
	case BackendMemory, "":
		return NewMemory(), release, nil
	case BackendSQLite:
		conn, err = db.OpenSQLite(ctx, opts.SQLitePath, db.WithMkdirAll())
		if err != nil {
			return nil, nil, err
		}
		release = func() { _ = conn.Close() }
	case BackendPostgres:
		var closePool func()
		conn, closePool, err = db.OpenPostgres(ctx, opts.DatabaseURL, opts.MaxConns, opts.MinConns)
		if err != nil {
			return nil, nil, err
		}
		release = func() {
			_ = conn.Close()
			closePool()
		}
	default:
		return nil, nil, fmt.Errorf("store: unknown driver %q", opts.Driver)
	}

	s := NewSQL(conn, WithSealer(opts.Sealer), WithLogger(opts.Logger))
	if err := s.Migrate(ctx); err != nil {
		release()
		return nil, nil, err
	}
	return s, release, nil
}
