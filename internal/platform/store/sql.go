package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/paperwork/paperwork/internal/platform/db"
)

//go:embed migrations
var migrations embed.FS

// Migrations returns the migration directory for a sqlx driver name.
func Migrations(driver string) (fs.FS, error) {
	var dir string
	switch driver {
	case db.SQLiteDriver:
		dir = "migrations/sqlite"
	case db.PostgresDriver:
		dir = "migrations/postgres"
	default:
		return nil, fmt.Errorf("store: no migrations for driver %q", driver)
	}
	return fs.Sub(migrations, dir)
}

// SQL stores records in sqlite or postgres through sqlx.
type SQL struct {
	db     *sqlx.DB
	sealer *Sealer
	logger zerolog.Logger
	now    func() time.Time
}

// SQLOption configures a SQL store.
type SQLOption func(*SQL)

// WithSealer encrypts record and snapshot data at rest.
func WithSealer(s *Sealer) SQLOption { return func(st *SQL) { st.sealer = s } }

// WithLogger sets the store logger.
func WithLogger(l zerolog.Logger) SQLOption { return func(st *SQL) { st.logger = l } }

// NewSQL wraps an open database. Call Migrate before first use.
func NewSQL(conn *sqlx.DB, opts ...SQLOption) *SQL {
	s := &SQL{db: conn, logger: zerolog.Nop(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Migrate applies the embedded schema for the database's dialect.
func (s *SQL) Migrate(ctx context.Context) error {
	fsys, err := Migrations(s.db.DriverName())
	if err != nil {
		return err
	}
	n, err := db.NewMigrator(s.db, fsys).Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}
	if n > 0 {
		s.logger.Info().Int("applied", n).Str("driver", s.db.DriverName()).Msg("store migrations applied")
	}
	return nil
}

type recordRow struct {
	ID         string    `db:"id"`
	FormpackID string    `db:"formpack_id"`
	Locale     string    `db:"locale"`
	Title      string    `db:"title"`
	Data       []byte    `db:"data"`
	Sealed     bool      `db:"sealed"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type snapshotRow struct {
	ID        string    `db:"id"`
	RecordID  string    `db:"record_id"`
	Label     string    `db:"label"`
	Data      []byte    `db:"data"`
	Sealed    bool      `db:"sealed"`
	CreatedAt time.Time `db:"created_at"`
}

const recordColumns = `id, formpack_id, locale, title, data, sealed, created_at, updated_at`

func (s *SQL) toRecord(row recordRow) (*Record, error) {
	data, err := s.sealer.decodeData(row.Data, row.Sealed)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", row.ID, err)
	}
	return &Record{
		ID:         row.ID,
		FormpackID: row.FormpackID,
		Locale:     row.Locale,
		Title:      row.Title,
		Data:       data,
		CreatedAt:  row.CreatedAt.UTC(),
		UpdatedAt:  row.UpdatedAt.UTC(),
	}, nil
}

func (s *SQL) GetRecord(ctx context.Context, id string) (*Record, error) {
	var row recordRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT `+recordColumns+` FROM records WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", id, err)
	}
	return s.toRecord(row)
}

func (s *SQL) PutRecord(ctx context.Context, r *Record) error {
	if err := prepareRecord(r, s.now()); err != nil {
		return err
	}
	raw, sealed, err := s.sealer.encodeData(r.Data)
	if err != nil {
		return err
	}

	return db.RunTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var created time.Time
		err := tx.GetContext(ctx, &created, s.db.Rebind(`SELECT created_at FROM records WHERE id = ?`), r.ID)
		switch {
		case err == nil:
			r.CreatedAt = created.UTC()
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("lookup record %s: %w", r.ID, err)
		}

		_, err = tx.ExecContext(ctx, s.db.Rebind(`INSERT INTO records (`+recordColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    formpack_id = excluded.formpack_id,
    locale = excluded.locale,
    title = excluded.title,
    data = excluded.data,
    sealed = excluded.sealed,
    updated_at = excluded.updated_at`),
			r.ID, r.FormpackID, r.Locale, r.Title, raw, sealed, r.CreatedAt, r.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("put record %s: %w", r.ID, err)
		}
		s.logger.Debug().Str("record_id", r.ID).Str("formpack", r.FormpackID).Bool("sealed", sealed).Msg("record saved")
		return nil
	})
}

func (s *SQL) ListRecords(ctx context.Context, f ListFilter) ([]Record, int, error) {
	where, args := "", []any{}
	if f.FormpackID != "" {
		where, args = ` WHERE formpack_id = ?`, append(args, f.FormpackID)
	}

	var total int
	if err := s.db.GetContext(ctx, &total, s.db.Rebind(`SELECT COUNT(*) FROM records`+where), args...); err != nil {
		return nil, 0, fmt.Errorf("count records: %w", err)
	}

	var rows []recordRow
	query := `SELECT ` + recordColumns + ` FROM records` + where + ` ORDER BY updated_at DESC, id ASC ` + f.Page.SQL()
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("list records: %w", err)
	}

	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		r, err := s.toRecord(row)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *r)
	}
	return out, total, nil
}

func (s *SQL) PutSnapshot(ctx context.Context, snap *Snapshot) error {
	if err := prepareSnapshot(snap, s.now()); err != nil {
		return err
	}
	raw, sealed, err := s.sealer.encodeData(snap.Data)
	if err != nil {
		return err
	}

	return db.RunTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.recordExists(ctx, tx, snap.RecordID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, s.db.Rebind(`INSERT INTO snapshots (id, record_id, label, data, sealed, created_at)
VALUES (?, ?, ?, ?, ?, ?)`),
			snap.ID, snap.RecordID, snap.Label, raw, sealed, snap.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("put snapshot %s: %w", snap.ID, err)
		}
		return nil
	})
}

func (s *SQL) ListSnapshots(ctx context.Context, recordID string) ([]Snapshot, error) {
	if err := s.recordExists(ctx, s.db, recordID); err != nil {
		return nil, err
	}
	var rows []snapshotRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(
		`SELECT id, record_id, label, data, sealed, created_at FROM snapshots WHERE record_id = ? ORDER BY created_at ASC, id ASC`,
	), recordID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	out := make([]Snapshot, 0, len(rows))
	for _, row := range rows {
		data, err := s.sealer.decodeData(row.Data, row.Sealed)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", row.ID, err)
		}
		out = append(out, Snapshot{
			ID:        row.ID,
			RecordID:  row.RecordID,
			Label:     row.Label,
			Data:      data,
			CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return out, nil
}

func (s *SQL) recordExists(ctx context.Context, q sqlx.QueryerContext, id string) error {
	var n int
	if err := sqlx.GetContext(ctx, q, &n, s.db.Rebind(`SELECT COUNT(*) FROM records WHERE id = ?`), id); err != nil {
		return fmt.Errorf("lookup record %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	return nil
}
