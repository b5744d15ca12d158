package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperwork/paperwork/internal/platform/db"
	"github.com/paperwork/paperwork/pkg/pagination"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

type clock struct{ t time.Time }

func (c *clock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newClock() *clock {
	return &clock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func backends(t *testing.T) map[string]Store {
	t.Helper()

	mem := NewMemory()
	mem.now = newClock().now

	plain := NewSQL(db.OpenMemory(t))
	plain.now = newClock().now
	require.NoError(t, plain.Migrate(context.Background()))

	sealer, err := NewSealerFromHex(testKey)
	require.NoError(t, err)
	sealed := NewSQL(db.OpenMemory(t), WithSealer(sealer))
	sealed.now = newClock().now
	require.NoError(t, sealed.Migrate(context.Background()))

	return map[string]Store{"memory": mem, "sqlite": plain, "sqlite-sealed": sealed}
}

func TestStore_PutAndGetRecord(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			r := &Record{FormpackID: "notfallpass", Locale: "de", Title: "Pass", Data: map[string]any{
				"person": map[string]any{"name": "Erika"},
			}}
			require.NoError(t, s.PutRecord(ctx, r))
			require.NotEmpty(t, r.ID)
			assert.False(t, r.CreatedAt.IsZero())

			got, err := s.GetRecord(ctx, r.ID)
			require.NoError(t, err)
			assert.Equal(t, "notfallpass", got.FormpackID)
			assert.Equal(t, "de", got.Locale)
			assert.Equal(t, "Pass", got.Title)
			assert.Equal(t, map[string]any{"person": map[string]any{"name": "Erika"}}, got.Data)
			assert.True(t, got.CreatedAt.Equal(r.CreatedAt))
		})
	}
}

func TestStore_PutRecordPreservesCreatedAt(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			r := &Record{FormpackID: "doctor-letter", Data: map[string]any{"a": "1"}}
			require.NoError(t, s.PutRecord(ctx, r))
			created := r.CreatedAt

			update := &Record{ID: r.ID, FormpackID: "doctor-letter", Data: map[string]any{"a": "2"}}
			require.NoError(t, s.PutRecord(ctx, update))

			got, err := s.GetRecord(ctx, r.ID)
			require.NoError(t, err)
			assert.True(t, got.CreatedAt.Equal(created), "created %v, got %v", created, got.CreatedAt)
			assert.True(t, got.UpdatedAt.After(created))
			assert.Equal(t, "2", got.Data["a"])
		})
	}
}

func TestStore_GetRecordNotFound(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.GetRecord(context.Background(), "missing")
			assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
		})
	}
}

func TestStore_PutRecordRequiresFormpack(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := s.PutRecord(context.Background(), &Record{FormpackID: "  "})
			assert.True(t, errors.Is(err, ErrInvalidRecord), "got %v", err)
		})
	}
}

func TestStore_CallerMutationDoesNotLeak(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			data := map[string]any{"nested": map[string]any{"k": "v"}}
			r := &Record{FormpackID: "notfallpass", Data: data}
			require.NoError(t, s.PutRecord(ctx, r))

			data["nested"].(map[string]any)["k"] = "changed"

			got, err := s.GetRecord(ctx, r.ID)
			require.NoError(t, err)
			got.Data["extra"] = true

			again, err := s.GetRecord(ctx, r.ID)
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"nested": map[string]any{"k": "v"}}, again.Data)
		})
	}
}

func TestStore_ListRecords(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var ids []string
			for _, fp := range []string{"notfallpass", "doctor-letter", "notfallpass", "notfallpass"} {
				r := &Record{FormpackID: fp}
				require.NoError(t, s.PutRecord(ctx, r))
				ids = append(ids, r.ID)
			}

			all, total, err := s.ListRecords(ctx, ListFilter{Page: pagination.New(0, 0)})
			require.NoError(t, err)
			assert.Equal(t, 4, total)
			require.Len(t, all, 4)
			assert.Equal(t, ids[3], all[0].ID, "most recent first")

			page, total, err := s.ListRecords(ctx, ListFilter{FormpackID: "notfallpass", Page: pagination.New(2, 0)})
			require.NoError(t, err)
			assert.Equal(t, 3, total)
			require.Len(t, page, 2)
			assert.Equal(t, []string{ids[3], ids[2]}, []string{page[0].ID, page[1].ID})

			rest, _, err := s.ListRecords(ctx, ListFilter{FormpackID: "notfallpass", Page: pagination.New(2, 2)})
			require.NoError(t, err)
			require.Len(t, rest, 1)
			assert.Equal(t, ids[0], rest[0].ID)

			none, total, err := s.ListRecords(ctx, ListFilter{FormpackID: "offlabel-antrag", Page: pagination.New(0, 0)})
			require.NoError(t, err)
			assert.Zero(t, total)
			assert.Empty(t, none)
		})
	}
}

func TestStore_Snapshots(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			r := &Record{FormpackID: "offlabel-antrag", Data: map[string]any{"v": "current"}}
			require.NoError(t, s.PutRecord(ctx, r))

			first := &Snapshot{RecordID: r.ID, Label: "draft", Data: map[string]any{"v": "1"}}
			require.NoError(t, s.PutSnapshot(ctx, first))
			second := &Snapshot{RecordID: r.ID, Data: map[string]any{"v": "2"}}
			require.NoError(t, s.PutSnapshot(ctx, second))

			snaps, err := s.ListSnapshots(ctx, r.ID)
			require.NoError(t, err)
			require.Len(t, snaps, 2)
			assert.Equal(t, "draft", snaps[0].Label)
			assert.Equal(t, "1", snaps[0].Data["v"])
			assert.Equal(t, "2", snaps[1].Data["v"])
			assert.Equal(t, r.ID, snaps[1].RecordID)
		})
	}
}

func TestStore_SnapshotNeedsRecord(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			err := s.PutSnapshot(ctx, &Snapshot{RecordID: "missing"})
			assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

			_, err = s.ListSnapshots(ctx, "missing")
			assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

			err = s.PutSnapshot(ctx, &Snapshot{})
			assert.True(t, errors.Is(err, ErrInvalidRecord), "got %v", err)
		})
	}
}

func TestSQL_SealedDataIsNotPlaintext(t *testing.T) {
	ctx := context.Background()
	conn := db.OpenMemory(t)
	sealer, err := NewSealerFromHex(testKey)
	require.NoError(t, err)
	s := NewSQL(conn, WithSealer(sealer))
	require.NoError(t, s.Migrate(ctx))

	r := &Record{FormpackID: "notfallpass", Data: map[string]any{"diagnosis": "ME/CFS"}}
	require.NoError(t, s.PutRecord(ctx, r))

	var raw []byte
	require.NoError(t, conn.GetContext(ctx, &raw, `SELECT data FROM records WHERE id = ?`, r.ID))
	assert.False(t, strings.Contains(string(raw), "ME/CFS"))

	keyless := NewSQL(conn)
	_, err = keyless.GetRecord(ctx, r.ID)
	assert.True(t, errors.Is(err, ErrSealed), "got %v", err)
}

func TestSealer(t *testing.T) {
	_, err := NewSealer([]byte("short"))
	assert.Error(t, err)
	_, err = NewSealerFromHex("zz")
	assert.Error(t, err)

	s, err := NewSealerFromHex(testKey)
	require.NoError(t, err)

	a, err := s.Seal([]byte("payload"))
	require.NoError(t, err)
	b, err := s.Seal([]byte("payload"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "nonce must differ per seal")

	plain, err := s.Open(a)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(plain))

	a[len(a)-1] ^= 0xff
	_, err = s.Open(a)
	assert.Error(t, err)
	_, err = s.Open([]byte{1, 2})
	assert.Error(t, err)
}

func TestMigrations(t *testing.T) {
	for _, driver := range []string{db.SQLiteDriver, db.PostgresDriver} {
		fsys, err := Migrations(driver)
		require.NoError(t, err, driver)
		migs, err := db.NewMigrator(nil, fsys).LoadMigrations()
		require.NoError(t, err)
		assert.NotEmpty(t, migs, driver)
	}
	_, err := Migrations("mysql")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, release, err := Open(ctx, Options{Driver: BackendMemory})
	require.NoError(t, err)
	release()
	assert.IsType(t, &Memory{}, s)

	path := filepath.Join(t.TempDir(), "nested", "records.db")
	s, release, err = Open(ctx, Options{Driver: BackendSQLite, SQLitePath: path})
	require.NoError(t, err)
	defer release()
	r := &Record{FormpackID: "notfallpass"}
	require.NoError(t, s.PutRecord(ctx, r))
	_, err = s.GetRecord(ctx, r.ID)
	require.NoError(t, err)

	_, _, err = Open(ctx, Options{Driver: "mysql"})
	assert.Error(t, err)
}
