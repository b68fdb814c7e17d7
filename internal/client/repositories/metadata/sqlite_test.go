package metadata

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/quickflip/internal/client/client"
	"github.com/dmitrijs2005/quickflip/internal/common"
	"github.com/dmitrijs2005/quickflip/internal/dbx"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "meta.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newRepo(db dbx.DBTX, now time.Time) *SQLiteRepository {
	r := NewSQLiteRepository(db)
	r.now = func() time.Time { return now }
	return r
}

func TestSetAndGet(t *testing.T) {
	db := setupDB(t)
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	r := newRepo(db, at)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "user", []byte(`{"id":"usr-1"}`)))

	rec, err := r.Get(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, "user", rec.Key)
	assert.Equal(t, []byte(`{"id":"usr-1"}`), rec.Value)
	assert.True(t, at.Equal(rec.UpdatedAt), "updated_at = %v", rec.UpdatedAt)
}

func TestGet_Missing(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	rec, err := r.Get(context.Background(), "absent")
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.Nil(t, rec)
}

func TestSet_UpsertOverwritesValueAndTimestamp(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	require.NoError(t, newRepo(db, first).Set(ctx, "k", []byte("old")))
	require.NoError(t, newRepo(db, second).Set(ctx, "k", []byte("new")))

	rec, err := NewSQLiteRepository(db).Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), rec.Value)
	assert.True(t, second.Equal(rec.UpdatedAt))
}

func TestSet_NilValueStoredAsEmpty(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", nil))

	rec, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, rec.Value)
}

func TestList_OrderedByKey(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "b", []byte{0xBB}))
	require.NoError(t, r.Set(ctx, "a", []byte{0xAA}))

	recs, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0].Key)
	assert.Equal(t, []byte{0xBB}, recs[1].Value)
}

func TestDelete_IsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "x", []byte{0x01}))
	require.NoError(t, r.Delete(ctx, "x"))

	_, err := r.Get(ctx, "x")
	require.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, r.Delete(ctx, "x"))
}

func TestClear_RemovesAllKeys(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{1}))
	require.NoError(t, r.Set(ctx, "b", []byte{2}))
	require.NoError(t, r.Clear(ctx))

	recs, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSet_InsideRolledBackTx(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		require.NoError(t, NewSQLiteRepository(tx).Set(ctx, "k", []byte("v")))
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = NewSQLiteRepository(db).Get(ctx, "k")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestClosedDB_ErrorsWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	assert.ErrorContains(t, err, "failed to get metadata[k]")
	assert.NotErrorIs(t, err, common.ErrNotFound)

	assert.ErrorContains(t, r.Set(ctx, "k", []byte("v")), "failed to set metadata[k]")
	assert.ErrorContains(t, r.Delete(ctx, "k"), "failed to delete metadata[k]")
	assert.ErrorContains(t, r.Clear(ctx), "failed to clear metadata")

	_, err = r.List(ctx)
	assert.ErrorContains(t, err, "failed to list metadata")
}
