package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "nested", "holidaze.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDB_SaveLoad(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Save(ctx, "accessToken", "tok-1"))
	require.NoError(t, db.Save(ctx, "profile", profile{Name: "alice", Email: "alice@stud.noroff.no"}))

	var token string
	require.NoError(t, db.Load(ctx, "accessToken", &token))
	assert.Equal(t, "tok-1", token)

	var p profile
	require.NoError(t, db.Load(ctx, "profile", &p))
	assert.Equal(t, "alice", p.Name)

	// overwrite
	require.NoError(t, db.Save(ctx, "accessToken", "tok-2"))
	require.NoError(t, db.Load(ctx, "accessToken", &token))
	assert.Equal(t, "tok-2", token)
}

func TestDB_Missing(t *testing.T) {
	db := newTestDB(t)
	var token string
	assert.ErrorIs(t, db.Load(context.Background(), "accessToken", &token), ErrNotFound)
}

func TestDB_SaveNilDeletes(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Save(ctx, "accessToken", "tok"))
	require.NoError(t, db.Save(ctx, "accessToken", nil))

	var token string
	assert.ErrorIs(t, db.Load(ctx, "accessToken", &token), ErrNotFound)
	assert.NoError(t, db.Delete(ctx, "accessToken"))
}
