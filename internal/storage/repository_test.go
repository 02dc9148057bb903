package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func exerciseKV(t *testing.T, kv KV) {
	ctx := context.Background()

	_, err := kv.Get(ctx, KeyExpenses)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Put(ctx, KeyExpenses, []byte(`[1]`)))
	got, err := kv.Get(ctx, KeyExpenses)
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(got))

	require.NoError(t, kv.Put(ctx, KeyExpenses, []byte(`[1,2]`)))
	got, err = kv.Get(ctx, KeyExpenses)
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(got))

	_, err = kv.Get(ctx, KeyCategories)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, kv.Ping(ctx))
}

func TestMemoryKV(t *testing.T) {
	exerciseKV(t, NewMemory())
}

func TestMemoryKVCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	buf := []byte("abc")
	require.NoError(t, m.Put(ctx, "k", buf))
	buf[0] = 'x'
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestSQLiteKV(t *testing.T) {
	exerciseKV(t, newTestRepository(t))
}

func TestSQLiteKVPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "spendwise.db")

	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Put(ctx, KeyCategories, []byte(`[]`)))
	require.NoError(t, repo.Close())

	reopened, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get(ctx, KeyCategories)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
}

func TestSQLiteUpdatedAt(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	fixed := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	_, err := repo.UpdatedAt(ctx, KeyExpenses)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Put(ctx, KeyExpenses, []byte(`[]`)))
	ts, err := repo.UpdatedAt(ctx, KeyExpenses)
	require.NoError(t, err)
	assert.True(t, fixed.Equal(ts), "got %v", ts)
}

func TestMigrateReportsSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spendwise.db")

	v, err := Migrate(path)
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)

	// Already applied: no change, same version.
	v, err = Migrate(path)
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)

	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()
	assert.Equal(t, uint(1), repo.SchemaVersion())
}
