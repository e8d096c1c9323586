package sqlite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vaulttec/vault131/internal/vault/application"
	"github.com/vaulttec/vault131/internal/vault/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewMemoryDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSnapshotRepository_LoadMissing(t *testing.T) {
	repo := newTestDB(t).SnapshotRepository()

	_, err := repo.Load("vault131_state_v4")
	var notFound *domain.SnapshotNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "vault131_state_v4", notFound.Key)
}

func TestSnapshotRepository_SaveLoadDelete(t *testing.T) {
	repo := newTestDB(t).SnapshotRepository()

	require.NoError(t, repo.Save("k", []byte(`{"stage":"login"}`)))
	got, err := repo.Load("k")
	require.NoError(t, err)
	require.JSONEq(t, `{"stage":"login"}`, string(got))

	// Overwrite keeps a single row.
	require.NoError(t, repo.Save("k", []byte(`{"stage":"riddles"}`)))
	got, err = repo.Load("k")
	require.NoError(t, err)
	require.JSONEq(t, `{"stage":"riddles"}`, string(got))

	require.NoError(t, repo.Delete("k"))
	_, err = repo.Load("k")
	require.Error(t, err)

	var notFound *domain.SnapshotNotFoundError
	require.ErrorAs(t, repo.Delete("k"), &notFound)
}

func TestSnapshotRepository_KeepsCreatedAt(t *testing.T) {
	db := newTestDB(t)
	repo := newSnapshotRepository(db.Connection())

	first := time.Unix(1_700_000_000, 0)
	repo.now = func() time.Time { return first }
	require.NoError(t, repo.Save("k", []byte(`{}`)))

	repo.now = func() time.Time { return first.Add(time.Hour) }
	require.NoError(t, repo.Save("k", []byte(`{"stage":"boot"}`)))

	var created, updated int64
	err := db.Connection().QueryRow(`SELECT created_at, updated_at FROM snapshots WHERE key = 'k'`).Scan(&created, &updated)
	require.NoError(t, err)
	require.Equal(t, first.Unix(), created)
	require.Equal(t, first.Add(time.Hour).Unix(), updated)
}

func TestSnapshotStore_OverSQLite(t *testing.T) {
	store := application.NewSnapshotStore(newTestDB(t).SnapshotRepository(), "")

	store.Save(domain.Session{Stage: domain.StageRiddles, Name: "Jane", Code: "101-317-76", RiddleIndex: 1})
	got, ok := store.Load()
	require.True(t, ok)
	require.Equal(t, domain.Session{Stage: domain.StageRiddles, Name: "Jane", RiddleIndex: 1}, got)

	store.Clear()
	_, ok = store.Load()
	require.False(t, ok)
}

func TestNewDB_CreatesDirectoryAndBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "vault131.db")

	db, err := NewDB(path)
	require.NoError(t, err)
	require.NoError(t, db.SnapshotRepository().Save("k", []byte(`{"stage":"login"}`)))
	require.NoError(t, db.Close())

	_, err = os.Stat(path + ".bak")
	require.True(t, os.IsNotExist(err), "no backup for a fresh database")

	db, err = NewDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = os.Stat(path + ".bak")
	require.NoError(t, err, "existing database is backed up before migrating")

	got, err := db.SnapshotRepository().Load("k")
	require.NoError(t, err)
	require.JSONEq(t, `{"stage":"login"}`, string(got))
}
