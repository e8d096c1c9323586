package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vaulttec/vault131/internal/vault/domain"
)

// snapshotRepository implements domain.SnapshotRepository using SQLite.
type snapshotRepository struct {
	db  *sql.DB
	now func() time.Time
}

func newSnapshotRepository(db *sql.DB) *snapshotRepository {
	return &snapshotRepository{db: db, now: time.Now}
}

var _ domain.SnapshotRepository = (*snapshotRepository)(nil)

// Load returns the payload stored under key.
// Returns SnapshotNotFoundError if nothing is stored.
func (r *snapshotRepository) Load(key string) ([]byte, error) {
	var model SnapshotModel
	err := r.db.QueryRow(
		`SELECT key, payload, created_at, updated_at FROM snapshots WHERE key = ?`,
		key,
	).Scan(&model.Key, &model.Payload, &model.CreatedAt, &model.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.SnapshotNotFoundError{Key: key}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return []byte(model.Payload), nil
}

// Save inserts or replaces the payload stored under key. created_at is kept
// from the first save.
func (r *snapshotRepository) Save(key string, payload []byte) error {
	model := newSnapshotModel(key, payload, r.now())
	_, err := r.db.Exec(
		`INSERT INTO snapshots (key, payload, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		model.Key, model.Payload, model.CreatedAt, model.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Delete removes the snapshot stored under key.
// Returns SnapshotNotFoundError if nothing was stored.
func (r *snapshotRepository) Delete(key string) error {
	result, err := r.db.Exec(`DELETE FROM snapshots WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return &domain.SnapshotNotFoundError{Key: key}
	}
	return nil
}
