package sqlite

import "time"

// SnapshotModel is a row of the snapshots table. Times are Unix seconds.
type SnapshotModel struct {
	Key       string
	Payload   string
	CreatedAt int64
	UpdatedAt int64
}

func newSnapshotModel(key string, payload []byte, now time.Time) *SnapshotModel {
	return &SnapshotModel{
		Key:       key,
		Payload:   string(payload),
		CreatedAt: now.Unix(),
		UpdatedAt: now.Unix(),
	}
}
