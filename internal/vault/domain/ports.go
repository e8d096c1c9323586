package domain

// SnapshotRepository stores opaque session snapshots by key.
// Load returns *SnapshotNotFoundError when nothing is stored under key.
type SnapshotRepository interface {
	Load(key string) ([]byte, error)
	Save(key string, payload []byte) error
	Delete(key string) error
}
