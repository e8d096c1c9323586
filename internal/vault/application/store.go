package application

import (
	"errors"
	"sync"

	"github.com/vaulttec/vault131/internal/log"
	"github.com/vaulttec/vault131/internal/vault/domain"
)

// DefaultSnapshotKey is the key the session snapshot is stored under.
const DefaultSnapshotKey = "vault131_state_v4"

// SnapshotStore adapts a SnapshotRepository to the best-effort Store
// contract: missing or malformed snapshots load as absent and every
// repository failure is logged and dropped.
type SnapshotStore struct {
	repo domain.SnapshotRepository
	key  string
}

// NewSnapshotStore creates a store persisting under key.
func NewSnapshotStore(repo domain.SnapshotRepository, key string) *SnapshotStore {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &SnapshotStore{repo: repo, key: key}
}

var _ Store = (*SnapshotStore)(nil)

// Load implements Store.
func (s *SnapshotStore) Load() (domain.Session, bool) {
	payload, err := s.repo.Load(s.key)
	if err != nil {
		var notFound *domain.SnapshotNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn(log.CatDB, "Failed to load session snapshot", "key", s.key, "error", err)
		}
		return domain.Session{}, false
	}

	session, err := domain.UnmarshalSnapshot(payload)
	if err != nil {
		log.Warn(log.CatDB, "Ignoring malformed session snapshot", "key", s.key, "error", err)
		return domain.Session{}, false
	}
	return session, true
}

// Save implements Store.
func (s *SnapshotStore) Save(session domain.Session) {
	payload, err := session.MarshalSnapshot()
	if err != nil {
		log.Warn(log.CatDB, "Failed to encode session snapshot", "error", err)
		return
	}
	if err := s.repo.Save(s.key, payload); err != nil {
		log.Warn(log.CatDB, "Failed to save session snapshot", "key", s.key, "error", err)
	}
}

// Clear implements Store.
func (s *SnapshotStore) Clear() {
	if err := s.repo.Delete(s.key); err != nil {
		var notFound *domain.SnapshotNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn(log.CatDB, "Failed to clear session snapshot", "key", s.key, "error", err)
		}
	}
}

// MemoryStore keeps the snapshot in process memory. Used when persistence
// is turned off and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	payload []byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

var _ Store = (*MemoryStore)(nil)

// Load implements Store.
func (s *MemoryStore) Load() (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.payload == nil {
		return domain.Session{}, false
	}
	session, err := domain.UnmarshalSnapshot(s.payload)
	if err != nil {
		return domain.Session{}, false
	}
	return session, true
}

// Save implements Store.
func (s *MemoryStore) Save(session domain.Session) {
	payload, err := session.MarshalSnapshot()
	if err != nil {
		return
	}
	s.mu.Lock()
	s.payload = payload
	s.mu.Unlock()
}

// Clear implements Store.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	s.payload = nil
	s.mu.Unlock()
}

// Raw returns the last saved payload, or nil.
func (s *MemoryStore) Raw() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.payload...)
}
