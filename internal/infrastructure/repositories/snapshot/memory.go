package snapshot

import (
	"context"
	"sync/atomic"

	"crypto-watcher/internal/domain/entities"
	"crypto-watcher/internal/domain/interfaces"
	"crypto-watcher/internal/infrastructure/metrics"
)

// MemoryStore keeps the snapshot behind an atomic pointer. Readers get the
// previous or the new snapshot, never a partial one.
type MemoryStore struct {
	current atomic.Pointer[entities.Snapshot]
}

// NewMemoryStore crea un store vacío en memoria
func NewMemoryStore() interfaces.SnapshotStore {
	return &MemoryStore{}
}

// Get retorna el snapshot actual. No debe modificarse.
func (s *MemoryStore) Get(ctx context.Context) (*entities.Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		metrics.RecordSnapshotOperation(string(BackendMemory), "get", "miss")
		return nil, entities.ErrSnapshotNotFound
	}
	metrics.RecordSnapshotOperation(string(BackendMemory), "get", "hit")
	return snap, nil
}

// Set reemplaza el snapshot completo
func (s *MemoryStore) Set(ctx context.Context, snapshot *entities.Snapshot) error {
	if snapshot == nil {
		return ErrNilSnapshot
	}
	s.current.Store(snapshot)
	metrics.RecordSnapshotOperation(string(BackendMemory), "set", "success")
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
