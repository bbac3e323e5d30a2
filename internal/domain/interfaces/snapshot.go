package interfaces

import (
	"context"

	"crypto-watcher/internal/domain/entities"
)

// SnapshotStore guarda el último snapshot de mercados.
// Get devuelve entities.ErrSnapshotNotFound hasta el primer Set.
type SnapshotStore interface {
	Get(ctx context.Context) (*entities.Snapshot, error)
	Set(ctx context.Context, snapshot *entities.Snapshot) error
	Close() error
}

// SnapshotListener recibe cada snapshot nuevo tras guardarse
type SnapshotListener interface {
	OnSnapshot(snapshot *entities.Snapshot)
}

// SnapshotListenerFunc adapta una función a SnapshotListener
type SnapshotListenerFunc func(snapshot *entities.Snapshot)

func (f SnapshotListenerFunc) OnSnapshot(snapshot *entities.Snapshot) {
	f(snapshot)
}
