package entities

import (
	"errors"
	"time"
)

// ErrSnapshotNotFound is returned when no refresh has succeeded yet
var ErrSnapshotNotFound = errors.New("market snapshot not available")

// Snapshot is the last successful market listing. It is replaced as a whole,
// never mutated in place.
type Snapshot struct {
	VsCurrency string    `json:"vs_currency"`
	FetchedAt  time.Time `json:"fetched_at"`
	Markets    []Market  `json:"markets"`
}

func NewSnapshot(vsCurrency string, markets []Market, fetchedAt time.Time) *Snapshot {
	return &Snapshot{
		VsCurrency: vsCurrency,
		FetchedAt:  fetchedAt,
		Markets:    markets,
	}
}

// Age returns how long ago the snapshot was fetched
func (s *Snapshot) Age() time.Duration {
	return time.Since(s.FetchedAt)
}

// Len returns the number of markets in the snapshot
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Markets)
}
