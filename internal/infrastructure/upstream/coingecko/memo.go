package coingecko

import (
	"context"
	"encoding/json"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"crypto-watcher/internal/infrastructure/logging"
	"crypto-watcher/internal/infrastructure/metrics"
)

// memoStore is the storage behind detailMemo: an LRU when bounded, a map otherwise
type memoStore interface {
	Get(key string) (json.RawMessage, bool)
	Add(key string, value json.RawMessage)
	Len() int
}

type unboundedStore struct {
	mu   sync.RWMutex
	data map[string]json.RawMessage
}

func (s *unboundedStore) Get(key string) (json.RawMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *unboundedStore) Add(key string, value json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

func (s *unboundedStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

type lruStore struct {
	cache *lru.Cache[string, json.RawMessage]
}

func (s *lruStore) Get(key string) (json.RawMessage, bool) { return s.cache.Get(key) }
func (s *lruStore) Add(key string, value json.RawMessage)  { s.cache.Add(key, value) }
func (s *lruStore) Len() int                               { return s.cache.Len() }

// detailMemo caches successful detail payloads by coin id, with no expiry.
// Concurrent misses for the same id share one fetch. Failures are never stored.
type detailMemo struct {
	store memoStore
	group singleflight.Group
}

// newDetailMemo builds a memo holding at most size entries; size 0 means unbounded
func newDetailMemo(size int) *detailMemo {
	if size <= 0 {
		return &detailMemo{store: &unboundedStore{data: make(map[string]json.RawMessage)}}
	}

	cache, err := lru.New[string, json.RawMessage](size)
	if err != nil {
		// lru.New only fails for non-positive sizes
		panic(err)
	}
	return &detailMemo{store: &lruStore{cache: cache}}
}

type fetchFunc func(ctx context.Context) (json.RawMessage, error)

func (m *detailMemo) get(ctx context.Context, id string, fetch fetchFunc) (json.RawMessage, error) {
	if v, ok := m.store.Get(id); ok {
		metrics.RecordDetailMemoLookup("hit")
		logging.Cache().Hit(ctx, id, logging.CacheOpGet)
		return v, nil
	}
	logging.Cache().Miss(ctx, id, logging.CacheOpGet)

	// the shared fetch must outlive any single caller; the session timeout bounds it
	fetchCtx := context.WithoutCancel(ctx)
	ch := m.group.DoChan(id, func() (interface{}, error) {
		// a call that finished between our miss and joining the group already stored it
		if v, ok := m.store.Get(id); ok {
			return v, nil
		}

		payload, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}

		m.store.Add(id, payload)
		metrics.UpdateDetailMemoEntries(m.store.Len())
		logging.Cache().Set(fetchCtx, id, "memo")
		return payload, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			metrics.RecordDetailMemoLookup("error")
			return nil, res.Err
		}
		if res.Shared {
			metrics.RecordDetailMemoLookup("shared")
		} else {
			metrics.RecordDetailMemoLookup("miss")
		}
		return res.Val.(json.RawMessage), nil

	case <-ctx.Done():
		// only this caller stops waiting; the fetch keeps going for the others
		metrics.RecordDetailMemoLookup("abandoned")
		return nil, ctx.Err()
	}
}

func (m *detailMemo) len() int {
	return m.store.Len()
}
