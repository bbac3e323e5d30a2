package services

import (
	"context"
	"encoding/json"

	"crypto-watcher/internal/domain/entities"
	"crypto-watcher/internal/domain/interfaces"
	"crypto-watcher/internal/infrastructure/logging"
)

// MarketService atiende las lecturas del router. Listado y detalle van
// directos al cliente; el snapshot se lee del store que escribe el Refresher.
type MarketService struct {
	client interfaces.MarketDataClient
	store  interfaces.SnapshotStore
}

// NewMarketService creates a new instance of the market service
func NewMarketService(client interfaces.MarketDataClient, store interfaces.SnapshotStore) *MarketService {
	return &MarketService{
		client: client,
		store:  store,
	}
}

// CoinList returns the upstream coin list verbatim
func (s *MarketService) CoinList(ctx context.Context) (json.RawMessage, error) {
	logging.Debug(ctx, "CoinList: forwarding to upstream", nil)
	return s.client.FetchCoinList(ctx)
}

// CoinDetails returns the detail payload of one coin verbatim (memoized by the client)
func (s *MarketService) CoinDetails(ctx context.Context, id string) (json.RawMessage, error) {
	logging.Debug(ctx, "CoinDetails: forwarding to upstream", logging.Fields{
		logging.FieldCurrencyID: id,
	})
	return s.client.FetchCoinDetails(ctx, id)
}

// LatestSnapshot returns the last stored market snapshot, or
// entities.ErrSnapshotNotFound before the first successful refresh.
func (s *MarketService) LatestSnapshot(ctx context.Context) (*entities.Snapshot, error) {
	return s.store.Get(ctx)
}

// CheckUpstream pings the pricing API with the current session
func (s *MarketService) CheckUpstream(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// HasSession reports whether the upstream session is open. Clients without
// an explicit session lifecycle always report true.
func (s *MarketService) HasSession() bool {
	if sm, ok := s.client.(interfaces.SessionManager); ok {
		return sm.HasSession()
	}
	return true
}
