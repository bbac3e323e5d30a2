package services

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"crypto-watcher/internal/domain/entities"
)

// MockMarketDataClient is a mock implementation of interfaces.MarketDataClient
type MockMarketDataClient struct {
	mock.Mock
}

func (m *MockMarketDataClient) FetchMarkets(ctx context.Context, vsCurrency string) ([]entities.Market, error) {
	args := m.Called(ctx, vsCurrency)
	markets, _ := args.Get(0).([]entities.Market)
	return markets, args.Error(1)
}

func (m *MockMarketDataClient) FetchCoinDetails(ctx context.Context, id string) (json.RawMessage, error) {
	args := m.Called(ctx, id)
	payload, _ := args.Get(0).(json.RawMessage)
	return payload, args.Error(1)
}

func (m *MockMarketDataClient) FetchCoinList(ctx context.Context) (json.RawMessage, error) {
	args := m.Called(ctx)
	payload, _ := args.Get(0).(json.RawMessage)
	return payload, args.Error(1)
}

func (m *MockMarketDataClient) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
