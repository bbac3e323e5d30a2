package interfaces

import (
	"context"
	"encoding/json"

	"crypto-watcher/internal/domain/entities"
)

// MarketDataClient define las consultas al proveedor de precios.
// Los payloads de detalle y listado se devuelven sin transformar.
type MarketDataClient interface {
	// FetchMarkets obtiene el listado de mercados en la moneda indicada.
	// Monedas no soportadas se sustituyen por la moneda por defecto.
	FetchMarkets(ctx context.Context, vsCurrency string) ([]entities.Market, error)

	// FetchCoinDetails obtiene el detalle de una moneda (memoizado por id)
	FetchCoinDetails(ctx context.Context, id string) (json.RawMessage, error)

	// FetchCoinList obtiene el listado completo de monedas (sin memoizar)
	FetchCoinList(ctx context.Context) (json.RawMessage, error)

	// Ping comprueba que el proveedor responde
	Ping(ctx context.Context) error
}

// SessionManager controla el ciclo de vida de la sesión HTTP compartida
type SessionManager interface {
	InitializeSession()
	CloseSession()
	HasSession() bool
}

// MarketDataSession agrupa consultas y ciclo de vida
type MarketDataSession interface {
	MarketDataClient
	SessionManager
}
