package dto

import (
	"strings"
	"time"

	"crypto-watcher/internal/domain/entities"
	"crypto-watcher/pkg/utils"
)

// SnapshotMapper convierte snapshots del dominio a DTOs
type SnapshotMapper struct {
	now func() time.Time
}

// NewSnapshotMapper crea una nueva instancia del mapper
func NewSnapshotMapper() *SnapshotMapper {
	return &SnapshotMapper{now: time.Now}
}

// ToMarketsResponse convierte el snapshot conservando el orden del proveedor (market cap desc)
func (m *SnapshotMapper) ToMarketsResponse(snapshot *entities.Snapshot, ids []string) *MarketsResponse {
	markets := m.FilterMarketsByIDs(snapshot.Markets, ids)
	if markets == nil {
		markets = []entities.Market{}
	}

	return &MarketsResponse{
		VsCurrency: snapshot.VsCurrency,
		FetchedAt:  snapshot.FetchedAt,
		AgeSeconds: utils.SecondsSince(snapshot.FetchedAt, m.now()),
		Count:      len(markets),
		Markets:    markets,
	}
}

// FilterMarketsByIDs filtra mercados por id de moneda; sin ids devuelve todos
func (m *SnapshotMapper) FilterMarketsByIDs(markets []entities.Market, ids []string) []entities.Market {
	if len(ids) == 0 {
		return markets
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var filtered []entities.Market
	for _, market := range markets {
		if wanted[market.ID] {
			filtered = append(filtered, market)
		}
	}

	return filtered
}

// ParseIDs separa una lista de ids separada por comas, sin vacíos ni duplicados
func ParseIDs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	seen := make(map[string]bool)
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		id := strings.ToLower(strings.TrimSpace(part))
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
