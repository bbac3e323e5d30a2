package entities

import (
	"encoding/json"
	"time"
)

// Market is one record of the upstream coins/markets listing.
// The typed fields are the ones the service reads; Raw keeps the record
// exactly as received so it can be served back unchanged.
type Market struct {
	ID                       string    `json:"id"`
	Symbol                   string    `json:"symbol"`
	Name                     string    `json:"name"`
	CurrentPrice             float64   `json:"current_price"`
	MarketCap                float64   `json:"market_cap"`
	MarketCapRank            int       `json:"market_cap_rank"`
	TotalVolume              float64   `json:"total_volume"`
	PriceChangePercentage24h float64   `json:"price_change_percentage_24h"`
	LastUpdated              time.Time `json:"last_updated"`

	Raw json.RawMessage `json:"-"`
}

// marketFields evita la recursión de UnmarshalJSON/MarshalJSON
type marketFields Market

// UnmarshalJSON decodes the typed fields and keeps a copy of the raw record.
// Upstream sends null for several numeric fields; those decode as zero.
func (m *Market) UnmarshalJSON(data []byte) error {
	var f struct {
		ID                       string   `json:"id"`
		Symbol                   string   `json:"symbol"`
		Name                     string   `json:"name"`
		CurrentPrice             *float64 `json:"current_price"`
		MarketCap                *float64 `json:"market_cap"`
		MarketCapRank            *int     `json:"market_cap_rank"`
		TotalVolume              *float64 `json:"total_volume"`
		PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
		LastUpdated              *string  `json:"last_updated"`
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}

	*m = Market{
		ID:                       f.ID,
		Symbol:                   f.Symbol,
		Name:                     f.Name,
		CurrentPrice:             deref(f.CurrentPrice),
		MarketCap:                deref(f.MarketCap),
		MarketCapRank:            deref(f.MarketCapRank),
		TotalVolume:              deref(f.TotalVolume),
		PriceChangePercentage24h: deref(f.PriceChangePercentage24h),
		Raw:                      append(json.RawMessage(nil), data...),
	}

	if f.LastUpdated != nil && *f.LastUpdated != "" {
		if ts, err := time.Parse(time.RFC3339, *f.LastUpdated); err == nil {
			m.LastUpdated = ts
		}
	}

	return nil
}

// MarshalJSON returns the raw upstream record when present
func (m Market) MarshalJSON() ([]byte, error) {
	if len(m.Raw) > 0 {
		return m.Raw, nil
	}
	return json.Marshal(marketFields(m))
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
