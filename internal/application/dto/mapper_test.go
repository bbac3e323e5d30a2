package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"crypto-watcher/internal/domain/entities"
)

func TestParseIDs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"vacío", "", nil},
		{"solo espacios", "   ", nil},
		{"uno", "bitcoin", []string{"bitcoin"}},
		{"varios con espacios y mayúsculas", " Bitcoin, ethereum ,,SOLANA", []string{"bitcoin", "ethereum", "solana"}},
		{"duplicados", "bitcoin,BITCOIN,bitcoin", []string{"bitcoin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseIDs(tt.input))
		})
	}
}

func TestSnapshotMapper_ToMarketsResponse(t *testing.T) {
	fetchedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	snap := entities.NewSnapshot("usd", []entities.Market{
		{ID: "bitcoin", MarketCapRank: 1},
		{ID: "ethereum", MarketCapRank: 2},
		{ID: "tether", MarketCapRank: 3},
	}, fetchedAt)

	mapper := &SnapshotMapper{now: func() time.Time { return fetchedAt.Add(30 * time.Second) }}

	t.Run("sin filtro conserva el orden", func(t *testing.T) {
		resp := mapper.ToMarketsResponse(snap, nil)
		assert.Equal(t, "usd", resp.VsCurrency)
		assert.Equal(t, 3, resp.Count)
		assert.Equal(t, 30.0, resp.AgeSeconds)
		assert.Equal(t, "bitcoin", resp.Markets[0].ID)
		assert.Equal(t, "tether", resp.Markets[2].ID)
	})

	t.Run("filtro por ids", func(t *testing.T) {
		resp := mapper.ToMarketsResponse(snap, []string{"tether", "bitcoin"})
		assert.Equal(t, 2, resp.Count)
		assert.Equal(t, "bitcoin", resp.Markets[0].ID)
		assert.Equal(t, "tether", resp.Markets[1].ID)
	})

	t.Run("filtro sin coincidencias devuelve lista vacía", func(t *testing.T) {
		resp := mapper.ToMarketsResponse(snap, []string{"dogecoin"})
		assert.Equal(t, 0, resp.Count)
		assert.NotNil(t, resp.Markets)
	})
}
