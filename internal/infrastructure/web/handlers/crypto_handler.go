package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"crypto-watcher/internal/application/dto"
	"crypto-watcher/internal/domain/entities"
	"crypto-watcher/internal/infrastructure/logging"
)

// MarketReader is what the crypto endpoints read from
type MarketReader interface {
	CoinList(ctx context.Context) (json.RawMessage, error)
	CoinDetails(ctx context.Context, id string) (json.RawMessage, error)
	LatestSnapshot(ctx context.Context) (*entities.Snapshot, error)
}

// CryptoHandler handles the /cryptocurrencies endpoints
type CryptoHandler struct {
	markets MarketReader
	mapper  *dto.SnapshotMapper
}

// NewCryptoHandler creates a new instance of the crypto handler
func NewCryptoHandler(markets MarketReader) *CryptoHandler {
	return &CryptoHandler{
		markets: markets,
		mapper:  dto.NewSnapshotMapper(),
	}
}

// ListCryptocurrencies godoc
// @Summary List all coins
// @Description Returns the upstream coin list verbatim. Not cached.
// @Tags cryptocurrencies
// @Produce json
// @Success 200 {array} object "Coin list (id, symbol, name)"
// @Failure 500 {object} dto.ErrorResponse "Generic internal error"
// @Router /cryptocurrencies/cryptocurrency [get]
func (h *CryptoHandler) ListCryptocurrencies(w http.ResponseWriter, r *http.Request) error {
	payload, err := h.markets.CoinList(r.Context())
	if err != nil {
		return err
	}

	writeRawJSON(w, http.StatusOK, payload)
	return nil
}

// GetCryptocurrency godoc
// @Summary Get one coin
// @Description Returns the upstream detail payload of a coin verbatim. Successful lookups are memoized for the process lifetime.
// @Tags cryptocurrencies
// @Produce json
// @Param currency_id path string true "Coin id" example(bitcoin)
// @Success 200 {object} object "Coin detail"
// @Failure 500 {object} dto.ErrorResponse "Generic internal error"
// @Router /cryptocurrencies/cryptocurrency/{currency_id} [get]
func (h *CryptoHandler) GetCryptocurrency(w http.ResponseWriter, r *http.Request) error {
	id := mux.Vars(r)["currency_id"]

	payload, err := h.markets.CoinDetails(r.Context(), id)
	if err != nil {
		return err
	}

	writeRawJSON(w, http.StatusOK, payload)
	return nil
}

// GetMarkets godoc
// @Summary Latest market snapshot
// @Description Returns the last market listing stored by the background refresh, optionally filtered by coin ids.
// @Tags cryptocurrencies
// @Produce json
// @Param ids query string false "Comma separated coin ids" example(bitcoin,ethereum)
// @Success 200 {object} dto.MarketsResponse "Latest snapshot"
// @Failure 503 {object} dto.ErrorResponse "No refresh has succeeded yet"
// @Failure 500 {object} dto.ErrorResponse "Generic internal error"
// @Router /cryptocurrencies/markets [get]
func (h *CryptoHandler) GetMarkets(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	snapshot, err := h.markets.LatestSnapshot(ctx)
	if errors.Is(err, entities.ErrSnapshotNotFound) {
		logging.Warn(ctx, "Market snapshot requested before first refresh", nil)
		writeJSONResponse(w, http.StatusServiceUnavailable, dto.NewErrorResponse("Market data is not available yet."))
		return nil
	}
	if err != nil {
		return err
	}

	ids := dto.ParseIDs(r.URL.Query().Get("ids"))
	writeJSONResponse(w, http.StatusOK, h.mapper.ToMarketsResponse(snapshot, ids))
	return nil
}
