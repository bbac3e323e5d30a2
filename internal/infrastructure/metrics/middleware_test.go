package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/", "/"},
		{"/health", "/health"},
		{"/ready/", "/ready"},
		{"/cryptocurrencies/cryptocurrency", "/cryptocurrencies/cryptocurrency"},
		{"/cryptocurrencies/cryptocurrency/bitcoin", "/cryptocurrencies/cryptocurrency/{currency_id}"},
		{"/cryptocurrencies/cryptocurrency/some-random-id", "/cryptocurrencies/cryptocurrency/{currency_id}"},
		{"/cryptocurrencies/markets", "/cryptocurrencies/markets"},
		{"/swagger/index.html", "/swagger/*"},
		{"/wp-admin", "/unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizePath(tt.in))
		})
	}
}

func TestHTTPMetricsMiddleware_RecordsStatus(t *testing.T) {
	handler := HTTPMetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/health", "418")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRecordMarketRefresh(t *testing.T) {
	errBefore := testutil.ToFloat64(MarketRefreshesTotal.WithLabelValues("error"))
	RecordMarketRefresh(false, 0, 0)
	assert.Equal(t, errBefore+1, testutil.ToFloat64(MarketRefreshesTotal.WithLabelValues("error")))

	RecordMarketRefresh(true, 100, 1700000000)
	assert.Equal(t, 100.0, testutil.ToFloat64(SnapshotMarkets))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(SnapshotLastSuccess))
}
