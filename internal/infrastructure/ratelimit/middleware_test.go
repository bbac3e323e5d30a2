package ratelimit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-watcher/internal/infrastructure/config"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func doRequest(h http.Handler, path, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitMiddleware_BlocksAfterCapacity(t *testing.T) {
	h := NewRateLimitMiddleware(config.RateLimitConfig{Enabled: true, Capacity: 2, RefillRate: 1}).Handler(okHandler)

	first := doRequest(h, "/cryptocurrencies/cryptocurrency", "192.0.2.1:5000")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, doRequest(h, "/cryptocurrencies/cryptocurrency", "192.0.2.1:5001").Code)

	blocked := doRequest(h, "/cryptocurrencies/cryptocurrency", "192.0.2.1:5002")
	require.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "1", blocked.Header().Get("Retry-After"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(blocked.Body).Decode(&body))
	assert.Contains(t, body["message"], "Rate limit exceeded")

	// otra IP tiene su propio bucket
	assert.Equal(t, http.StatusOK, doRequest(h, "/cryptocurrencies/cryptocurrency", "192.0.2.2:5000").Code)
}

func TestRateLimitMiddleware_SkipsProbes(t *testing.T) {
	h := NewRateLimitMiddleware(config.RateLimitConfig{Enabled: true, Capacity: 1, RefillRate: 1}).Handler(okHandler)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(h, "/health", "192.0.2.1:5000").Code)
		assert.Equal(t, http.StatusOK, doRequest(h, "/metrics", "192.0.2.1:5000").Code)
	}
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	h := NewRateLimitMiddleware(config.RateLimitConfig{Enabled: false}).Handler(okHandler)

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, doRequest(h, "/cryptocurrencies/cryptocurrency", "192.0.2.1:5000").Code)
	}
}

func TestTrustedProxies_ClientID(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{"10.0.0.0/8", "192.0.2.50"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		proxies  TrustedProxies
		headers  map[string]string
		remote   string
		expected string
	}{
		{"remote addr sin puerto", nil, nil, "192.0.2.1:1234", "192.0.2.1"},
		{"ipv6", nil, nil, "[2001:db8::1]:443", "2001:db8::1"},
		{"sin proxies se ignoran las cabeceras", nil, map[string]string{"X-Forwarded-For": "203.0.113.5", "X-Real-IP": "203.0.113.9"}, "198.51.100.7:80", "198.51.100.7"},
		{"peer no confiable se ignora", proxies, map[string]string{"X-Forwarded-For": "203.0.113.5"}, "198.51.100.7:80", "198.51.100.7"},
		{"proxy confiable usa x-forwarded-for", proxies, map[string]string{"X-Forwarded-For": "203.0.113.5"}, "10.0.0.1:80", "203.0.113.5"},
		{"se salta saltos confiables desde la derecha", proxies, map[string]string{"X-Forwarded-For": "198.51.100.1, 203.0.113.5, 10.1.2.3"}, "192.0.2.50:80", "203.0.113.5"},
		{"todos confiables toma el primero", proxies, map[string]string{"X-Forwarded-For": "10.0.0.9, 10.0.0.8"}, "10.0.0.1:80", "10.0.0.9"},
		{"x-real-ip desde proxy confiable", proxies, map[string]string{"X-Real-IP": "203.0.113.9"}, "10.0.0.1:80", "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, tt.proxies.ClientID(req))
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{" 10.0.0.0/8 ", "192.0.2.50", "", "2001:db8::1"})
	require.NoError(t, err)
	assert.Len(t, proxies, 3)

	_, err = ParseTrustedProxies([]string{"proxy.internal"})
	assert.Error(t, err)
}

func TestRateLimitMiddleware_SpoofedForwardedForSharesBucket(t *testing.T) {
	h := NewRateLimitMiddleware(config.RateLimitConfig{Enabled: true, Capacity: 2, RefillRate: 1}).Handler(okHandler)

	codes := make([]int, 0, 3)
	for i, spoofed := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		req := httptest.NewRequest(http.MethodGet, "/cryptocurrencies/cryptocurrency", nil)
		req.RemoteAddr = fmt.Sprintf("198.51.100.7:%d", 5000+i)
		req.Header.Set("X-Forwarded-For", spoofed)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimitMiddleware_TrustedProxySeparatesClients(t *testing.T) {
	h := NewRateLimitMiddleware(config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillRate:     1,
		TrustedProxies: []string{"10.0.0.1"},
	}).Handler(okHandler)

	for _, client := range []string{"203.0.113.1", "203.0.113.2"} {
		req := httptest.NewRequest(http.MethodGet, "/cryptocurrencies/cryptocurrency", nil)
		req.RemoteAddr = "10.0.0.1:443"
		req.Header.Set("X-Forwarded-For", client)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, client)
	}
}
