package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"

	"crypto-watcher/internal/application/dto"
	"crypto-watcher/internal/infrastructure/config"
	"crypto-watcher/internal/infrastructure/logging"
	"crypto-watcher/internal/infrastructure/metrics"
)

// probes and scraping are never limited
var skipPaths = map[string]bool{
	"/health":  true,
	"/ready":   true,
	"/metrics": true,
}

// RateLimitMiddleware limits requests per client IP
type RateLimitMiddleware struct {
	limiter *RateLimiterCollection
	enabled bool
	proxies TrustedProxies
}

// NewRateLimitMiddleware creates the middleware from configuration
func NewRateLimitMiddleware(cfg config.RateLimitConfig) *RateLimitMiddleware {
	proxies, err := ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		// el validador ya rechaza esto; sin proxies se usa siempre RemoteAddr
		logging.Warn(context.Background(), "Ignoring invalid trusted proxies", logging.Fields{
			logging.FieldError: err.Error(),
		})
		proxies = nil
	}

	m := &RateLimitMiddleware{enabled: cfg.Enabled, proxies: proxies}
	if cfg.Enabled {
		m.limiter = NewRateLimiterCollection(cfg.Capacity, cfg.RefillRate)
	}
	return m
}

// Handler returns the HTTP middleware handler
func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled || skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		clientID := m.proxies.ClientID(r)
		allowed, remaining := m.limiter.Allow(clientID)

		metrics.RecordRateLimitResult(allowed)
		metrics.UpdateRateLimitTokens(clientID, float64(remaining))

		if !allowed {
			logging.HTTP().RateLimitExceeded(r.Context(), clientID, r.URL.Path)
			writeRateLimitError(w)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		next.ServeHTTP(w, r)
	})
}

// TrustedProxies are the peers allowed to report the client address through
// X-Forwarded-For or X-Real-IP.
type TrustedProxies []netip.Prefix

// ParseTrustedProxies accepts plain addresses and CIDR ranges
func ParseTrustedProxies(entries []string) (TrustedProxies, error) {
	proxies := make(TrustedProxies, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
			}
			proxies = append(proxies, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		proxies = append(proxies, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return proxies, nil
}

func (p TrustedProxies) trusts(raw string) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range p {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientID returns the address used as bucket key. Forwarding headers only
// count when the direct peer is a trusted proxy; X-Forwarded-For is read
// right to left, skipping trusted hops.
func (p TrustedProxies) ClientID(r *http.Request) string {
	peer := remoteHost(r)
	if !p.trusts(peer) {
		return peer
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		hops := strings.Split(forwarded, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			if i == 0 || !p.trusts(hop) {
				return hop
			}
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	return peer
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeRateLimitError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusTooManyRequests)

	_ = json.NewEncoder(w).Encode(dto.NewErrorResponse("Rate limit exceeded. Please slow down your requests."))
}
