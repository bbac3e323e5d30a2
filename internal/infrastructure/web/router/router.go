package router

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "crypto-watcher/internal/docs"
	"crypto-watcher/internal/infrastructure/config"
	"crypto-watcher/internal/infrastructure/metrics"
	"crypto-watcher/internal/infrastructure/ratelimit"
	"crypto-watcher/internal/infrastructure/web/handlers"
	"crypto-watcher/internal/infrastructure/web/middleware"
)

// MarketService is everything the handlers read
type MarketService interface {
	handlers.MarketReader
	handlers.ReadinessSource
}

// Dependencies groups what the router wires into handlers and middleware
type Dependencies struct {
	Markets        MarketService
	Stream         http.Handler
	CORS           config.CORSConfig
	RateLimit      config.RateLimitConfig
	SnapshotMaxAge time.Duration
}

// New builds the HTTP handler with all routes and middleware
func New(deps Dependencies) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(handlers.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handlers.MethodNotAllowed)

	crypto := handlers.NewCryptoHandler(deps.Markets)
	health := handlers.NewHealthHandler(deps.Markets, deps.SnapshotMaxAge)

	api := r.PathPrefix("/cryptocurrencies").Subrouter()
	api.Handle("/cryptocurrency", handlers.AppHandler(crypto.ListCryptocurrencies)).Methods(http.MethodGet)
	api.Handle("/cryptocurrency/{currency_id}", handlers.AppHandler(crypto.GetCryptocurrency)).Methods(http.MethodGet)
	api.Handle("/markets", handlers.AppHandler(crypto.GetMarkets)).Methods(http.MethodGet)
	if deps.Stream != nil {
		api.Handle("/stream", deps.Stream).Methods(http.MethodGet)
	}

	r.HandleFunc("/health", health.Health).Methods(http.MethodGet)
	r.HandleFunc("/ready", health.Ready).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Handle("/docs", http.RedirectHandler("/swagger/index.html", http.StatusMovedPermanently))

	// el último en envolver es el más externo
	var h http.Handler = r
	h = ratelimit.NewRateLimitMiddleware(deps.RateLimit).Handler(h)
	h = newCORS(deps.CORS).Handler(h)
	h = middleware.RecoveryMiddleware(h)
	h = middleware.LoggingMiddleware(h)
	h = middleware.RequestTracingMiddleware(h)
	h = metrics.HTTPMetricsMiddleware(h)

	return h
}

func newCORS(cfg config.CORSConfig) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions, http.MethodHead},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{middleware.HeaderRequestID, "X-RateLimit-Remaining", "Retry-After"},
	})
}
