package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-http-utils/headers"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"crypto-watcher/internal/domain/entities"
	"crypto-watcher/internal/infrastructure/config"
	"crypto-watcher/internal/infrastructure/logging"
	"crypto-watcher/internal/infrastructure/metrics"
)

const (
	ServiceName       = "coingecko"
	HeaderAPIKey      = "x-cg-pro-api-key"
	DefaultBaseURL    = "https://pro-api.coingecko.com/api/"
	DefaultTimeout    = 10 * time.Second
	DefaultVsCurrency = "usd"

	endpointCoinsList   = "v3/coins/list"
	endpointCoinDetails = "v3/coins/{id}"
	endpointMarkets     = "v3/coins/markets"
	endpointPing        = "v3/ping"
)

// marketsQuery are the fixed parameters of the markets listing; only vs_currency varies
var marketsQuery = map[string]string{
	"order":                   "market_cap_desc",
	"per_page":                "100",
	"page":                    "1",
	"sparkline":               "false",
	"price_change_percentage": "24h",
}

// Client talks to the CoinGecko Pro API through one shared resty session.
// The session only exists between InitializeSession and CloseSession.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	currencies []string

	mu      sync.RWMutex
	session *resty.Client

	details *detailMemo
}

// NewClient crea un cliente con la configuración por defecto y la API key indicada
func NewClient(apiKey string) *Client {
	cfg := config.GetDefaultConfig().Upstream
	cfg.APIKey = apiKey
	return NewClientWithConfig(cfg)
}

// NewClientWithConfig crea el cliente a partir de la configuración de upstream.
// No abre ninguna sesión.
func NewClientWithConfig(cfg config.UpstreamConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	currencies := make([]string, 0, len(cfg.AllowedVsCurrencies))
	for _, c := range cfg.AllowedVsCurrencies {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			currencies = append(currencies, c)
		}
	}
	if len(currencies) == 0 {
		currencies = []string{DefaultVsCurrency}
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		timeout:    timeout,
		currencies: currencies,
		details:    newDetailMemo(cfg.DetailCacheSize),
	}
}

// InitializeSession creates the shared session. Calling it again while a
// session is open only logs.
func (c *Client) InitializeSession() {
	ctx := context.Background()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		logging.Lifecycle().ComponentNoop(ctx, "coingecko session", "session already initialized")
		return
	}

	// resty joins base and path with '/', so the trailing slash must go
	c.session = resty.New().
		SetBaseURL(strings.TrimRight(c.baseURL, "/")).
		SetTimeout(c.timeout).
		SetRetryCount(0).
		SetLogger(restyLogger{}).
		SetHeaders(map[string]string{
			headers.Accept: "application/json",
			HeaderAPIKey:   c.apiKey,
		})

	metrics.SetUpstreamSessionOpen(true)
	logging.Lifecycle().ComponentStarted(ctx, "coingecko session", logging.Fields{
		"base_url": c.baseURL,
		"timeout":  c.timeout.String(),
	})
}

// CloseSession releases pooled connections and clears the handle.
// Calling it with no open session only logs.
func (c *Client) CloseSession() {
	ctx := context.Background()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		logging.Lifecycle().ComponentNoop(ctx, "coingecko session", "no session to close")
		return
	}

	c.session.GetClient().CloseIdleConnections()
	c.session = nil

	metrics.SetUpstreamSessionOpen(false)
	logging.Lifecycle().ComponentStopped(ctx, "coingecko session", nil)
}

// HasSession reports whether a session is currently open
func (c *Client) HasSession() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session != nil
}

// FetchMarkets returns the top markets priced in vsCurrency. Currencies
// outside the allow-list are replaced by the default one with a warning.
func (c *Client) FetchMarkets(ctx context.Context, vsCurrency string) ([]entities.Market, error) {
	currency := c.normalizeCurrency(ctx, vsCurrency)

	query := make(map[string]string, len(marketsQuery)+1)
	for k, v := range marketsQuery {
		query[k] = v
	}
	query["vs_currency"] = currency

	body, status, err := c.get(ctx, endpointMarkets, query, nil)
	if err != nil {
		return nil, err
	}

	var markets []entities.Market
	if err := json.Unmarshal(body, &markets); err != nil {
		return nil, &FetchError{Endpoint: endpointMarkets, StatusCode: status, Err: errors.Wrap(err, "invalid markets payload")}
	}

	return markets, nil
}

// FetchCoinDetails returns the detail payload of one coin, verbatim. Successful
// results are kept for the process lifetime (bounded by the memo size).
func (c *Client) FetchCoinDetails(ctx context.Context, id string) (json.RawMessage, error) {
	if !c.HasSession() {
		return nil, ErrNotInitialized
	}

	return c.details.get(ctx, id, func(ctx context.Context) (json.RawMessage, error) {
		return c.getRaw(ctx, endpointCoinDetails, nil, map[string]string{"id": id})
	})
}

// FetchCoinList returns the full coin list verbatim. Never memoized.
func (c *Client) FetchCoinList(ctx context.Context) (json.RawMessage, error) {
	return c.getRaw(ctx, endpointCoinsList, nil, nil)
}

// Ping checks that the API answers with the current session
func (c *Client) Ping(ctx context.Context) error {
	_, _, err := c.get(ctx, endpointPing, nil, nil)
	return err
}

// MemoizedDetails returns how many coin details are memoized
func (c *Client) MemoizedDetails() int {
	return c.details.len()
}

func (c *Client) normalizeCurrency(ctx context.Context, vsCurrency string) string {
	currency := strings.ToLower(strings.TrimSpace(vsCurrency))
	for _, allowed := range c.currencies {
		if currency == allowed {
			return currency
		}
	}

	fallback := c.currencies[0]
	logging.Warn(ctx, "Unsupported vs_currency, using default", logging.Fields{
		"requested":             vsCurrency,
		logging.FieldVsCurrency: fallback,
	})
	return fallback
}

func (c *Client) getRaw(ctx context.Context, endpoint string, query, pathParams map[string]string) (json.RawMessage, error) {
	body, status, err := c.get(ctx, endpoint, query, pathParams)
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		return nil, &FetchError{Endpoint: endpoint, StatusCode: status, Err: errors.New("response body is not valid JSON")}
	}

	return json.RawMessage(body), nil
}

// get performs one GET with the current session. No retries.
func (c *Client) get(ctx context.Context, endpoint string, query, pathParams map[string]string) ([]byte, int, error) {
	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()

	if session == nil {
		return nil, 0, ErrNotInitialized
	}

	logging.ExternalAPI().RequestStarted(ctx, ServiceName, endpoint, http.MethodGet)

	req := session.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if len(pathParams) > 0 {
		req.SetPathParams(pathParams)
	}

	requestStart := time.Now()
	resp, err := req.Get(endpoint)
	duration := time.Since(requestStart)
	durationMs := float64(duration.Nanoseconds()) / 1e6

	if err != nil {
		metrics.RecordExternalAPICall(ServiceName, endpoint, 0, duration.Seconds())
		logging.ExternalAPI().RequestFailed(ctx, ServiceName, endpoint, 0, err, durationMs)
		return nil, 0, &FetchError{Endpoint: endpoint, Err: err}
	}

	status := resp.StatusCode()
	metrics.RecordExternalAPICall(ServiceName, endpoint, status, duration.Seconds())

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		fetchErr := &FetchError{Endpoint: endpoint, StatusCode: status, Err: errors.Errorf("unexpected status: %s", truncate(resp.String(), 256))}
		logging.ExternalAPI().RequestFailed(ctx, ServiceName, endpoint, status, fetchErr, durationMs)
		return nil, status, fetchErr
	}

	logging.ExternalAPI().RequestCompleted(ctx, ServiceName, endpoint, status, durationMs)
	return resp.Body(), status, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// restyLogger sends resty's internal messages to the external_api logger
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) {
	logging.ExternalAPI().Error(context.Background(), "resty: "+strings.TrimSpace(fmt.Sprintf(format, v...)), nil)
}

func (restyLogger) Warnf(format string, v ...interface{}) {
	logging.ExternalAPI().Warn(context.Background(), "resty: "+strings.TrimSpace(fmt.Sprintf(format, v...)), nil)
}

func (restyLogger) Debugf(format string, v ...interface{}) {
	logging.ExternalAPI().Debug(context.Background(), "resty: "+strings.TrimSpace(fmt.Sprintf(format, v...)), nil)
}
