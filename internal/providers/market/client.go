package market

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AetherAlpha/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/providers/upstream"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/types"
)

// Dependency is the breaker and metrics name of the market upstream
const Dependency = "market_api"

// APIKeyHeader carries the optional CoinGecko demo key
const APIKeyHeader = "x-cg-demo-api-key"

const (
	pricePath        = "/simple/price"
	operationPrice   = "price"
	operationHistory = "history"
	reasonMockMode   = "mock_mode"
	reasonUnmapped   = "unmapped_symbol"
	reasonMalformed  = "malformed_payload"
	reasonBreaker    = "breaker_open"
	reasonExhausted  = "retry_exhausted"
)

var (
	errNoPrice   = errors.New("price payload has no positive usd value")
	errNoHistory = errors.New("history payload has no price points")
)

// DefaultCoins returns the built-in symbol to CoinGecko id mapping
func DefaultCoins() map[string]string {
	return map[string]string{
		"BTC-USD":  "bitcoin",
		"ETH-USD":  "ethereum",
		"SOL-USD":  "solana",
		"DOGE-USD": "dogecoin",
	}
}

// Getter performs one upstream GET
type Getter interface {
	Get(ctx context.Context, path string, query map[string]string) ([]byte, error)
}

// Options configure the market client
type Options struct {
	MockMode       bool
	Coins          map[string]string // merged over DefaultCoins
	PriceTimeout   time.Duration
	HistoryTimeout time.Duration
}

// Client is the resilient market client. Mapped symbols go to CoinGecko
// through the guard; everything else is served by the Generator.
type Client struct {
	http    Getter
	guard   *resilience.Guard
	gen     *Generator
	opts    Options
	coins   map[string]string
	logger  *logging.Logger
	metrics *monitoring.Metrics
	now     func() time.Time
}

// NewClient creates a market client
func NewClient(http Getter, guard *resilience.Guard, gen *Generator, opts Options, logger *logging.Logger) *Client {
	if gen == nil {
		gen = NewGenerator(nil, nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.PriceTimeout <= 0 {
		opts.PriceTimeout = 5 * time.Second
	}
	if opts.HistoryTimeout <= 0 {
		opts.HistoryTimeout = 10 * time.Second
	}

	coins := DefaultCoins()
	for symbol, coin := range opts.Coins {
		coins[symbol] = coin
	}

	return &Client{
		http:   http,
		guard:  guard,
		gen:    gen,
		opts:   opts,
		coins:  coins,
		logger: logger.Named("market"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithMetrics attaches a metrics collector
func (c *Client) WithMetrics(m *monitoring.Metrics) *Client {
	c.metrics = m
	return c
}

// Breaker exposes the client's breaker for inspection
func (c *Client) Breaker() *resilience.Breaker {
	return c.guard.Breaker()
}

// Generator returns the synthetic price source
func (c *Client) Generator() *Generator {
	return c.gen
}

// CoinID returns the upstream id for symbol
func (c *Client) CoinID(symbol string) (string, bool) {
	coin, ok := c.coins[symbol]
	return coin, ok
}

// GetLatestPrice returns the current USD price of symbol
func (c *Client) GetLatestPrice(ctx context.Context, symbol string) (float64, error) {
	if err := types.ValidateSymbol(symbol); err != nil {
		return 0, err
	}

	coin, reason, live := c.route(symbol)
	if !live {
		c.logger.Mocked(Dependency, operationPrice, reason, zap.String("symbol", symbol))
		c.metrics.RecordUpstream(Dependency, operationPrice, monitoring.SourceFallback, reason)
		return c.gen.Price(symbol), nil
	}

	query := map[string]string{"ids": coin, "vs_currencies": "usd"}
	body, reason, err := c.fetch(ctx, operationPrice, c.opts.PriceTimeout, pricePath, query)
	if err == nil {
		var price float64
		if price, err = parsePrice(body, coin); err == nil {
			c.metrics.RecordUpstream(Dependency, operationPrice, monitoring.SourceLive, "")
			return price, nil
		}
		reason = reasonMalformed
	}

	c.logger.Fallback(Dependency, operationPrice, reason, err, zap.String("symbol", symbol))
	c.metrics.RecordUpstream(Dependency, operationPrice, monitoring.SourceFallback, reason)
	return c.gen.Price(symbol), nil
}

// GetPriceHistory returns price points for the last days days, oldest first
func (c *Client) GetPriceHistory(ctx context.Context, symbol string, days int) ([]types.MarketTicker, error) {
	if err := types.ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	if err := types.ValidateDays(days); err != nil {
		return nil, err
	}

	coin, reason, live := c.route(symbol)
	if !live {
		c.logger.Mocked(Dependency, operationHistory, reason, zap.String("symbol", symbol))
		c.metrics.RecordUpstream(Dependency, operationHistory, monitoring.SourceFallback, reason)
		return c.gen.History(symbol, days), nil
	}

	path := fmt.Sprintf("/coins/%s/market_chart", url.PathEscape(coin))
	query := map[string]string{"vs_currency": "usd", "days": strconv.Itoa(days)}
	body, reason, err := c.fetch(ctx, operationHistory, c.opts.HistoryTimeout, path, query)
	if err == nil {
		var history []types.MarketTicker
		if history, err = parseHistory(body, symbol); err == nil {
			c.metrics.RecordUpstream(Dependency, operationHistory, monitoring.SourceLive, "")
			return history, nil
		}
		reason = reasonMalformed
	}

	c.logger.Fallback(Dependency, operationHistory, reason, err,
		zap.String("symbol", symbol), zap.Int("days", days))
	c.metrics.RecordUpstream(Dependency, operationHistory, monitoring.SourceFallback, reason)
	return c.gen.History(symbol, days), nil
}

// GenerateTicker builds one streaming tick. Change and volume are synthetic
// in every mode.
func (c *Client) GenerateTicker(ctx context.Context, symbol string) (types.MarketTicker, error) {
	price, err := c.GetLatestPrice(ctx, symbol)
	if err != nil {
		return types.MarketTicker{}, err
	}

	return types.MarketTicker{
		Symbol:    symbol,
		Price:     price,
		Timestamp: c.now(),
		Change24h: round2(c.gen.Uniform(-5, 5)),
		Volume:    round2(c.gen.Uniform(1000, 50000)),
	}, nil
}

// route decides whether symbol can be served live
func (c *Client) route(symbol string) (coin, reason string, live bool) {
	if c.opts.MockMode || c.http == nil {
		return "", reasonMockMode, false
	}
	coin, ok := c.coins[symbol]
	if !ok {
		return "", reasonUnmapped, false
	}
	return coin, "", true
}

// fetch runs one guarded GET, bounding every attempt by timeout
func (c *Client) fetch(ctx context.Context, op string, timeout time.Duration, path string, query map[string]string) ([]byte, string, error) {
	timer := monitoring.NewTimer(c.metrics, Dependency, op)
	res := resilience.Do(ctx, c.guard, func(ctx context.Context) ([]byte, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return c.http.Get(attemptCtx, path, query)
	})
	timer.Stop(res.Attempts)

	switch {
	case res.OK():
		return res.Value, "", nil
	case resilience.IsRejected(res.Err):
		return nil, reasonBreaker, res.Err
	default:
		return nil, reasonExhausted, fmt.Errorf("after %d attempts: %w", res.Attempts, res.Err)
	}
}

type pricePoint struct {
	USD *float64 `json:"usd"`
}

func parsePrice(body []byte, coin string) (float64, error) {
	var resp map[string]pricePoint
	if err := upstream.Decode(body, &resp); err != nil {
		return 0, err
	}
	point, ok := resp[coin]
	if !ok || point.USD == nil || *point.USD <= 0 {
		return 0, errNoPrice
	}
	return *point.USD, nil
}

type chartResponse struct {
	Prices [][]float64 `json:"prices"`
}

func parseHistory(body []byte, symbol string) ([]types.MarketTicker, error) {
	var resp chartResponse
	if err := upstream.Decode(body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Prices) == 0 {
		return nil, errNoHistory
	}

	history := make([]types.MarketTicker, 0, len(resp.Prices))
	for i, p := range resp.Prices {
		if len(p) < 2 {
			return nil, fmt.Errorf("history point %d: want [ms, price], got %d values", i, len(p))
		}
		history = append(history, types.MarketTicker{
			Symbol:    symbol,
			Price:     p[1],
			Timestamp: time.UnixMilli(int64(p[0])).UTC(),
		})
	}
	return history, nil
}
