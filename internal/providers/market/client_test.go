package market

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AetherAlpha/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/providers/upstream"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/types"
)

// MockGetter is a mock upstream transport
type MockGetter struct {
	mock.Mock
}

func (m *MockGetter) Get(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	args := m.Called(ctx, path, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func newTestClient(getter Getter, opts Options) *Client {
	breaker := resilience.New(Dependency, resilience.Settings{FailMax: 3, ResetTimeout: time.Minute, Exclude: resilience.IsCanceled})
	retrier := resilience.NewRetrier(resilience.DefaultRetryConfig()).
		WithSleeper(func(context.Context, time.Duration) error { return nil })
	return NewClient(getter, resilience.NewGuard(breaker, retrier), NewGenerator(nil, rand.NewSource(3)), opts, nil)
}

func TestGetLatestPriceMockModeSkipsUpstream(t *testing.T) {
	getter := new(MockGetter)
	client := newTestClient(getter, Options{MockMode: true})

	first, err := client.GetLatestPrice(context.Background(), "BTC-USD")
	require.NoError(t, err)
	second, err := client.GetLatestPrice(context.Background(), "BTC-USD")
	require.NoError(t, err)

	assert.InDelta(t, 45000.0, first, 225.0)
	assert.InDelta(t, first, second, first*walkStep)
	getter.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, uint32(0), client.Breaker().Counts().Requests)
}

func TestGetLatestPriceUnmappedSymbolSkipsUpstream(t *testing.T) {
	getter := new(MockGetter)
	client := newTestClient(getter, Options{})

	price, err := client.GetLatestPrice(context.Background(), "NG=F")
	require.NoError(t, err)

	assert.InDelta(t, 2.50, price, 2.50*walkStep)
	getter.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetLatestPriceLive(t *testing.T) {
	getter := new(MockGetter)
	getter.On("Get", mock.Anything, pricePath, map[string]string{"ids": "bitcoin", "vs_currencies": "usd"}).
		Return([]byte(`{"bitcoin":{"usd":64123.5}}`), nil).Once()

	client := newTestClient(getter, Options{})

	price, err := client.GetLatestPrice(context.Background(), "BTC-USD")
	require.NoError(t, err)
	assert.Equal(t, 64123.5, price)
	assert.Equal(t, 45000.0, client.Generator().Baseline("BTC-USD"), "live prices leave the walk alone")
	getter.AssertExpectations(t)
}

func TestGetLatestPriceMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing coin", body: `{}`},
		{name: "missing usd", body: `{"bitcoin":{}}`},
		{name: "zero price", body: `{"bitcoin":{"usd":0}}`},
		{name: "not json", body: `rate limited`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getter := new(MockGetter)
			getter.On("Get", mock.Anything, mock.Anything, mock.Anything).Return([]byte(tt.body), nil).Once()
			client := newTestClient(getter, Options{})

			price, err := client.GetLatestPrice(context.Background(), "BTC-USD")
			require.NoError(t, err)

			assert.InDelta(t, 45000.0, price, 225.0)
			assert.Equal(t, uint32(0), client.Breaker().Counts().ConsecutiveFailures)
			getter.AssertNumberOfCalls(t, "Get", 1)
		})
	}
}

func TestMarketBreakerOpensAfterThreeFailedCalls(t *testing.T) {
	getter := new(MockGetter)
	getter.On("Get", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &upstream.StatusError{StatusCode: http.StatusTooManyRequests})
	client := newTestClient(getter, Options{})

	for i := 0; i < 3; i++ {
		_, err := client.GetLatestPrice(context.Background(), "ETH-USD")
		require.NoError(t, err)
	}
	require.Equal(t, resilience.StateOpen, client.Breaker().State())
	getter.AssertNumberOfCalls(t, "Get", 9)

	history, err := client.GetPriceHistory(context.Background(), "ETH-USD", 7)
	require.NoError(t, err)
	assert.Len(t, history, 7)
	getter.AssertNumberOfCalls(t, "Get", 9)
}

func TestGetPriceHistoryLive(t *testing.T) {
	getter := new(MockGetter)
	getter.On("Get", mock.Anything, "/coins/solana/market_chart", map[string]string{"vs_currency": "usd", "days": "2"}).
		Return([]byte(`{"prices":[[1714564800000,140.5],[1714651200000,142.25]]}`), nil).Once()
	client := newTestClient(getter, Options{})

	history, err := client.GetPriceHistory(context.Background(), "SOL-USD", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, "SOL-USD", history[0].Symbol)
	assert.Equal(t, 140.5, history[0].Price)
	assert.Equal(t, time.UnixMilli(1714564800000).UTC(), history[0].Timestamp)
	assert.Equal(t, 142.25, history[1].Price)
	assert.Zero(t, history[1].Volume)
}

func TestGetPriceHistoryMalformedFallsBack(t *testing.T) {
	for _, body := range []string{`{"prices":[]}`, `{}`, `{"prices":[[1714564800000]]}`} {
		getter := new(MockGetter)
		getter.On("Get", mock.Anything, mock.Anything, mock.Anything).Return([]byte(body), nil).Once()
		client := newTestClient(getter, Options{})

		history, err := client.GetPriceHistory(context.Background(), "BTC-USD", 1)
		require.NoError(t, err, body)
		assert.Len(t, history, 24, body)
	}
}

func TestGetPriceHistoryUnknownSymbol(t *testing.T) {
	client := newTestClient(new(MockGetter), Options{})

	history, err := client.GetPriceHistory(context.Background(), "UNKNOWN-SYM", 1)
	require.NoError(t, err)
	require.Len(t, history, 24)
	for _, point := range history {
		assert.Equal(t, "UNKNOWN-SYM", point.Symbol)
		assert.InDelta(t, DefaultBaseline, point.Price, 100.01)
	}
}

func TestContractViolations(t *testing.T) {
	client := newTestClient(nil, Options{MockMode: true})
	ctx := context.Background()

	_, err := client.GetLatestPrice(ctx, "")
	assert.ErrorIs(t, err, types.ErrInvalidSymbol)

	_, err = client.GetPriceHistory(ctx, "", 1)
	assert.ErrorIs(t, err, types.ErrInvalidSymbol)

	for _, days := range []int{0, -1, 366} {
		_, err = client.GetPriceHistory(ctx, "BTC-USD", days)
		assert.ErrorIs(t, err, types.ErrInvalidDays, "days=%d", days)
	}

	_, err = client.GenerateTicker(ctx, "")
	assert.ErrorIs(t, err, types.ErrInvalidSymbol)
}

func TestGenerateTicker(t *testing.T) {
	client := newTestClient(nil, Options{MockMode: true})

	for i := 0; i < 50; i++ {
		tick, err := client.GenerateTicker(context.Background(), "ETH-USD")
		require.NoError(t, err)

		assert.Equal(t, "ETH-USD", tick.Symbol)
		assert.GreaterOrEqual(t, tick.Change24h, -5.0)
		assert.LessOrEqual(t, tick.Change24h, 5.0)
		assert.GreaterOrEqual(t, tick.Volume, 1000.0)
		assert.LessOrEqual(t, tick.Volume, 50000.0)
		assert.Equal(t, time.UTC, tick.Timestamp.Location())
	}
}

func TestCoinsOverlay(t *testing.T) {
	client := newTestClient(nil, Options{Coins: map[string]string{"ADA-USD": "cardano"}})

	coin, ok := client.CoinID("ADA-USD")
	assert.True(t, ok)
	assert.Equal(t, "cardano", coin)

	coin, ok = client.CoinID("BTC-USD")
	assert.True(t, ok)
	assert.Equal(t, "bitcoin", coin)
}

func TestGetLatestPriceOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pricePath, r.URL.Path)
		assert.Equal(t, "dogecoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "demo", r.Header.Get(APIKeyHeader))
		_, _ = w.Write([]byte(`{"dogecoin":{"usd":0.1234}}`))
	}))
	defer srv.Close()

	httpClient := upstream.NewClient(upstream.Config{
		Name:    Dependency,
		BaseURL: srv.URL,
		Timeout: time.Second,
		Headers: map[string]string{APIKeyHeader: "demo"},
	})
	client := newTestClient(httpClient, Options{})

	price, err := client.GetLatestPrice(context.Background(), "DOGE-USD")
	require.NoError(t, err)
	assert.Equal(t, 0.1234, price)
}
