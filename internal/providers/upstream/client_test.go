package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AetherAlpha/backend/internal/infrastructure/tracing"
)

func TestClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":45000.5}}`))
	}))
	defer srv.Close()

	client := NewClient(Config{
		Name:    "test",
		BaseURL: srv.URL,
		Timeout: time.Second,
		Headers: map[string]string{"X-Api-Key": "secret"},
	})

	body, err := client.Get(context.Background(), "/simple/price", map[string]string{"ids": "bitcoin"})
	require.NoError(t, err)

	var out map[string]struct {
		USD float64 `json:"usd"`
	}
	require.NoError(t, Decode(body, &out))
	assert.Equal(t, 45000.5, out["bitcoin"].USD)
}

func TestClientStatusError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("down"))
	}))
	defer srv.Close()

	client := NewClient(Config{Name: "test", BaseURL: srv.URL, Timeout: time.Second})

	_, err := client.Get(context.Background(), "/", nil)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, "down", statusErr.Body)
	assert.Equal(t, int32(1), calls.Load(), "client must not retry on its own")
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(Config{Name: "test", BaseURL: srv.URL, Timeout: 20 * time.Millisecond})

	_, err := client.Get(context.Background(), "/", nil)
	assert.Error(t, err)
}

func TestClientRateLimitHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(Config{Name: "test", BaseURL: srv.URL, Timeout: time.Second, RateLimit: 0.01})

	_, err := client.Get(context.Background(), "/", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.Get(ctx, "/", nil)
	assert.Error(t, err)
}

func TestDecodeMalformed(t *testing.T) {
	var out map[string]interface{}
	assert.Error(t, Decode([]byte("not json"), &out))
}

func TestClientForwardsTraceContext(t *testing.T) {
	var traceID atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID.Store(r.Header.Get(tracing.TraceHeader))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tracer := tracing.New("test", nil)
	defer tracer.Close()

	span, ctx := tracer.StartSpan(context.Background(), "request")
	client := NewClient(Config{Name: "test", BaseURL: srv.URL, Timeout: time.Second}).WithTracer(tracer)

	_, err := client.Get(ctx, "/", nil)
	require.NoError(t, err)
	assert.Equal(t, string(span.TraceID), traceID.Load())
}
