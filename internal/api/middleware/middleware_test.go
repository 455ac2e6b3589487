package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/AetherAlpha/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/shared/id"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "success"})
}

func TestCORS(t *testing.T) {
	router := setupTestRouter()
	router.Use(CORS(DefaultCORSConfig("http://localhost:3000")))
	router.GET("/test", okHandler)

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{
			name:       "allowed origin",
			method:     "GET",
			origin:     "http://localhost:3000",
			wantStatus: http.StatusOK,
			wantOrigin: "http://localhost:3000",
		},
		{
			name:       "preflight from allowed origin",
			method:     "OPTIONS",
			origin:     "http://localhost:3000",
			wantStatus: http.StatusNoContent,
			wantOrigin: "http://localhost:3000",
		},
		{
			name:       "foreign origin",
			method:     "GET",
			origin:     "https://evil.example.com",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "no origin header",
			method:     "GET",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.method == "OPTIONS" {
				req.Header.Set("Access-Control-Request-Method", "GET")
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSWildcard(t *testing.T) {
	router := setupTestRouter()
	router.Use(CORS(DefaultCORSConfig("*")))
	router.GET("/test", okHandler)

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()

	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowOrigins)
	assert.Contains(t, cfg.AllowMethods, "GET")
	assert.Contains(t, cfg.AllowMethods, "POST")
	assert.Contains(t, cfg.AllowHeaders, RequestIDHeader)
	assert.Equal(t, 12*time.Hour, cfg.MaxAge)
}

func TestRateLimit(t *testing.T) {
	router := setupTestRouter()
	router.Use(RateLimit(RateLimitConfig{RequestsPerSecond: 2, Burst: 2}))
	router.GET("/test", okHandler)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "192.168.1.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "Request %d should succeed", i+1)
	}

	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "192.168.1.1:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, w.Body.String())
}

func TestRateLimitDifferentClients(t *testing.T) {
	router := setupTestRouter()
	router.Use(RateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 1}))
	router.GET("/test", okHandler)

	serve := func(addr string) int {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, serve("192.168.1.1:1234"))
	assert.Equal(t, http.StatusOK, serve("192.168.1.2:1234"))
	assert.Equal(t, http.StatusTooManyRequests, serve("192.168.1.1:1234"))
}

func TestRateLimitEvictsIdleClients(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := newIPLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, IdleTTL: time.Minute})
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.allow("10.0.0.1"))
	assert.True(t, limiter.allow("10.0.0.2"))
	assert.Equal(t, 2, limiter.size())

	now = now.Add(2 * time.Minute)
	assert.True(t, limiter.allow("10.0.0.3"))
	assert.Equal(t, 1, limiter.size())
}

func TestRequestID(t *testing.T) {
	router := setupTestRouter()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("generates an ID", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

		reqID := w.Header().Get(RequestIDHeader)
		assert.True(t, id.IsValid(reqID))
		assert.Equal(t, reqID, w.Body.String())
	})

	t.Run("reuses a valid inbound ID", func(t *testing.T) {
		inbound := id.NewRequestID().String()
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, inbound)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, inbound, w.Header().Get(RequestIDHeader))
	})

	t.Run("replaces a garbage inbound ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, "not-an-id")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.NotEqual(t, "not-an-id", w.Header().Get(RequestIDHeader))
	})
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	router := setupTestRouter()
	router.Use(RequestID(), Logger(logging.Wrap(zap.New(core))))
	router.GET("/ok", okHandler)
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/ok", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/bad", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "/bad", entries[1].ContextMap()["path"])
	assert.EqualValues(t, http.StatusBadRequest, entries[1].ContextMap()["status"])
	assert.NotEmpty(t, entries[1].ContextMap()["request_id"])
}

func BenchmarkRateLimit(b *testing.B) {
	router := setupTestRouter()
	router.Use(RateLimit(DefaultRateLimitConfig()))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "192.168.1.1:1234"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}
}
