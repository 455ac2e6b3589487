package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AetherAlpha/backend/internal/api/http"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/api/middleware"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/api/ws"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/domain/feed"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/providers/ai"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/providers/market"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/providers/news"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/providers/upstream"
)

// Version is reported by /health
const Version = "0.1.0"

const newsAPIKeyHeader = "X-Api-Key"

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	http     *nethttp.Server
	feed     *feed.Service
	breakers []*resilience.Breaker
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
}

// NewServer wires every component from cfg. A nil logger is built from the
// logging settings.
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewFromSettings(cfg.Logging.Level, cfg.Logging.Development)
	}

	logger.Info("Initializing AetherAlpha gateway",
		zap.String("version", Version),
		zap.String("port", cfg.Server.Port),
		zap.Bool("mock_data", cfg.Features.UseMockData),
		zap.Bool("news_key", cfg.News.APIKey != ""),
		zap.Bool("ai_key", cfg.AI.APIKey != ""),
	)

	symbols, err := config.LoadSymbols(cfg.Market.SymbolsFile)
	if err != nil {
		return nil, err
	}

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("gateway", logger.Logger)

	// Breakers outlive requests; one per upstream dependency.
	newsBreaker := newBreaker(news.Dependency, cfg.Resilience, logger, metrics)
	marketBreaker := newBreaker(market.Dependency, cfg.Resilience, logger, metrics)

	retrier := resilience.NewRetrier(resilience.RetryConfig{
		MaxAttempts: cfg.Resilience.MaxAttempts,
		BaseDelay:   cfg.Resilience.BaseDelay,
		MaxDelay:    cfg.Resilience.MaxDelay,
	})

	newsHeaders := map[string]string{}
	if cfg.News.APIKey != "" {
		newsHeaders[newsAPIKeyHeader] = cfg.News.APIKey
	}
	newsHTTP := upstream.NewClient(upstream.Config{
		Name:    news.Dependency,
		BaseURL: cfg.News.BaseURL,
		Timeout: cfg.News.Timeout,
		Headers: newsHeaders,
	}).WithTracer(tracer)

	newsClient := news.NewClient(newsHTTP, resilience.NewGuard(newsBreaker, retrier), news.Options{
		APIKey:   cfg.News.APIKey,
		Query:    cfg.News.Query,
		MockMode: cfg.Features.UseMockData,
	}, logger).WithMetrics(metrics)

	marketHeaders := map[string]string{}
	if cfg.Market.APIKey != "" {
		marketHeaders[market.APIKeyHeader] = cfg.Market.APIKey
	}
	marketHTTP := upstream.NewClient(upstream.Config{
		Name:      market.Dependency,
		BaseURL:   cfg.Market.BaseURL,
		Timeout:   maxDuration(cfg.Market.PriceTimeout, cfg.Market.HistoryTimeout),
		RateLimit: cfg.Market.RateLimitRPS,
		Headers:   marketHeaders,
	}).WithTracer(tracer)

	marketClient := market.NewClient(marketHTTP, resilience.NewGuard(marketBreaker, retrier),
		market.NewGenerator(symbols.Baselines, nil),
		market.Options{
			MockMode:       cfg.Features.UseMockData,
			Coins:          symbols.Coins,
			PriceTimeout:   cfg.Market.PriceTimeout,
			HistoryTimeout: cfg.Market.HistoryTimeout,
		}, logger).WithMetrics(metrics)

	aiService := ai.NewService(ai.Options{
		APIKey:   cfg.AI.APIKey,
		MockMode: cfg.Features.UseMockData,
	}, nil, logger)

	feedService := feed.NewService(newsClient, marketClient, aiService, feed.Options{
		EnrichSentiment: cfg.Features.EnrichNewsSentiment,
	}, logger)

	breakers := []*resilience.Breaker{newsBreaker, marketBreaker}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.CORSOrigins...)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := http.NewHandlers(feedService, breakers, Version)
	wsHandler := ws.NewHandler(feedService, ws.Config{
		Interval:    cfg.Stream.Interval,
		TickTimeout: cfg.Stream.TickTimeout,
	}, logger).WithMetrics(metrics)

	registerRoutes(router, handlers, wsHandler, metrics)

	logger.Info("Server initialized successfully")

	srv := &Server{
		router:   router,
		feed:     feedService,
		breakers: breakers,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
		tracer:   tracer,
	}
	srv.http = &nethttp.Server{
		Addr:              srv.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv, nil
}

func registerRoutes(router *gin.Engine, h *http.Handlers, wsHandler *ws.Handler, metrics *monitoring.Metrics) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/api/v1")

	newsGroup := v1.Group("/news")
	newsGroup.GET("/", h.ListNews)
	newsGroup.GET("/:id/analyze", h.AnalyzeNews)

	marketGroup := v1.Group("/market")
	marketGroup.GET("/price/:symbol", h.GetPrice)
	marketGroup.GET("/history/:symbol", h.GetHistory)
	marketGroup.GET("/stats/:symbol", h.GetStats)
	marketGroup.GET("/ws/:symbol", wsHandler.Stream)

	v1.POST("/chat/", h.Chat)
	v1.GET("/system/breakers", h.ListBreakers)
}

func newBreaker(name string, cfg config.ResilienceConfig, logger *logging.Logger, metrics *monitoring.Metrics) *resilience.Breaker {
	return resilience.New(name, resilience.Settings{
		FailMax:      cfg.FailMax,
		ResetTimeout: cfg.ResetTimeout,
		Exclude:      resilience.IsCanceled,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.RecordBreakerState(name, from, to)
		},
	})
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

// Router exposes the HTTP handler, mainly for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Breakers returns the upstream breakers
func (s *Server) Breakers() []*resilience.Breaker {
	return s.breakers
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Server.Host, s.config.Server.Port)
}

// Run serves HTTP until Shutdown is called. Run after Shutdown returns nil
// without listening.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and flushes telemetry
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	err := s.http.Shutdown(ctx)
	if err != nil {
		s.logger.Error("Failed to shut down HTTP server", zap.Error(err))
	}

	s.tracer.Close()
	_ = s.logger.Sync()
	return err
}
