// Package middleware provides the HTTP middleware of the gateway.
//
// Middleware stack:
//   - RequestID: ULID request IDs echoed in X-Request-ID
//   - Logger: structured access logging through zap
//   - CORS: origins from BACKEND_CORS_ORIGINS
//   - RateLimit: per-IP token buckets with idle eviction
//
// Example Usage:
//
//	router.Use(middleware.RequestID(), middleware.Logger(logger))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.CORSOrigins...)))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
