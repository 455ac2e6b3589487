// Package main is the entry point of the AetherAlpha gateway.
//
// The gateway aggregates financial news and market prices behind a
// resilience layer and serves them to the dashboard:
//
//	Dashboard (React) → Go gateway → NewsAPI
//	                               → CoinGecko
//
// The server provides:
//   - REST API for news, prices, histories and price statistics
//   - WebSocket ticker streaming
//   - Circuit breaker status and Prometheus metrics
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Live upstreams
//	NEWS_API_KEY=... ./server -port 8000
//
//	# Synthetic data only
//	./server -mock
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
