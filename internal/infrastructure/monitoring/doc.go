/*
Package monitoring provides Prometheus metrics for the gateway.

# Overview

Each server owns one Metrics value with its own registry, so tests can
build several without duplicate-registration panics.

# Features

- HTTP request metrics (count, latency) labeled by route template
- Upstream results split by source, live or fallback, with the fallback reason
- Attempts and duration per logical upstream call
- Circuit breaker state gauge and transition counter
- WebSocket connection gauge and message counter

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "market_api", "price")
	// ... guarded call ...
	timer.Stop(res.Attempts)
	metrics.RecordUpstream("market_api", "price", monitoring.SourceFallback, "breaker_open")
*/
package monitoring
