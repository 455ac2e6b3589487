// Package ws streams market ticks over WebSocket.
//
// Each connection gets one tick immediately and then one per interval.
// Producing a tick is bounded by the tick timeout, so a slow upstream yields
// a fallback tick rather than a stalled stream. A reader goroutine discards
// client frames and cancels the stream on disconnect, which also aborts any
// in-flight upstream call.
//
// Server → client frames are MarketTicker JSON objects, or a single
// {"error": ...} frame before close when the symbol is rejected.
//
// Example Usage:
//
//	handler := ws.NewHandler(feed, ws.Config{Interval: 5 * time.Second, TickTimeout: 4 * time.Second}, logger)
//	router.GET("/api/v1/market/ws/:symbol", handler.Stream)
package ws
