// Package types defines the gateway's domain data and capability interfaces.
//
// Core Types:
//   - NewsItem: one article with sentiment score and label
//   - MarketTicker: one timestamped price snapshot
//   - PriceStats: summary of a price window
//
// Capabilities:
//   - NewsClient, AIService, MarketDataProvider
//
// Errors returned through these interfaces are contract violations only.
package types
