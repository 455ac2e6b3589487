// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Fallback decisions are logged through Logger.Fallback with the fields
// dependency, operation, source=fallback and reason, so synthetic responses
// can be told apart from live ones in the logs even though the API payload
// does not carry that flag.
//
// Example Usage:
//
//	logger := logging.NewFromSettings("info", false)
//	logger.Info("Server starting", zap.String("port", "8000"))
//	logger.Fallback("market_api", "price", "breaker_open", err)
package logging
