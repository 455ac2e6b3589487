// Package http provides the REST handlers of the gateway.
//
// Routes (under /api/v1):
//   - GET  /news/?limit=10
//   - GET  /news/:id/analyze
//   - GET  /market/price/:symbol
//   - GET  /market/history/:symbol?days=1
//   - GET  /market/stats/:symbol?days=7
//   - POST /chat/
//   - GET  /system/breakers
//
// Upstream outages never reach this layer as errors; the domain serves
// fallback data instead. Contract violations answer 400 with {"error": ...}.
package http
