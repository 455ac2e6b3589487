package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AetherAlpha/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/types"
)

// analyzeText stands in for the article body until items are stored
const analyzeText = "Market is crashing due to unexpected inflation data."

const (
	defaultNewsLimit  = 10
	defaultHistoryDay = 1
	defaultStatsDays  = 7
)

var errBadQuery = errors.New("invalid query parameter")

// Feed is everything the handlers need from the domain layer
type Feed interface {
	types.NewsClient
	types.AIService
	types.MarketDataProvider
	PriceStats(ctx context.Context, symbol string, days int) (types.PriceStats, error)
}

// Handlers contains all HTTP handlers
type Handlers struct {
	feed     Feed
	breakers []*resilience.Breaker
	version  string
}

// NewHandlers creates a new handler set
func NewHandlers(feed Feed, breakers []*resilience.Breaker, version string) *Handlers {
	return &Handlers{
		feed:     feed,
		breakers: breakers,
		version:  version,
	}
}

// Root handles the welcome message
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to AetherAlpha API"})
}

// Health handles the liveness check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
	})
}

// ListNews returns the latest news
func (h *Handlers) ListNews(c *gin.Context) {
	limit, ok := queryInt(c, "limit", defaultNewsLimit)
	if !ok {
		return
	}

	items, err := h.feed.FetchLatestNews(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// AnalyzeNews runs on-demand sentiment analysis for a news item
func (h *Handlers) AnalyzeNews(c *gin.Context) {
	newsID := c.Param("id")

	score, err := h.feed.AnalyzeSentiment(c.Request.Context(), analyzeText)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.AnalyzeResponse{ID: newsID, Sentiment: score})
}

// GetPrice returns the latest price of a symbol
func (h *Handlers) GetPrice(c *gin.Context) {
	symbol := c.Param("symbol")

	price, err := h.feed.GetLatestPrice(c.Request.Context(), symbol)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.PriceResponse{Symbol: symbol, Price: price})
}

// GetHistory returns the price history of a symbol
func (h *Handlers) GetHistory(c *gin.Context) {
	days, ok := queryInt(c, "days", defaultHistoryDay)
	if !ok {
		return
	}

	history, err := h.feed.GetPriceHistory(c.Request.Context(), c.Param("symbol"), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// GetStats returns descriptive statistics over a symbol's history
func (h *Handlers) GetStats(c *gin.Context) {
	days, ok := queryInt(c, "days", defaultStatsDays)
	if !ok {
		return
	}

	stats, err := h.feed.PriceStats(c.Request.Context(), c.Param("symbol"), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Chat answers a user message
func (h *Handlers) Chat(c *gin.Context) {
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	reply, err := h.feed.SummarizeText(c.Request.Context(), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.ChatResponse{Response: reply})
}

// ListBreakers reports the state of every upstream breaker
func (h *Handlers) ListBreakers(c *gin.Context) {
	snapshots := make([]resilience.Snapshot, 0, len(h.breakers))
	for _, b := range h.breakers {
		snapshots = append(snapshots, b.Snapshot())
	}
	c.JSON(http.StatusOK, gin.H{"breakers": snapshots})
}

// queryInt reads an optional integer query parameter, writing a 400 on garbage
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		_ = c.Error(errBadQuery)
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be an integer"})
		return 0, false
	}
	return v, true
}

// respondError maps contract violations to 400 and everything else to 500
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	if types.IsContractViolation(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Internal Server Error",
		"path":  c.Request.URL.Path,
	})
}
