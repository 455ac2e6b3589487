package types

import "context"

// NewsClient fetches the latest financial news
type NewsClient interface {
	FetchLatestNews(ctx context.Context, limit int) ([]NewsItem, error)
}

// AIService scores and summarizes text
type AIService interface {
	AnalyzeSentiment(ctx context.Context, text string) (float64, error)
	SummarizeText(ctx context.Context, text string) (string, error)
}

// MarketDataProvider serves prices, histories and streaming ticks
type MarketDataProvider interface {
	GetLatestPrice(ctx context.Context, symbol string) (float64, error)
	GetPriceHistory(ctx context.Context, symbol string, days int) ([]MarketTicker, error)
	GenerateTicker(ctx context.Context, symbol string) (MarketTicker, error)
}
