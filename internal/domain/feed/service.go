package feed

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/GriffinCanCode/AetherAlpha/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/types"
)

// enrichWorkers bounds concurrent sentiment calls per news batch
const enrichWorkers = 4

// Options configure the facade
type Options struct {
	EnrichSentiment bool
}

// Service is the single entry point the transport layer talks to. It
// delegates to the news, market and AI capabilities and never surfaces an
// upstream failure as an error.
type Service struct {
	news   types.NewsClient
	market types.MarketDataProvider
	ai     types.AIService
	opts   Options
	logger *logging.Logger
}

// NewService creates the facade
func NewService(news types.NewsClient, market types.MarketDataProvider, ai types.AIService, opts Options, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		news:   news,
		market: market,
		ai:     ai,
		opts:   opts,
		logger: logger.Named("feed"),
	}
}

// FetchLatestNews returns up to limit news items, scored when enrichment is on
func (s *Service) FetchLatestNews(ctx context.Context, limit int) ([]types.NewsItem, error) {
	items, err := s.news.FetchLatestNews(ctx, limit)
	if err != nil {
		return nil, err
	}
	if !s.opts.EnrichSentiment {
		return items, nil
	}
	return s.enrich(ctx, items), nil
}

// enrich scores unscored items. An item the AI cannot score keeps its
// neutral default.
func (s *Service) enrich(ctx context.Context, items []types.NewsItem) []types.NewsItem {
	out := make([]types.NewsItem, len(items))
	copy(out, items)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichWorkers)

	for i := range out {
		if out[i].SentimentScore != 0 {
			continue
		}
		g.Go(func() error {
			score, err := s.ai.AnalyzeSentiment(gctx, articleText(out[i]))
			if err != nil {
				s.logger.Debug("sentiment enrichment skipped", zap.String("id", out[i].ID), zap.Error(err))
				return nil
			}
			out[i] = out[i].WithSentiment(score)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func articleText(item types.NewsItem) string {
	if item.Summary == nil {
		return item.Title
	}
	return strings.TrimSpace(item.Title + ". " + *item.Summary)
}

// AnalyzeSentiment scores text
func (s *Service) AnalyzeSentiment(ctx context.Context, text string) (float64, error) {
	return s.ai.AnalyzeSentiment(ctx, text)
}

// SummarizeText summarizes text
func (s *Service) SummarizeText(ctx context.Context, text string) (string, error) {
	return s.ai.SummarizeText(ctx, text)
}

// GetLatestPrice returns the current price of symbol
func (s *Service) GetLatestPrice(ctx context.Context, symbol string) (float64, error) {
	return s.market.GetLatestPrice(ctx, symbol)
}

// GetPriceHistory returns the price history of symbol
func (s *Service) GetPriceHistory(ctx context.Context, symbol string, days int) ([]types.MarketTicker, error) {
	return s.market.GetPriceHistory(ctx, symbol, days)
}

// GenerateTicker returns one streaming tick for symbol
func (s *Service) GenerateTicker(ctx context.Context, symbol string) (types.MarketTicker, error) {
	return s.market.GenerateTicker(ctx, symbol)
}

// PriceStats summarizes the history window of symbol
func (s *Service) PriceStats(ctx context.Context, symbol string, days int) (types.PriceStats, error) {
	history, err := s.market.GetPriceHistory(ctx, symbol, days)
	if err != nil {
		return types.PriceStats{}, err
	}
	return Summarize(symbol, days, history), nil
}

// Summarize computes descriptive statistics over history prices
func Summarize(symbol string, days int, history []types.MarketTicker) types.PriceStats {
	out := types.PriceStats{Symbol: symbol, Days: days, Points: len(history)}
	if len(history) == 0 {
		return out
	}

	prices := make([]float64, len(history))
	for i, point := range history {
		prices[i] = point.Price
	}

	out.Mean, out.StdDev = stat.MeanStdDev(prices, nil)
	if math.IsNaN(out.StdDev) {
		out.StdDev = 0
	}
	out.Min = floats.Min(prices)
	out.Max = floats.Max(prices)

	if first := prices[0]; first != 0 {
		out.ChangePercent = (prices[len(prices)-1] - first) / first * 100
	}
	return out
}

var (
	_ types.NewsClient         = (*Service)(nil)
	_ types.AIService          = (*Service)(nil)
	_ types.MarketDataProvider = (*Service)(nil)
)
