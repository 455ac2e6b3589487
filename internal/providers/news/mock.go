package news

import (
	"time"

	"github.com/GriffinCanCode/AetherAlpha/backend/internal/types"
)

// fallbackItems returns the pre-authored news set served whenever live news
// is unavailable.
func fallbackItems(now time.Time) []types.NewsItem {
	oil := "Crude oil futures jumped 5%..."
	solar := "EU Commission approves €50B fund..."

	return []types.NewsItem{
		{
			ID:             "1",
			Title:          "Oil prices surge as geopolitical tensions rise in Eastern Europe",
			URL:            "https://example.com/news/1",
			Source:         "Bloomberg Energy",
			PublishedAt:    now,
			Summary:        &oil,
			SentimentScore: -0.8,
			SentimentLabel: types.Bearish,
		},
		{
			ID:             "2",
			Title:          "European Green Deal prompts massive investment in Solar",
			URL:            "https://example.com/news/2",
			Source:         "Reuters",
			PublishedAt:    now,
			Summary:        &solar,
			SentimentScore: 0.9,
			SentimentLabel: types.Bullish,
		},
	}
}
