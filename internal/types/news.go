package types

import "time"

// SentimentLabel is the categorical projection of a sentiment score
type SentimentLabel string

const (
	Bearish SentimentLabel = "Bearish"
	Neutral SentimentLabel = "Neutral"
	Bullish SentimentLabel = "Bullish"
)

// Scores strictly beyond these thresholds leave the Neutral band.
const (
	BearishThreshold = -0.33
	BullishThreshold = 0.33
)

// LabelFor maps a score in [-1, 1] to its label
func LabelFor(score float64) SentimentLabel {
	switch {
	case score < BearishThreshold:
		return Bearish
	case score > BullishThreshold:
		return Bullish
	default:
		return Neutral
	}
}

// NewsItem is one article of a fetch batch. Items are built per fetch and
// not modified afterwards.
type NewsItem struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	URL            string         `json:"url"`
	Source         string         `json:"source"`
	PublishedAt    time.Time      `json:"published_at"`
	Summary        *string        `json:"summary,omitempty"`
	SentimentScore float64        `json:"sentiment_score"`
	SentimentLabel SentimentLabel `json:"sentiment_label"`
}

// WithSentiment returns a copy of the item scored and labeled
func (n NewsItem) WithSentiment(score float64) NewsItem {
	n.SentimentScore = score
	n.SentimentLabel = LabelFor(score)
	return n
}
