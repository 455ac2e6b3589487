package news

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AetherAlpha/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/providers/upstream"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/shared/id"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/types"
)

// Dependency is the breaker and metrics name of the news upstream
const Dependency = "news_api"

const (
	everythingPath   = "/v2/everything"
	removedTitle     = "[Removed]"
	noSummary        = "No summary available."
	unknownSource    = "Unknown"
	operationLatest  = "latest"
	reasonMockMode   = "mock_mode"
	reasonNoAPIKey   = "no_api_key"
	reasonMalformed  = "malformed_payload"
	reasonBreaker    = "breaker_open"
	reasonExhausted  = "retry_exhausted"
	defaultNewsQuery = "crypto"
)

var errMalformed = errors.New("news payload has no articles field")

// Getter performs one upstream GET
type Getter interface {
	Get(ctx context.Context, path string, query map[string]string) ([]byte, error)
}

// Options configure the news client
type Options struct {
	APIKey   string
	Query    string
	MockMode bool
}

// Client is the resilient news client: live NewsAPI results when possible,
// the fallback set otherwise.
type Client struct {
	http     Getter
	guard    *resilience.Guard
	opts     Options
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	sanitize *bluemonday.Policy
	now      func() time.Time
}

// NewClient creates a news client. http may be nil when the client can
// only ever serve fallback data.
func NewClient(http Getter, guard *resilience.Guard, opts Options, logger *logging.Logger) *Client {
	if opts.Query == "" {
		opts.Query = defaultNewsQuery
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		http:     http,
		guard:    guard,
		opts:     opts,
		logger:   logger.Named("news"),
		sanitize: bluemonday.StrictPolicy(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithMetrics attaches a metrics collector
func (c *Client) WithMetrics(m *monitoring.Metrics) *Client {
	c.metrics = m
	return c
}

// Breaker exposes the client's breaker for inspection
func (c *Client) Breaker() *resilience.Breaker {
	return c.guard.Breaker()
}

// FetchLatestNews returns up to limit articles. It only fails for an
// out-of-range limit; every upstream problem resolves to fallback news.
func (c *Client) FetchLatestNews(ctx context.Context, limit int) ([]types.NewsItem, error) {
	if err := types.ValidateLimit(limit); err != nil {
		return nil, err
	}

	switch {
	case c.opts.MockMode:
		return c.fallback(limit, reasonMockMode, nil), nil
	case c.opts.APIKey == "" || c.http == nil:
		return c.fallback(limit, reasonNoAPIKey, nil), nil
	}

	query := map[string]string{
		"q":        c.opts.Query,
		"sortBy":   "publishedAt",
		"language": "en",
		"pageSize": strconv.Itoa(limit),
	}

	timer := monitoring.NewTimer(c.metrics, Dependency, operationLatest)
	res := resilience.Do(ctx, c.guard, func(ctx context.Context) ([]byte, error) {
		return c.http.Get(ctx, everythingPath, query)
	})
	timer.Stop(res.Attempts)

	if !res.OK() {
		reason := reasonExhausted
		if resilience.IsRejected(res.Err) {
			reason = reasonBreaker
		}
		return c.fallback(limit, reason, res.Err, zap.Int("attempts", res.Attempts)), nil
	}

	items, err := c.parse(res.Value)
	if err != nil {
		return c.fallback(limit, reasonMalformed, err), nil
	}

	c.metrics.RecordUpstream(Dependency, operationLatest, monitoring.SourceLive, "")
	c.logger.Debug("fetched live news", zap.Int("count", len(items)), zap.Int("attempts", res.Attempts))
	return items, nil
}

type everythingResponse struct {
	Status   string     `json:"status"`
	Articles *[]article `json:"articles"`
}

type article struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

// parse turns a NewsAPI body into news items
func (c *Client) parse(body []byte) ([]types.NewsItem, error) {
	var resp everythingResponse
	if err := upstream.Decode(body, &resp); err != nil {
		return nil, err
	}
	if resp.Articles == nil {
		return nil, errMalformed
	}
	if resp.Status != "" && resp.Status != "ok" {
		return nil, fmt.Errorf("news status %q", resp.Status)
	}

	fetched := c.now()
	items := make([]types.NewsItem, 0, len(*resp.Articles))
	for _, a := range *resp.Articles {
		title := c.clean(a.Title)
		if title == "" || title == removedTitle || a.URL == "" {
			continue
		}

		summary := c.clean(a.Description)
		if summary == "" {
			summary = noSummary
		}

		source := c.clean(a.Source.Name)
		if source == "" {
			source = unknownSource
		}

		published := fetched
		if ts, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			published = ts.UTC()
		}

		items = append(items, types.NewsItem{
			ID:             id.NewNewsID().String(),
			Title:          title,
			URL:            a.URL,
			Source:         source,
			PublishedAt:    published,
			Summary:        &summary,
			SentimentScore: 0,
			SentimentLabel: types.Neutral,
		})
	}
	return items, nil
}

// clean strips markup and surrounding whitespace from upstream text
func (c *Client) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(c.sanitize.Sanitize(s)))
}

func (c *Client) fallback(limit int, reason string, err error, fields ...zap.Field) []types.NewsItem {
	if err == nil {
		c.logger.Mocked(Dependency, operationLatest, reason)
	} else {
		c.logger.Fallback(Dependency, operationLatest, reason, err, fields...)
	}
	c.metrics.RecordUpstream(Dependency, operationLatest, monitoring.SourceFallback, reason)

	items := fallbackItems(c.now())
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}
