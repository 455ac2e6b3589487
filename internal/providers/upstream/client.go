package upstream

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/AetherAlpha/backend/internal/infrastructure/tracing"
)

// StatusError is returned for non-2xx upstream responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Body)
}

// Config describes one upstream API
type Config struct {
	Name      string
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 = unlimited
	Headers   map[string]string
}

// Client wraps resty with rate limiting. Retries are left to the caller's
// resilience policy, so resty's own retry loop stays disabled.
type Client struct {
	name    string
	resty   *resty.Client
	limiter *rate.Limiter
	tracer  *tracing.Tracer
}

// NewClient creates an upstream HTTP client
func NewClient(cfg Config) *Client {
	// Pooled transport from the retryable client; its retry loop is unused.
	pooled := retryablehttp.NewClient()

	restyClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "AetherAlpha-Gateway/1.0").
		SetTransport(pooled.HTTPClient.Transport)

	for k, v := range cfg.Headers {
		restyClient.SetHeader(k, v)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		name:    cfg.Name,
		resty:   restyClient,
		limiter: limiter,
	}
}

// WithTracer opens a span per request and forwards the trace headers
func (c *Client) WithTracer(t *tracing.Tracer) *Client {
	c.tracer = t
	return c
}

// Name returns the upstream name
func (c *Client) Name() string {
	return c.name
}

// Get performs one GET and returns the raw body of a 2xx response
func (c *Client) Get(ctx context.Context, path string, query map[string]string) (body []byte, err error) {
	span, ctx := c.tracer.StartSpan(ctx, "upstream "+c.name)
	span.SetTag("path", path)
	defer func() {
		span.SetError(err)
		c.tracer.Finish(span)
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	headers := map[string]string{}
	tracing.Inject(ctx, headers)

	resp, err := c.resty.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetHeaders(headers).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", c.name, err)
	}
	span.SetInt("status", resp.StatusCode())

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		text := resp.String()
		if len(text) > 256 {
			text = text[:256]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode(), Body: text}
	}

	return resp.Body(), nil
}

// Decode unmarshals an upstream JSON body
func Decode(body []byte, out interface{}) error {
	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode upstream payload: %w", err)
	}
	return nil
}
