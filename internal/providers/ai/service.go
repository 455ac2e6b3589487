package ai

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AetherAlpha/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AetherAlpha/backend/internal/types"
)

// Dependency is the logging name of the AI integration
const Dependency = "ai"

const (
	MockSummary    = "This is an AI generated summary of the news article (Mock Mode)."
	PendingSummary = "Real summary pending implementation."
)

// Options configure the AI service
type Options struct {
	APIKey   string
	MockMode bool
}

// Service is the AI enrichment stub. Without a key, or in mock mode, it
// returns random sentiment and a canned summary.
type Service struct {
	opts   Options
	logger *logging.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewService creates an AI service. A nil src seeds from the clock.
func NewService(opts Options, src rand.Source, logger *logging.Logger) *Service {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		opts:   opts,
		logger: logger.Named("ai"),
		rnd:    rand.New(src),
	}
}

// Mocked reports whether the stub answers instead of a real model
func (s *Service) Mocked() bool {
	return s.opts.MockMode || s.opts.APIKey == ""
}

// AnalyzeSentiment scores text in [-1, 1]
func (s *Service) AnalyzeSentiment(ctx context.Context, text string) (float64, error) {
	if err := s.check(ctx, text); err != nil {
		return 0, err
	}
	if !s.Mocked() {
		return 0.0, nil
	}

	s.mu.Lock()
	score := math.Round((s.rnd.Float64()*2-1)*100) / 100
	s.mu.Unlock()

	s.logger.Debug("mock sentiment", zap.Float64("score", score), zap.Int("text_len", len(text)))
	return score, nil
}

// SummarizeText returns a summary of text
func (s *Service) SummarizeText(ctx context.Context, text string) (string, error) {
	if err := s.check(ctx, text); err != nil {
		return "", err
	}
	if s.Mocked() {
		return MockSummary, nil
	}
	return PendingSummary, nil
}

func (s *Service) check(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return types.ErrEmptyText
	}
	return ctx.Err()
}
