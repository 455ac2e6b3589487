package ai

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AetherAlpha/backend/internal/types"
)

func TestAnalyzeSentimentMocked(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "mock mode", opts: Options{APIKey: "sk-test", MockMode: true}},
		{name: "no key", opts: Options{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.opts, rand.NewSource(9), nil)
			require.True(t, svc.Mocked())

			for i := 0; i < 200; i++ {
				score, err := svc.AnalyzeSentiment(context.Background(), "Market is crashing due to unexpected inflation data.")
				require.NoError(t, err)
				assert.GreaterOrEqual(t, score, -1.0)
				assert.LessOrEqual(t, score, 1.0)
				assert.Equal(t, score, math.Round(score*100)/100, "score rounds to two decimals")
			}
		})
	}
}

func TestAnalyzeSentimentReal(t *testing.T) {
	svc := NewService(Options{APIKey: "sk-test"}, nil, nil)
	require.False(t, svc.Mocked())

	score, err := svc.AnalyzeSentiment(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestSummarizeText(t *testing.T) {
	mocked := NewService(Options{}, nil, nil)
	summary, err := mocked.SummarizeText(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, MockSummary, summary)

	live := NewService(Options{APIKey: "sk-test"}, nil, nil)
	summary, err = live.SummarizeText(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, PendingSummary, summary)
}

func TestEmptyText(t *testing.T) {
	svc := NewService(Options{}, nil, nil)

	_, err := svc.AnalyzeSentiment(context.Background(), "   ")
	assert.ErrorIs(t, err, types.ErrEmptyText)

	_, err = svc.SummarizeText(context.Background(), "")
	assert.ErrorIs(t, err, types.ErrEmptyText)
}

func TestCanceledContext(t *testing.T) {
	svc := NewService(Options{}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.SummarizeText(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
}
