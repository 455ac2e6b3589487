package market

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/GriffinCanCode/AetherAlpha/backend/internal/types"
)

// DefaultBaseline is the starting price of a symbol with no configured baseline
const DefaultBaseline = 1000.0

const (
	walkStep     = 0.005
	historySwing = 0.1
)

// DefaultBaselines returns the built-in starting prices
func DefaultBaselines() map[string]float64 {
	return map[string]float64{
		"BTC-USD": 45000.00,
		"ETH-USD": 2800.00,
		"NG=F":    2.50,
		"CL=F":    75.00,
	}
}

// Generator produces synthetic prices. Each Price call moves the symbol's
// baseline by at most half a percent and keeps the result, so successive
// mock prices form a random walk.
type Generator struct {
	mu        sync.Mutex
	baselines map[string]float64
	rnd       *rand.Rand
	now       func() time.Time
}

// NewGenerator creates a generator. overlay adds to or replaces the default
// baselines; a nil src seeds from the clock.
func NewGenerator(overlay map[string]float64, src rand.Source) *Generator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}

	baselines := DefaultBaselines()
	for symbol, price := range overlay {
		baselines[symbol] = price
	}

	return &Generator{
		baselines: baselines,
		rnd:       rand.New(src),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Baseline returns the current baseline without moving it
func (g *Generator) Baseline(symbol string) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.baselineLocked(symbol)
}

// Price advances the walk for symbol and returns the new price
func (g *Generator) Price(symbol string) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	current := g.baselineLocked(symbol)
	delta := g.uniformLocked(-walkStep, walkStep) * current

	scale := precision(current)
	next := roundTo(current+delta, scale)
	if math.Abs(next-current) > walkStep*current {
		// rounding overshot the step, truncate the move to whole units of resolution
		next = current + math.Trunc(delta*scale)/scale
	}
	if next <= 0 {
		next = current
	}

	g.baselines[symbol] = next
	return next
}

// History returns synthetic points oldest first: 24 hourly points for one
// day, one daily point per day otherwise. It does not move the baseline.
func (g *Generator) History(symbol string, days int) []types.MarketTicker {
	g.mu.Lock()
	defer g.mu.Unlock()

	base := g.baselineLocked(symbol)
	now := g.now()

	points, step := days, 24*time.Hour
	if days == 1 {
		points, step = 24, time.Hour
	}

	history := make([]types.MarketTicker, 0, points)
	for i := 0; i < points; i++ {
		history = append(history, types.MarketTicker{
			Symbol:    symbol,
			Price:     roundTo(base*(1+g.uniformLocked(-historySwing, historySwing)), precision(base)),
			Timestamp: now.Add(-time.Duration(points-i) * step),
		})
	}
	return history
}

// Uniform returns a value uniformly drawn from [lo, hi)
func (g *Generator) Uniform(lo, hi float64) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.uniformLocked(lo, hi)
}

func (g *Generator) baselineLocked(symbol string) float64 {
	if price, ok := g.baselines[symbol]; ok {
		return price
	}
	return DefaultBaseline
}

func (g *Generator) uniformLocked(lo, hi float64) float64 {
	return lo + g.rnd.Float64()*(hi-lo)
}

// precision is the number of price units per dollar for a baseline: cents,
// unless a full step is under one cent, where cent rounding would freeze the walk.
func precision(price float64) float64 {
	if walkStep*price >= 0.01 {
		return 100
	}
	return 1e6
}

func roundTo(v, scale float64) float64 {
	return math.Round(v*scale) / scale
}

func round2(v float64) float64 {
	return roundTo(v, 100)
}
