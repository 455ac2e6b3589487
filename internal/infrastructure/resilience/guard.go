package resilience

import (
	"context"
	"errors"
)

// Guard gates a retry sequence behind a circuit breaker. The breaker sees
// one outcome per logical call, never one per attempt.
type Guard struct {
	breaker *Breaker
	retrier *Retrier
}

// NewGuard composes a breaker and a retrier
func NewGuard(breaker *Breaker, retrier *Retrier) *Guard {
	return &Guard{breaker: breaker, retrier: retrier}
}

// Breaker returns the guarded breaker
func (g *Guard) Breaker() *Breaker {
	return g.breaker
}

// Do runs op through the breaker and, if admitted, through the retrier.
// A rejected call yields Attempts == 0 and ErrCircuitOpen or ErrTooManyRequests.
func Do[T any](ctx context.Context, g *Guard, op func(ctx context.Context) (T, error)) Result[T] {
	var res Result[T]

	_, err := Call(g.breaker, func() (struct{}, error) {
		res = Retry(ctx, g.retrier, op)
		return struct{}{}, res.Err
	})
	if IsRejected(err) {
		res.Err = err
		res.Attempts = 0
	}
	return res
}

// IsRejected reports whether err came from the breaker refusing the call
func IsRejected(err error) bool {
	return errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrTooManyRequests)
}

// IsCanceled reports caller-side cancellation, which should not trip a breaker
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
