/*
Package resilience provides the failure handling around upstream calls.

# Overview

A Breaker stops calling a dependency after repeated failures, a Retrier
absorbs transient single-call failures with exponential backoff, and a Guard
composes both so that one exhausted retry sequence counts as one breaker
failure.

# Usage

	breaker := resilience.New("news_api", resilience.Settings{
		FailMax:      3,
		ResetTimeout: 60 * time.Second,
		Exclude:      resilience.IsCanceled,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("breaker state change", zap.String("breaker", name))
		},
	})
	guard := resilience.NewGuard(breaker, resilience.NewRetrier(resilience.DefaultRetryConfig()))

	res := resilience.Do(ctx, guard, func(ctx context.Context) ([]byte, error) {
		return client.Get(ctx, "/v2/everything", query)
	})
	if !res.OK() {
		return fallback()
	}

# States

	Closed --[FailMax consecutive failures]-> Open --[ResetTimeout]-> Half-Open
	                                           ^                        |
	                                           +-------[failure]--------+
	Half-Open --[success]-> Closed

Half-open admits exactly one trial call; concurrent callers get
ErrTooManyRequests until the trial finishes.

# Backoff

The wait after attempt k is min(BaseDelay*2^(k-1), MaxDelay). No wait
follows the final attempt.

OnStateChange runs with the breaker lock held and must not call back into
the breaker.
*/
package resilience
