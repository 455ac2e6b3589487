package resilience

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("circuit breaker trial call in progress")
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures the circuit breaker behavior
type Settings struct {
	// FailMax is the number of consecutive failures that opens the breaker
	FailMax uint32
	// ResetTimeout is the period of the open state until a trial call is allowed
	ResetTimeout time.Duration
	// Exclude reports errors that should not count as a success or a failure
	Exclude func(err error) bool
	// OnStateChange is called whenever the state changes
	OnStateChange func(name string, from State, to State)
	// Now overrides the clock
	Now func() time.Time
}

// Counts holds the statistics for the circuit breaker
type Counts struct {
	Requests            uint32
	TotalSuccesses      uint32
	TotalFailures       uint32
	ConsecutiveFailures uint32
}

// Snapshot is a point-in-time view of a breaker
type Snapshot struct {
	Name     string    `json:"name"`
	State    string    `json:"state"`
	Failures uint32    `json:"consecutive_failures"`
	OpenedAt time.Time `json:"opened_at,omitempty"`
}

// Breaker implements the circuit breaker pattern with a single half-open trial
type Breaker struct {
	name     string
	settings Settings

	mu         sync.Mutex
	state      State
	generation uint64
	counts     Counts
	openedAt   time.Time
	trial      bool
}

// New creates a new circuit breaker with the given settings
func New(name string, settings Settings) *Breaker {
	if settings.FailMax == 0 {
		settings.FailMax = 3
	}
	if settings.ResetTimeout == 0 {
		settings.ResetTimeout = 60 * time.Second
	}
	if settings.Exclude == nil {
		settings.Exclude = func(error) bool { return false }
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}

	return &Breaker{
		name:     name,
		settings: settings,
		state:    StateClosed,
	}
}

// Name returns the name of the circuit breaker
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current circuit breaker state. An open breaker whose
// reset timeout has elapsed reports half-open.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.currentState(b.settings.Now())
}

// Counts returns a copy of the internal counts
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.counts
}

// Snapshot returns the breaker's name, state and failure counter
func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.currentState(b.settings.Now())
	return Snapshot{
		Name:     b.name,
		State:    state.String(),
		Failures: b.counts.ConsecutiveFailures,
		OpenedAt: b.openedAt,
	}
}

// Execute runs the given request if the circuit breaker accepts it
func (b *Breaker) Execute(req func() (interface{}, error)) (interface{}, error) {
	return Call(b, req)
}

// Call runs fn through the breaker and returns its typed result
func Call[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T

	generation, err := b.beforeRequest()
	if err != nil {
		return zero, err
	}

	defer func() {
		if e := recover(); e != nil {
			b.afterRequest(generation, errPanic)
			panic(e)
		}
	}()

	result, err := fn()
	b.afterRequest(generation, err)
	return result, err
}

var errPanic = errors.New("panic in protected call")

// beforeRequest is called before a request is executed. The returned
// generation identifies the state the request was admitted under.
func (b *Breaker) beforeRequest() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.currentState(b.settings.Now()) {
	case StateOpen:
		return b.generation, ErrCircuitOpen
	case StateHalfOpen:
		if b.trial {
			return b.generation, ErrTooManyRequests
		}
		b.trial = true
	}

	b.counts.Requests++
	return b.generation, nil
}

// afterRequest is called after a request is executed. Outcomes from an
// earlier generation are dropped.
func (b *Breaker) afterRequest(before uint64, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.settings.Now()
	state := b.currentState(now)
	if b.generation != before {
		return
	}

	if state == StateHalfOpen {
		b.trial = false
	}

	if err != nil && b.settings.Exclude(err) {
		return
	}

	if err == nil {
		b.onSuccess(state, now)
	} else {
		b.onFailure(state, now)
	}
}

// onSuccess handles successful requests
func (b *Breaker) onSuccess(state State, now time.Time) {
	b.counts.TotalSuccesses++
	b.counts.ConsecutiveFailures = 0
	if state == StateHalfOpen {
		b.setState(StateClosed, now)
	}
}

// onFailure handles failed requests
func (b *Breaker) onFailure(state State, now time.Time) {
	b.counts.TotalFailures++
	b.counts.ConsecutiveFailures++

	if state == StateHalfOpen || b.counts.ConsecutiveFailures >= b.settings.FailMax {
		b.setState(StateOpen, now)
	}
}

// currentState promotes an expired open breaker to half-open
func (b *Breaker) currentState(now time.Time) State {
	if b.state == StateOpen && !now.Before(b.openedAt.Add(b.settings.ResetTimeout)) {
		b.setState(StateHalfOpen, now)
	}
	return b.state
}

// setState changes the state of the circuit breaker
func (b *Breaker) setState(state State, now time.Time) {
	if b.state == state {
		return
	}

	prev := b.state
	b.state = state
	b.generation++
	b.trial = false

	switch state {
	case StateClosed:
		b.counts.ConsecutiveFailures = 0
		b.openedAt = time.Time{}
	case StateOpen:
		b.openedAt = now
	}

	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, prev, state)
	}
}
