package resilience

import (
	"errors"
	"sync"
	"time"

	"gitlab.com/codequest-2025.net/internal/core/ports/primary"
	"gitlab.com/codequest-2025.net/internal/static/errs"
)

// State is the breaker's position in the Closed/Open/Half-Open cycle
type State string

const (
	StateClosed   State = "CLOSED"
	StateOpen     State = "OPEN"
	StateHalfOpen State = "HALF_OPEN"
)

// Clock abstracts time.Now so tests can drive cooldown transitions
type Clock func() time.Time

// Breaker guards one execution backend. Consecutive BackendUnavailable or
// BackendTimeout failures trip it open; after the cooldown a single probe is
// allowed through and its outcome decides whether the breaker closes again.
// Safe for concurrent use.
type Breaker struct {
	mu               sync.Mutex
	name             string
	failureThreshold int
	cooldown         time.Duration
	clock            Clock
	logger           primary.Logger

	state        State
	failureCount int
	lastFailure  time.Time
	openedAt     time.Time
	probing      bool
}

// NewBreaker creates a closed breaker for the named backend
func NewBreaker(name string, threshold int, cooldown time.Duration, logger primary.Logger) *Breaker {
	return &Breaker{
		name:             name,
		failureThreshold: threshold,
		cooldown:         cooldown,
		clock:            time.Now,
		logger:           logger,
		state:            StateClosed,
	}
}

// WithClock swaps the time source; tests use this to elapse the cooldown
func (b *Breaker) WithClock(clock Clock) *Breaker {
	b.clock = clock
	return b
}

// Name returns the guarded backend's name
func (b *Breaker) Name() string {
	return b.name
}

// State returns the breaker's current state, resolving an elapsed cooldown
// to HALF_OPEN.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && b.clock().Sub(b.openedAt) >= b.cooldown {
		return StateHalfOpen
	}
	return b.state
}

// Allow reports whether a call may proceed. While open within the cooldown it
// returns errs.CircuitOpen; once the cooldown has elapsed it admits exactly
// one probe call until that probe is resolved via OnSuccess/OnFailure.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil
	case StateHalfOpen:
		if b.probing {
			return errs.CircuitOpen
		}
		b.probing = true
		return nil
	case StateOpen:
		if b.clock().Sub(b.openedAt) < b.cooldown {
			return errs.CircuitOpen
		}
		b.state = StateHalfOpen
		b.probing = true
		b.logger.Info("Circuit breaker half-open", "backend", b.name)
		return nil
	}
	return nil
}

// OnSuccess records a successful call and closes the breaker
func (b *Breaker) OnSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateClosed {
		b.logger.Info("Circuit breaker closed", "backend", b.name)
	}
	b.state = StateClosed
	b.failureCount = 0
	b.probing = false
}

// OnFailure records the outcome of a call that returned err. Only
// BackendUnavailable and BackendTimeout count toward tripping; CircuitOpen
// and caller-side errors leave the counters untouched.
func (b *Breaker) OnFailure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !Tracked(err) {
		// Not a backend health signal; release any pending probe slot
		b.probing = false
		return
	}

	now := b.clock()
	b.lastFailure = now

	if b.state == StateHalfOpen {
		// Failed probe: reopen and restart the cooldown clock
		b.state = StateOpen
		b.openedAt = now
		b.probing = false
		b.logger.Warn("Circuit breaker reopened", "backend", b.name, "error", err)
		return
	}

	b.failureCount++
	if b.state == StateClosed && b.failureCount >= b.failureThreshold {
		b.state = StateOpen
		b.openedAt = now
		b.logger.Warn("Circuit breaker opened",
			"backend", b.name,
			"failures", b.failureCount,
			"error", err)
	}
}

// Tracked reports whether err is a failure condition the breaker counts
func Tracked(err error) bool {
	return errors.Is(err, errs.BackendUnavailable) || errors.Is(err, errs.BackendTimeout)
}
