package resilience

import (
	"context"

	"gitlab.com/codequest-2025.net/internal/core/ports/secondary"
	"gitlab.com/codequest-2025.net/internal/domain"
)

// Guard wraps an execution backend with a circuit breaker. It satisfies the
// same port, so the orchestrator stays backend-agnostic; a new backend is a
// new adapter plus a Guard, not a new branch in the orchestrator.
type Guard struct {
	backend secondary.ExecutionBackend
	breaker *Breaker
}

var _ secondary.ExecutionBackend = (*Guard)(nil)

// NewGuard wraps backend behind breaker
func NewGuard(backend secondary.ExecutionBackend, breaker *Breaker) *Guard {
	return &Guard{
		backend: backend,
		breaker: breaker,
	}
}

// Name returns the wrapped backend's name
func (g *Guard) Name() string {
	return g.backend.Name()
}

// Breaker exposes the breaker for health inspection
func (g *Guard) Breaker() *Breaker {
	return g.breaker
}

// Execute passes the call through the breaker. When the breaker is open the
// backend is never contacted and errs.CircuitOpen is returned immediately.
func (g *Guard) Execute(ctx context.Context, requests []domain.ExecutionRequest) ([]domain.ExecutionOutcome, error) {
	if err := g.breaker.Allow(); err != nil {
		return nil, err
	}

	outcomes, err := g.backend.Execute(ctx, requests)
	if err != nil {
		g.breaker.OnFailure(err)
		return nil, err
	}

	g.breaker.OnSuccess()
	return outcomes, nil
}
