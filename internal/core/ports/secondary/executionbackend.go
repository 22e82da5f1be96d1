package secondary

import (
	"context"

	"gitlab.com/codequest-2025.net/internal/domain"
)

// ExecutionBackend abstracts a remote service that compiles and runs
// arbitrary source code. Implementations must return exactly one outcome per
// request, in request order, regardless of how the backend schedules the runs.
type ExecutionBackend interface {
	// Name identifies the backend in logs and breaker state
	Name() string

	// Execute runs every request and returns the outcomes in request order.
	// Infrastructure failures are reported via errs.BackendUnavailable or
	// errs.BackendTimeout so the circuit breaker can track them.
	Execute(ctx context.Context, requests []domain.ExecutionRequest) ([]domain.ExecutionOutcome, error)
}
