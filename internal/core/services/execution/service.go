package execution

import (
	"context"

	"gitlab.com/codequest-2025.net/internal/domain"
)

// IExecutionService runs user code against test cases through the available
// execution backends and classifies the outcomes.
type IExecutionService interface {
	// RunTests executes sourceCode against every test case and returns the
	// aggregated, order-preserving result.
	RunTests(ctx context.Context, sourceCode string, languageID int, testCases []domain.TestCase) (*domain.ExecutionResult, error)

	// RunAdhoc executes sourceCode once with the given stdin, no grading
	RunAdhoc(ctx context.Context, sourceCode string, languageID int, stdin string) (*domain.ExecutionOutcome, error)
}
