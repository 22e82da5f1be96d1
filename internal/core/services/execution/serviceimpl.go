package execution

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"gitlab.com/codequest-2025.net/internal/config"
	"gitlab.com/codequest-2025.net/internal/core/ports/primary"
	"gitlab.com/codequest-2025.net/internal/core/ports/secondary"
	"gitlab.com/codequest-2025.net/internal/domain"
	"gitlab.com/codequest-2025.net/internal/static/errs"
)

const infraErrorLabel = "Execution Service Error"

var _ IExecutionService = (*ExecutionService)(nil)

// ExecutionService implements the IExecutionService interface. Backends are
// tried in registration order; a backend whose breaker is open or that fails
// at the infrastructure level is skipped in favor of the next one. Retry
// policy beyond that lives in the breakers' half-open probes, not here.
type ExecutionService struct {
	backends []secondary.ExecutionBackend
	cfg      *config.GradingConfig
	logger   primary.Logger
}

// NewExecutionService creates an orchestrator over the given backends,
// ordered by preference.
func NewExecutionService(backends []secondary.ExecutionBackend, cfg *config.GradingConfig, logger primary.Logger) *ExecutionService {
	return &ExecutionService{
		backends: backends,
		cfg:      cfg,
		logger:   logger,
	}
}

// RunTests executes sourceCode against every test case
func (s *ExecutionService) RunTests(ctx context.Context, sourceCode string, languageID int, testCases []domain.TestCase) (*domain.ExecutionResult, error) {
	if err := s.validate(sourceCode, languageID); err != nil {
		return nil, err
	}

	requests := make([]domain.ExecutionRequest, len(testCases))
	for i, tc := range testCases {
		requests[i] = domain.ExecutionRequest{
			SourceCode:      sourceCode,
			LanguageID:      languageID,
			Stdin:           tc.Input,
			ExpectedOutput:  tc.ExpectedOutput,
			CPUTimeLimitSec: s.cfg.CPUTimeLimitSec,
			MemoryLimitKB:   s.cfg.MemoryLimitKB,
		}
	}

	outcomes, err := s.dispatch(ctx, requests)
	if err != nil {
		if isInfraError(err) {
			s.logger.Error("All execution backends unavailable", "error", err)
			res := domain.NewErrorResult(testCases, infraErrorLabel, "execution service unavailable")
			res.InfraFailure = true
			return res, nil
		}
		return nil, err
	}

	return s.classify(testCases, outcomes), nil
}

// RunAdhoc executes sourceCode once with the given stdin
func (s *ExecutionService) RunAdhoc(ctx context.Context, sourceCode string, languageID int, stdin string) (*domain.ExecutionOutcome, error) {
	if err := s.validate(sourceCode, languageID); err != nil {
		return nil, err
	}

	request := domain.ExecutionRequest{
		SourceCode:      sourceCode,
		LanguageID:      languageID,
		Stdin:           stdin,
		CPUTimeLimitSec: s.cfg.CPUTimeLimitSec,
		MemoryLimitKB:   s.cfg.MemoryLimitKB,
	}

	outcomes, err := s.dispatch(ctx, []domain.ExecutionRequest{request})
	if err != nil {
		if isInfraError(err) {
			return nil, fmt.Errorf("%w: %v", errs.ExecutionUnavailable, err)
		}
		return nil, err
	}
	return &outcomes[0], nil
}

func (s *ExecutionService) validate(sourceCode string, languageID int) error {
	if strings.TrimSpace(sourceCode) == "" {
		return errs.EmptySourceCode
	}
	if len(sourceCode) > s.cfg.MaxSourceBytes {
		return fmt.Errorf("%w: %d bytes", errs.SourceCodeTooLarge, len(sourceCode))
	}
	if languageID <= 0 {
		return fmt.Errorf("%w: %d", errs.UnsupportedLanguage, languageID)
	}
	return nil
}

// dispatch tries each backend in preference order. Infrastructure failures
// fall through to the next backend; anything else is surfaced immediately.
func (s *ExecutionService) dispatch(ctx context.Context, requests []domain.ExecutionRequest) ([]domain.ExecutionOutcome, error) {
	var lastErr error
	for _, backend := range s.backends {
		outcomes, err := backend.Execute(ctx, requests)
		if err == nil {
			return outcomes, nil
		}
		if !isInfraError(err) {
			return nil, err
		}
		s.logger.Warn("Execution backend failed, trying next",
			"backend", backend.Name(),
			"error", err)
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errs.BackendUnavailable
	}
	return nil, lastErr
}

// classify derives one TestCaseResult per outcome. The local trimmed-output
// comparison is the source of truth for passed; the backend status only
// supplies the label and error text.
func (s *ExecutionService) classify(testCases []domain.TestCase, outcomes []domain.ExecutionOutcome) *domain.ExecutionResult {
	// A compile failure is a single shared compile step: surface it once and
	// short-circuit every test case.
	for _, outcome := range outcomes {
		if outcome.StatusID == domain.StatusCompilationError {
			res := domain.NewErrorResult(testCases, outcome.StatusID.Label(), outcome.CompileOutput)
			res.CompileOutput = outcome.CompileOutput
			return res
		}
		if outcome.StatusID == domain.StatusInternalError || outcome.StatusID == domain.StatusExecFormatError {
			res := domain.NewErrorResult(testCases, outcome.StatusID.Label(), outcome.Stderr)
			return res
		}
	}

	results := make([]domain.TestCaseResult, len(outcomes))
	for i, outcome := range outcomes {
		tc := testCases[i]
		actual := strings.TrimSpace(outcome.Stdout)
		expected := strings.TrimSpace(tc.ExpectedOutput)
		passed := outcome.StatusID == domain.StatusAccepted && actual == expected

		tr := domain.TestCaseResult{
			Index:           i,
			Input:           tc.Input,
			ExpectedOutput:  tc.ExpectedOutput,
			ActualOutput:    outcome.Stdout,
			Passed:          passed,
			Hidden:          tc.IsHidden,
			Status:          outcome.StatusID.Label(),
			ErrorOutput:     outcome.Stderr,
			ExecutionTimeMs: int64(outcome.TimeSec * 1000),
			MemoryKB:        outcome.MemoryKB,
		}
		if !passed && outcome.StatusID == domain.StatusAccepted {
			// Backend accepted but output differs; relabel from our comparison
			tr.Status = domain.StatusWrongAnswer.Label()
		}
		if !passed {
			tr.OutputDiff = outputDiff(expected, actual)
		}
		results[i] = tr
	}

	res := domain.NewExecutionResult(results)
	res.Stdout = firstStdout(outcomes)
	res.Stderr = firstStderr(outcomes)
	return res
}

// outputDiff renders a unified diff of expected vs actual output for failing
// test cases, shown to the user alongside the verdict.
func outputDiff(expected, actual string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  2,
	})
	if err != nil {
		return ""
	}
	return diff
}

func firstStdout(outcomes []domain.ExecutionOutcome) string {
	for _, o := range outcomes {
		if o.Stdout != "" {
			return o.Stdout
		}
	}
	return ""
}

func firstStderr(outcomes []domain.ExecutionOutcome) string {
	for _, o := range outcomes {
		if o.Stderr != "" {
			return o.Stderr
		}
	}
	return ""
}

func isInfraError(err error) bool {
	return errors.Is(err, errs.BackendUnavailable) ||
		errors.Is(err, errs.BackendTimeout) ||
		errors.Is(err, errs.CircuitOpen)
}

// IsInfraError reports whether err is an infrastructure-level execution
// failure rather than a verdict on the user's code.
func IsInfraError(err error) bool {
	return isInfraError(err)
}
