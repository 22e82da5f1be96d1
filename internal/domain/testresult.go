package domain

// OverallStatus is the aggregate verdict of one graded execution
type OverallStatus string

const (
	OverallPassed OverallStatus = "PASSED"
	OverallFailed OverallStatus = "FAILED"
	OverallError  OverallStatus = "ERROR"
)

// TestCaseResult represents the verdict of a single test case execution
type TestCaseResult struct {
	Index           int
	Input           string
	ExpectedOutput  string
	ActualOutput    string
	Passed          bool
	Hidden          bool
	Status          string
	ErrorOutput     string
	OutputDiff      string
	ExecutionTimeMs int64
	MemoryKB        int
}

// ExecutionResult represents the result of code execution against test cases
type ExecutionResult struct {
	Stdout        string
	Stderr        string
	TestResults   []TestCaseResult
	PassedCount   int
	FailedCount   int
	Total         int
	OverallStatus OverallStatus
	CompileOutput string

	// InfraFailure marks an ERROR caused by the execution service itself
	// rather than by the submitted code. Such results must not consume an
	// attempt or produce a submission record.
	InfraFailure bool
}

// NewExecutionResult aggregates per-test verdicts into an ExecutionResult,
// keeping the counting invariants in one place.
func NewExecutionResult(results []TestCaseResult) *ExecutionResult {
	res := &ExecutionResult{
		TestResults: results,
		Total:       len(results),
	}
	for _, tr := range results {
		if tr.Passed {
			res.PassedCount++
		} else {
			res.FailedCount++
		}
	}
	if res.Total > 0 && res.PassedCount == res.Total {
		res.OverallStatus = OverallPassed
	} else {
		res.OverallStatus = OverallFailed
	}
	return res
}

// NewErrorResult builds an ExecutionResult for an infrastructure-level
// failure: every test case is marked failed with the given status label and
// the aggregate verdict is ERROR.
func NewErrorResult(testCases []TestCase, statusLabel, detail string) *ExecutionResult {
	results := make([]TestCaseResult, len(testCases))
	for i, tc := range testCases {
		results[i] = TestCaseResult{
			Index:          i,
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			Passed:         false,
			Hidden:         tc.IsHidden,
			Status:         statusLabel,
			ErrorOutput:    detail,
		}
	}
	res := NewExecutionResult(results)
	res.OverallStatus = OverallError
	return res
}
