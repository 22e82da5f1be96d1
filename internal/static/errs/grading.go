package errs

import "errors"

var (
	ChallengeNotFound    = errors.New("challenge not found")
	EmptySourceCode      = errors.New("source code is empty")
	SourceCodeTooLarge   = errors.New("source code exceeds size limit")
	UnsupportedLanguage  = errors.New("unsupported language id")
	ExecutionUnavailable = errors.New("execution service unavailable")
	DuplicateAttempt     = errors.New("duplicate attempt number")
	ConflictExhausted    = errors.New("submission conflict retries exhausted")
)

// Backend-level conditions tracked by the circuit breaker
var (
	BackendUnavailable = errors.New("execution backend unavailable")
	BackendTimeout     = errors.New("execution backend timed out")
	CircuitOpen        = errors.New("circuit breaker is open")
)
