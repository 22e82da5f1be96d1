package domain

// StatusID is the normalized per-run status shared by both execution backends.
// The numeric values follow the queue-poll backend's status table; the
// instant-run adapter maps its responses onto the same scale.
type StatusID int

const (
	StatusInQueue          StatusID = 1
	StatusProcessing       StatusID = 2
	StatusAccepted         StatusID = 3
	StatusWrongAnswer      StatusID = 4
	StatusTimeLimitExceed  StatusID = 5
	StatusCompilationError StatusID = 6
	StatusRuntimeSIGSEGV   StatusID = 7
	StatusRuntimeSIGXFSZ   StatusID = 8
	StatusRuntimeSIGFPE    StatusID = 9
	StatusRuntimeSIGABRT   StatusID = 10
	StatusRuntimeNZEC      StatusID = 11
	StatusRuntimeOther     StatusID = 12
	StatusInternalError    StatusID = 13
	StatusExecFormatError  StatusID = 14
)

// Terminal reports whether a status will never change with further polling.
func (s StatusID) Terminal() bool {
	return s >= StatusAccepted
}

// IsRuntimeError reports whether the status is one of the runtime error variants.
func (s StatusID) IsRuntimeError() bool {
	return s >= StatusRuntimeSIGSEGV && s <= StatusRuntimeOther
}

// Label returns the human-readable status label surfaced on test case results.
func (s StatusID) Label() string {
	switch s {
	case StatusInQueue:
		return "In Queue"
	case StatusProcessing:
		return "Processing"
	case StatusAccepted:
		return "Accepted"
	case StatusWrongAnswer:
		return "Wrong Answer"
	case StatusTimeLimitExceed:
		return "Time Limit Exceeded"
	case StatusCompilationError:
		return "Compilation Error"
	case StatusRuntimeSIGSEGV:
		return "Runtime Error (SIGSEGV)"
	case StatusRuntimeSIGXFSZ:
		return "Runtime Error (SIGXFSZ)"
	case StatusRuntimeSIGFPE:
		return "Runtime Error (SIGFPE)"
	case StatusRuntimeSIGABRT:
		return "Runtime Error (SIGABRT)"
	case StatusRuntimeNZEC:
		return "Runtime Error (NZEC)"
	case StatusRuntimeOther:
		return "Runtime Error"
	case StatusInternalError:
		return "Internal Error"
	case StatusExecFormatError:
		return "Exec Format Error"
	default:
		return "Unknown"
	}
}

// ExecutionRequest is one unit of work for an execution backend. Immutable
// once built; the orchestrator constructs one per test case.
type ExecutionRequest struct {
	SourceCode      string
	LanguageID      int
	Stdin           string
	ExpectedOutput  string
	CPUTimeLimitSec float64
	MemoryLimitKB   int
}

// ExecutionOutcome is the raw result of a single run as reported by a backend.
type ExecutionOutcome struct {
	Stdout        string
	Stderr        string
	CompileOutput string
	StatusID      StatusID
	TimeSec       float64
	MemoryKB      int
}
