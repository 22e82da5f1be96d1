package submissions

import (
	"github.com/google/uuid"

	"gitlab.com/codequest-2025.net/internal/domain"
)

// SubmitRequest represents a graded challenge submission
type SubmitRequest struct {
	SourceCode   string `json:"sourceCode"`
	LanguageID   int    `json:"languageId"`
	TimeSpentSec int    `json:"timeSpentSeconds"`
}

// TestCaseResultView is one test case verdict as shown to the user. Hidden
// test case inputs are blanked before rendering.
type TestCaseResultView struct {
	Index           int    `json:"index"`
	Input           string `json:"input,omitempty"`
	ExpectedOutput  string `json:"expectedOutput,omitempty"`
	ActualOutput    string `json:"actualOutput,omitempty"`
	Passed          bool   `json:"passed"`
	Status          string `json:"status"`
	ErrorOutput     string `json:"errorOutput,omitempty"`
	OutputDiff      string `json:"outputDiff,omitempty"`
	ExecutionTimeMs int64  `json:"executionTimeMs"`
	MemoryKB        int    `json:"memoryKb"`
}

// SubmitResponse is the graded result returned to the caller
type SubmitResponse struct {
	SubmissionID     uuid.UUID            `json:"submissionId"`
	AttemptNumber    int                  `json:"attemptNumber"`
	OverallStatus    domain.OverallStatus `json:"overallStatus"`
	PassedCount      int                  `json:"passedCount"`
	FailedCount      int                  `json:"failedCount"`
	Total            int                  `json:"total"`
	CompileOutput    string               `json:"compileOutput,omitempty"`
	TestResults      []TestCaseResultView `json:"testResults"`
	XPAwarded        int                  `json:"xpAwarded"`
	PreviouslyPassed bool                 `json:"previouslyPassed"`
	NewXPTotal       int                  `json:"newXpTotal,omitempty"`
	LeveledUp        bool                 `json:"leveledUp"`
	NewLevel         int                  `json:"newLevel,omitempty"`
	RankTitle        string               `json:"rankTitle,omitempty"`
}

// SubmissionView is one history entry
type SubmissionView struct {
	ID            uuid.UUID            `json:"id"`
	AttemptNumber int                  `json:"attemptNumber"`
	Status        domain.OverallStatus `json:"status"`
	PassedCount   int                  `json:"passedCount"`
	TotalCount    int                  `json:"totalCount"`
	XPAwarded     int                  `json:"xpAwarded"`
	LanguageID    int                  `json:"languageId"`
	CreatedAt     string               `json:"createdAt"`
}

func newSubmitResponse(result *domain.SubmissionResult) SubmitResponse {
	exec := result.Execution
	views := make([]TestCaseResultView, len(exec.TestResults))
	for i, tr := range exec.TestResults {
		view := TestCaseResultView{
			Index:           tr.Index,
			Input:           tr.Input,
			ExpectedOutput:  tr.ExpectedOutput,
			ActualOutput:    tr.ActualOutput,
			Passed:          tr.Passed,
			Status:          tr.Status,
			ErrorOutput:     tr.ErrorOutput,
			OutputDiff:      tr.OutputDiff,
			ExecutionTimeMs: tr.ExecutionTimeMs,
			MemoryKB:        tr.MemoryKB,
		}
		if tr.Hidden {
			view.Input = ""
			view.ExpectedOutput = ""
			view.ActualOutput = ""
			view.OutputDiff = ""
		}
		views[i] = view
	}

	return SubmitResponse{
		SubmissionID:     result.SubmissionID,
		AttemptNumber:    result.AttemptNumber,
		OverallStatus:    exec.OverallStatus,
		PassedCount:      exec.PassedCount,
		FailedCount:      exec.FailedCount,
		Total:            exec.Total,
		CompileOutput:    exec.CompileOutput,
		TestResults:      views,
		XPAwarded:        result.XPAwarded,
		PreviouslyPassed: result.PreviouslyPassed,
		NewXPTotal:       result.NewXPTotal,
		LeveledUp:        result.LeveledUp,
		NewLevel:         result.NewLevel,
		RankTitle:        result.RankTitle,
	}
}
