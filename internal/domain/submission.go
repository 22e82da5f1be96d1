package domain

import (
	"time"

	"github.com/google/uuid"
)

// Submission represents one graded attempt of a challenge by a user
type Submission struct {
	ID            uuid.UUID
	ChallengeID   string
	UserID        string
	Code          string
	LanguageID    int
	AttemptNumber int
	Status        OverallStatus
	PassedCount   int
	TotalCount    int
	XPAwarded     int
	TimeSpentSec  int
	CreatedAt     time.Time
}

// NewSubmission creates a new submission record
func NewSubmission(userID, challengeID, code string, languageID, attemptNumber int) *Submission {
	return &Submission{
		ID:            uuid.New(),
		ChallengeID:   challengeID,
		UserID:        userID,
		Code:          code,
		LanguageID:    languageID,
		AttemptNumber: attemptNumber,
		CreatedAt:     time.Now(),
	}
}

// SubmissionResult is the full graded response returned to the caller:
// per-test verdicts plus the XP/level deltas reported by gamification.
type SubmissionResult struct {
	SubmissionID     uuid.UUID
	AttemptNumber    int
	Execution        *ExecutionResult
	XPAwarded        int
	PreviouslyPassed bool
	NewXPTotal       int
	LeveledUp        bool
	NewLevel         int
	RankTitle        string
}
