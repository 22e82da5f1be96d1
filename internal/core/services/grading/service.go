package grading

import (
	"context"

	"gitlab.com/codequest-2025.net/internal/domain"
)

// IGradingService turns code submissions into persisted, XP-aware results
type IGradingService interface {
	// SubmitChallenge grades sourceCode against the challenge's test cases,
	// persists the attempt and hands XP to gamification on a first pass.
	SubmitChallenge(ctx context.Context, userID, challengeID, sourceCode string, languageID, timeSpentSec int) (*domain.SubmissionResult, error)

	// GetSubmissionHistory lists a user's prior attempts on a challenge
	GetSubmissionHistory(ctx context.Context, userID, challengeID string) ([]*domain.Submission, error)
}
