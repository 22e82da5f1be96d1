package secondary

import (
	"context"

	"gitlab.com/codequest-2025.net/internal/domain"
)

// ChallengeRepository reads challenge definitions and their hidden test cases
type ChallengeRepository interface {
	// GetChallenge retrieves a challenge by ID; returns errs.ChallengeNotFound if absent
	GetChallenge(ctx context.Context, challengeID string) (*domain.Challenge, error)

	// GetTestCases retrieves the test cases of a challenge ordered by position
	GetTestCases(ctx context.Context, challengeID string) ([]domain.TestCase, error)
}
