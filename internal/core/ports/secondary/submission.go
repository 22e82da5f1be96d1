package secondary

import (
	"context"

	"gitlab.com/codequest-2025.net/internal/domain"
)

// SubmissionUnitOfWork runs repository writes and the XP hand-off as one
// atomic unit: if fn returns an error the submission insert is rolled back.
type SubmissionUnitOfWork func(tx SubmissionTx) error

// SubmissionTx is the transactional view handed to a unit of work
type SubmissionTx interface {
	// CreateSubmission inserts the record; returns errs.DuplicateAttempt when
	// the (user, challenge, attempt) uniqueness constraint is violated.
	CreateSubmission(ctx context.Context, sub *domain.Submission) error
}

// SubmissionRepository stores graded attempts
type SubmissionRepository interface {
	// CountForUserChallenge returns how many attempts the user has made on the challenge
	CountForUserChallenge(ctx context.Context, userID, challengeID string) (int, error)

	// HasPassed reports whether any prior submission for the pair has status PASSED
	HasPassed(ctx context.Context, userID, challengeID string) (bool, error)

	// ListForUserChallenge returns prior submissions ordered by attempt number
	ListForUserChallenge(ctx context.Context, userID, challengeID string) ([]*domain.Submission, error)

	// InTx runs the unit of work inside one database transaction
	InTx(ctx context.Context, fn SubmissionUnitOfWork) error
}
