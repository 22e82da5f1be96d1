// package challengerepository contains the PostgreSQL implementation of the
// challenge read port
package challengerepository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"gitlab.com/codequest-2025.net/internal/core/ports/primary"
	"gitlab.com/codequest-2025.net/internal/domain"
	"gitlab.com/codequest-2025.net/internal/static/errs"
)

// ChallengeRepository implements the ChallengeRepository port with PostgreSQL
type ChallengeRepository struct {
	db     *sqlx.DB
	logger primary.Logger
}

// NewChallengeRepository creates a new PostgreSQL challenge repository
func NewChallengeRepository(db *sqlx.DB, logger primary.Logger) *ChallengeRepository {
	return &ChallengeRepository{
		db:     db,
		logger: logger,
	}
}

// GetChallenge retrieves a challenge by ID
func (r *ChallengeRepository) GetChallenge(ctx context.Context, challengeID string) (*domain.Challenge, error) {
	query := `
		SELECT id, title, difficulty, xp_reward, created_at
		FROM challenges
		WHERE id = $1
	`

	var challenge domain.Challenge
	err := r.db.QueryRowContext(ctx, query, challengeID).Scan(
		&challenge.ID,
		&challenge.Title,
		&challenge.Difficulty,
		&challenge.XPReward,
		&challenge.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ChallengeNotFound
		}
		r.logger.Error("Failed to get challenge", "challengeId", challengeID, "error", err)
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	return &challenge, nil
}

// GetTestCases retrieves the test cases of a challenge ordered by position
func (r *ChallengeRepository) GetTestCases(ctx context.Context, challengeID string) ([]domain.TestCase, error) {
	query := `
		SELECT id, input, expected_output, is_hidden, position
		FROM challenge_test_cases
		WHERE challenge_id = $1
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, challengeID)
	if err != nil {
		r.logger.Error("Failed to get test cases", "challengeId", challengeID, "error", err)
		return nil, fmt.Errorf("failed to get test cases: %w", err)
	}
	defer rows.Close()

	var testCases []domain.TestCase
	for rows.Next() {
		var tc domain.TestCase
		if err := rows.Scan(&tc.ID, &tc.Input, &tc.ExpectedOutput, &tc.IsHidden, &tc.Position); err != nil {
			return nil, fmt.Errorf("failed to scan test case: %w", err)
		}
		testCases = append(testCases, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read test cases: %w", err)
	}

	return testCases, nil
}
