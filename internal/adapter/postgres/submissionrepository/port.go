// package submissionrepository contains the PostgreSQL implementation of the
// submission store
package submissionrepository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"gitlab.com/codequest-2025.net/internal/core/ports/primary"
	"gitlab.com/codequest-2025.net/internal/core/ports/secondary"
	"gitlab.com/codequest-2025.net/internal/domain"
	"gitlab.com/codequest-2025.net/internal/static/errs"
)

const uniqueViolation = "23505"

// SubmissionRepository implements the SubmissionRepository port with
// PostgreSQL. The submissions table carries a uniqueness constraint on
// (user_id, challenge_id, attempt_number); a violated insert surfaces as
// errs.DuplicateAttempt so the grading service can recompute and retry.
type SubmissionRepository struct {
	db     *sqlx.DB
	logger primary.Logger
}

var _ secondary.SubmissionRepository = (*SubmissionRepository)(nil)

// NewSubmissionRepository creates a new PostgreSQL submission repository
func NewSubmissionRepository(db *sqlx.DB, logger primary.Logger) *SubmissionRepository {
	return &SubmissionRepository{
		db:     db,
		logger: logger,
	}
}

// CountForUserChallenge returns how many attempts the user has made on the challenge
func (r *SubmissionRepository) CountForUserChallenge(ctx context.Context, userID, challengeID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM submissions
		WHERE user_id = $1 AND challenge_id = $2
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID, challengeID).Scan(&count); err != nil {
		r.logger.Error("Failed to count submissions", "userId", userID, "challengeId", challengeID, "error", err)
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count, nil
}

// HasPassed reports whether any prior submission for the pair has status PASSED
func (r *SubmissionRepository) HasPassed(ctx context.Context, userID, challengeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM submissions
			WHERE user_id = $1 AND challenge_id = $2 AND status = $3
		)
	`

	var passed bool
	if err := r.db.QueryRowContext(ctx, query, userID, challengeID, domain.OverallPassed).Scan(&passed); err != nil {
		r.logger.Error("Failed to check prior passes", "userId", userID, "challengeId", challengeID, "error", err)
		return false, fmt.Errorf("failed to check prior passes: %w", err)
	}
	return passed, nil
}

// ListForUserChallenge returns prior submissions ordered by attempt number
func (r *SubmissionRepository) ListForUserChallenge(ctx context.Context, userID, challengeID string) ([]*domain.Submission, error) {
	query := `
		SELECT id, challenge_id, user_id, code, language_id, attempt_number,
			   status, passed_count, total_count, xp_awarded, time_spent_sec, created_at
		FROM submissions
		WHERE user_id = $1 AND challenge_id = $2
		ORDER BY attempt_number
	`

	rows, err := r.db.QueryContext(ctx, query, userID, challengeID)
	if err != nil {
		r.logger.Error("Failed to list submissions", "userId", userID, "challengeId", challengeID, "error", err)
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var subs []*domain.Submission
	for rows.Next() {
		var sub domain.Submission
		if err := rows.Scan(
			&sub.ID,
			&sub.ChallengeID,
			&sub.UserID,
			&sub.Code,
			&sub.LanguageID,
			&sub.AttemptNumber,
			&sub.Status,
			&sub.PassedCount,
			&sub.TotalCount,
			&sub.XPAwarded,
			&sub.TimeSpentSec,
			&sub.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, &sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read submissions: %w", err)
	}

	return subs, nil
}

// InTx runs the unit of work inside one database transaction
func (r *SubmissionRepository) InTx(ctx context.Context, fn secondary.SubmissionUnitOfWork) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&submissionTx{tx: tx, logger: r.logger}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.Error("Failed to rollback submission transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit submission: %w", err)
	}
	return nil
}

type submissionTx struct {
	tx     *sqlx.Tx
	logger primary.Logger
}

// CreateSubmission inserts the record inside the transaction
func (t *submissionTx) CreateSubmission(ctx context.Context, sub *domain.Submission) error {
	query := `
		INSERT INTO submissions (
			id, challenge_id, user_id, code, language_id, attempt_number,
			status, passed_count, total_count, xp_awarded, time_spent_sec, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := t.tx.ExecContext(
		ctx,
		query,
		sub.ID,
		sub.ChallengeID,
		sub.UserID,
		sub.Code,
		sub.LanguageID,
		sub.AttemptNumber,
		sub.Status,
		sub.PassedCount,
		sub.TotalCount,
		sub.XPAwarded,
		sub.TimeSpentSec,
		sub.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: attempt %d", errs.DuplicateAttempt, sub.AttemptNumber)
		}
		t.logger.Error("Failed to create submission", "submissionId", sub.ID, "error", err)
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}
