package grading

import (
	"context"
	"errors"
	"fmt"

	"gitlab.com/codequest-2025.net/internal/config"
	"gitlab.com/codequest-2025.net/internal/core/ports/primary"
	"gitlab.com/codequest-2025.net/internal/core/ports/secondary"
	"gitlab.com/codequest-2025.net/internal/core/services/execution"
	"gitlab.com/codequest-2025.net/internal/domain"
	"gitlab.com/codequest-2025.net/internal/static/errs"
	"gitlab.com/codequest-2025.net/internal/utils"
)

const xpSource = "challenge_completion"

// attemptRetries bounds recomputation when the uniqueness constraint on
// (user, challenge, attempt) rejects a racing writer.
const attemptRetries = 2

var _ IGradingService = (*GradingService)(nil)

// GradingService implements the IGradingService interface. Attempt numbering
// is serialized per (user, challenge) with an in-process keyed mutex; the
// database uniqueness constraint backstops multi-instance deployments via a
// recompute-and-retry on conflict.
type GradingService struct {
	challengeRepo  secondary.ChallengeRepository
	submissionRepo secondary.SubmissionRepository
	gamification   secondary.GamificationPort
	executionSvc   execution.IExecutionService
	cfg            *config.GradingConfig
	locks          *utils.KeyMutex
	logger         primary.Logger
}

// NewGradingService creates a new grading service
func NewGradingService(
	challengeRepo secondary.ChallengeRepository,
	submissionRepo secondary.SubmissionRepository,
	gamification secondary.GamificationPort,
	executionSvc execution.IExecutionService,
	cfg *config.GradingConfig,
	logger primary.Logger,
) *GradingService {
	return &GradingService{
		challengeRepo:  challengeRepo,
		submissionRepo: submissionRepo,
		gamification:   gamification,
		executionSvc:   executionSvc,
		cfg:            cfg,
		locks:          utils.NewKeyMutex(),
		logger:         logger,
	}
}

// SubmitChallenge grades one attempt end to end
func (s *GradingService) SubmitChallenge(ctx context.Context, userID, challengeID, sourceCode string, languageID, timeSpentSec int) (*domain.SubmissionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.OverallDeadline)
	defer cancel()

	challenge, err := s.challengeRepo.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	testCases, err := s.challengeRepo.GetTestCases(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load test cases: %w", err)
	}

	lockKey := userID + ":" + challengeID
	s.locks.Lock(lockKey)
	defer s.locks.Unlock(lockKey)

	execResult, err := s.executionSvc.RunTests(ctx, sourceCode, languageID, testCases)
	if err != nil {
		return nil, err
	}

	// An execution-service failure is not a verdict on the user's code: no
	// record, no attempt number consumed.
	if execResult.InfraFailure {
		return nil, fmt.Errorf("%w: all backends failed", errs.ExecutionUnavailable)
	}

	for attempt := 0; ; attempt++ {
		result, err := s.persist(ctx, userID, challenge, sourceCode, languageID, timeSpentSec, execResult)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, errs.DuplicateAttempt) {
			return nil, err
		}
		if attempt == attemptRetries {
			s.logger.Error("Attempt number conflict retries exhausted",
				"userId", userID,
				"challengeId", challengeID)
			return nil, errs.ConflictExhausted
		}
		s.logger.Warn("Attempt number conflict, recomputing",
			"userId", userID,
			"challengeId", challengeID)
	}
}

// persist computes the attempt number, writes the record and awards XP as one
// atomic unit. An award failure rolls the insert back; a commit failure after
// the award triggers a compensating deduction.
func (s *GradingService) persist(ctx context.Context, userID string, challenge *domain.Challenge, sourceCode string, languageID, timeSpentSec int, execResult *domain.ExecutionResult) (*domain.SubmissionResult, error) {
	priorCount, err := s.submissionRepo.CountForUserChallenge(ctx, userID, challenge.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count prior submissions: %w", err)
	}

	sub := domain.NewSubmission(userID, challenge.ID, sourceCode, languageID, priorCount+1)
	sub.Status = execResult.OverallStatus
	sub.PassedCount = execResult.PassedCount
	sub.TotalCount = execResult.Total
	sub.TimeSpentSec = timeSpentSec

	result := &domain.SubmissionResult{
		SubmissionID:  sub.ID,
		AttemptNumber: sub.AttemptNumber,
		Execution:     execResult,
	}

	firstPass := false
	if execResult.OverallStatus == domain.OverallPassed {
		passedBefore, err := s.submissionRepo.HasPassed(ctx, userID, challenge.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check prior passes: %w", err)
		}
		result.PreviouslyPassed = passedBefore
		firstPass = !passedBefore
		if firstPass {
			sub.XPAwarded = challenge.XPReward
		}
	}

	var award *domain.XPAward
	err = s.submissionRepo.InTx(ctx, func(tx secondary.SubmissionTx) error {
		if err := tx.CreateSubmission(ctx, sub); err != nil {
			return err
		}
		if firstPass {
			granted, awardErr := s.gamification.AwardXP(ctx, userID, challenge.XPReward, xpSource)
			if awardErr != nil {
				return fmt.Errorf("failed to award xp: %w", awardErr)
			}
			award = granted
		}
		return nil
	})
	if err != nil {
		if award != nil {
			// Record insert committed XP but the transaction did not land;
			// reverse the grant so the two stay consistent.
			if derr := s.gamification.DeductXP(context.Background(), userID, challenge.XPReward, xpSource); derr != nil {
				s.logger.Error("Failed to compensate XP award",
					"userId", userID,
					"challengeId", challenge.ID,
					"error", derr)
			}
		}
		return nil, err
	}

	if award != nil {
		result.XPAwarded = challenge.XPReward
		result.NewXPTotal = award.NewTotal
		result.LeveledUp = award.LeveledUp
		result.NewLevel = award.NewLevel
		result.RankTitle = award.RankTitle
	}

	s.logger.Info("Submission graded",
		"userId", userID,
		"challengeId", challenge.ID,
		"attempt", sub.AttemptNumber,
		"status", sub.Status,
		"xpAwarded", result.XPAwarded)

	return result, nil
}

// GetSubmissionHistory lists a user's prior attempts on a challenge
func (s *GradingService) GetSubmissionHistory(ctx context.Context, userID, challengeID string) ([]*domain.Submission, error) {
	return s.submissionRepo.ListForUserChallenge(ctx, userID, challengeID)
}
