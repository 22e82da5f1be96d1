package grading

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/codequest-2025.net/internal/adapter/logging"
	"gitlab.com/codequest-2025.net/internal/config"
	"gitlab.com/codequest-2025.net/internal/core/ports/secondary"
	"gitlab.com/codequest-2025.net/internal/domain"
	"gitlab.com/codequest-2025.net/internal/static/errs"
)

// ---- in-memory fakes ----

type memChallengeRepo struct {
	challenges map[string]*domain.Challenge
	testCases  map[string][]domain.TestCase
}

func (m *memChallengeRepo) GetChallenge(ctx context.Context, challengeID string) (*domain.Challenge, error) {
	ch, ok := m.challenges[challengeID]
	if !ok {
		return nil, errs.ChallengeNotFound
	}
	return ch, nil
}

func (m *memChallengeRepo) GetTestCases(ctx context.Context, challengeID string) ([]domain.TestCase, error) {
	return m.testCases[challengeID], nil
}

type memSubmissionRepo struct {
	mu   sync.Mutex
	subs []*domain.Submission

	failCreates int // first N creates fail with DuplicateAttempt
	commitErr   error
}

func (m *memSubmissionRepo) CountForUserChallenge(ctx context.Context, userID, challengeID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, s := range m.subs {
		if s.UserID == userID && s.ChallengeID == challengeID {
			count++
		}
	}
	return count, nil
}

func (m *memSubmissionRepo) HasPassed(ctx context.Context, userID, challengeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.UserID == userID && s.ChallengeID == challengeID && s.Status == domain.OverallPassed {
			return true, nil
		}
	}
	return false, nil
}

func (m *memSubmissionRepo) ListForUserChallenge(ctx context.Context, userID, challengeID string) ([]*domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Submission
	for _, s := range m.subs {
		if s.UserID == userID && s.ChallengeID == challengeID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttemptNumber < out[j].AttemptNumber })
	return out, nil
}

func (m *memSubmissionRepo) InTx(ctx context.Context, fn secondary.SubmissionUnitOfWork) error {
	tx := &memTx{repo: m}
	if err := fn(tx); err != nil {
		return err
	}
	if m.commitErr != nil {
		err := m.commitErr
		m.commitErr = nil
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, tx.pending...)
	return nil
}

type memTx struct {
	repo    *memSubmissionRepo
	pending []*domain.Submission
}

func (t *memTx) CreateSubmission(ctx context.Context, sub *domain.Submission) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	if t.repo.failCreates > 0 {
		t.repo.failCreates--
		return fmt.Errorf("%w: attempt %d", errs.DuplicateAttempt, sub.AttemptNumber)
	}
	for _, s := range t.repo.subs {
		if s.UserID == sub.UserID && s.ChallengeID == sub.ChallengeID && s.AttemptNumber == sub.AttemptNumber {
			return fmt.Errorf("%w: attempt %d", errs.DuplicateAttempt, sub.AttemptNumber)
		}
	}
	copied := *sub
	t.pending = append(t.pending, &copied)
	return nil
}

type memGamification struct {
	mu       sync.Mutex
	awards   int
	deducts  int
	total    int
	awardErr error
}

func (g *memGamification) AwardXP(ctx context.Context, userID string, amount int, source string) (*domain.XPAward, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.awardErr != nil {
		return nil, g.awardErr
	}
	g.awards++
	g.total += amount
	return &domain.XPAward{NewTotal: g.total, LeveledUp: true, NewLevel: 2, RankTitle: "Apprentice"}, nil
}

func (g *memGamification) DeductXP(ctx context.Context, userID string, amount int, source string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deducts++
	g.total -= amount
	return nil
}

type stubExecution struct {
	result *domain.ExecutionResult
	err    error
}

func (s *stubExecution) RunTests(ctx context.Context, sourceCode string, languageID int, testCases []domain.TestCase) (*domain.ExecutionResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubExecution) RunAdhoc(ctx context.Context, sourceCode string, languageID int, stdin string) (*domain.ExecutionOutcome, error) {
	return &domain.ExecutionOutcome{StatusID: domain.StatusAccepted}, nil
}

// ---- fixtures ----

func passedResult() *domain.ExecutionResult {
	return domain.NewExecutionResult([]domain.TestCaseResult{
		{Index: 0, Passed: true, Status: "Accepted"},
	})
}

func failedResult() *domain.ExecutionResult {
	return domain.NewExecutionResult([]domain.TestCaseResult{
		{Index: 0, Passed: false, Status: "Wrong Answer"},
	})
}

func infraResult() *domain.ExecutionResult {
	res := domain.NewErrorResult([]domain.TestCase{{Input: "2 3", ExpectedOutput: "5"}}, "Execution Service Error", "execution service unavailable")
	res.InfraFailure = true
	return res
}

func newTestService(exec *stubExecution, subs *memSubmissionRepo, gam *memGamification) *GradingService {
	challengeRepo := &memChallengeRepo{
		challenges: map[string]*domain.Challenge{
			"two-sum": {ID: "two-sum", Title: "Two Sum", Difficulty: domain.DifficultyEasy, XPReward: 50, CreatedAt: time.Now()},
		},
		testCases: map[string][]domain.TestCase{
			"two-sum": {{Input: "2 3", ExpectedOutput: "5"}},
		},
	}
	cfg := &config.GradingConfig{
		MaxSourceBytes:  64 * 1024,
		OverallDeadline: 10 * time.Second,
		CPUTimeLimitSec: 2,
		MemoryLimitKB:   128 * 1024,
	}
	return NewGradingService(challengeRepo, subs, gam, exec, cfg, logging.NewNopLogger())
}

// ---- tests ----

func TestSubmitChallengeFirstPassAwardsXP(t *testing.T) {
	subs := &memSubmissionRepo{}
	gam := &memGamification{}
	svc := newTestService(&stubExecution{result: passedResult()}, subs, gam)

	res, err := svc.SubmitChallenge(context.Background(), "user-1", "two-sum", "code", 71, 120)
	require.NoError(t, err)

	assert.Equal(t, 1, res.AttemptNumber)
	assert.Equal(t, 50, res.XPAwarded)
	assert.False(t, res.PreviouslyPassed)
	assert.Equal(t, 50, res.NewXPTotal)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, "Apprentice", res.RankTitle)
	assert.Equal(t, 1, gam.awards)
	require.Len(t, subs.subs, 1)
	assert.Equal(t, 50, subs.subs[0].XPAwarded)
	assert.Equal(t, domain.OverallPassed, subs.subs[0].Status)
}

func TestSubmitChallengeSecondPassIsIdempotent(t *testing.T) {
	subs := &memSubmissionRepo{}
	gam := &memGamification{}
	svc := newTestService(&stubExecution{result: passedResult()}, subs, gam)

	_, err := svc.SubmitChallenge(context.Background(), "user-1", "two-sum", "code", 71, 0)
	require.NoError(t, err)

	res, err := svc.SubmitChallenge(context.Background(), "user-1", "two-sum", "code", 71, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, res.AttemptNumber)
	assert.Equal(t, 0, res.XPAwarded)
	assert.True(t, res.PreviouslyPassed)
	assert.Equal(t, 1, gam.awards)
}

func TestSubmitChallengeFailedAttemptRecordedWithoutXP(t *testing.T) {
	subs := &memSubmissionRepo{}
	gam := &memGamification{}
	svc := newTestService(&stubExecution{result: failedResult()}, subs, gam)

	res, err := svc.SubmitChallenge(context.Background(), "user-1", "two-sum", "code", 71, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, res.AttemptNumber)
	assert.Equal(t, 0, res.XPAwarded)
	assert.Equal(t, 0, gam.awards)
	require.Len(t, subs.subs, 1)
	assert.Equal(t, domain.OverallFailed, subs.subs[0].Status)
}

func TestSubmitChallengeAttemptNumbersAreSequential(t *testing.T) {
	subs := &memSubmissionRepo{}
	svc := newTestService(&stubExecution{result: failedResult()}, subs, &memGamification{})

	for i := 1; i <= 5; i++ {
		res, err := svc.SubmitChallenge(context.Background(), "user-1", "two-sum", "code", 71, 0)
		require.NoError(t, err)
		assert.Equal(t, i, res.AttemptNumber)
	}
}

func TestSubmitChallengeConcurrentAttemptsArePermutation(t *testing.T) {
	subs := &memSubmissionRepo{}
	gam := &memGamification{}
	svc := newTestService(&stubExecution{result: passedResult()}, subs, gam)

	const n = 10
	var wg sync.WaitGroup
	attempts := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.SubmitChallenge(context.Background(), "user-1", "two-sum", "code", 71, 0)
			if assert.NoError(t, err) {
				attempts <- res.AttemptNumber
			}
		}()
	}
	wg.Wait()
	close(attempts)

	var got []int
	for a := range attempts {
		got = append(got, a)
	}
	sort.Ints(got)
	want := make([]int, n)
	for i := range want {
		want[i] = i + 1
	}
	assert.Equal(t, want, got)

	// Only one of the racing passes may award XP
	assert.Equal(t, 1, gam.awards)
}

func TestSubmitChallengeInfraErrorConsumesNoAttempt(t *testing.T) {
	subs := &memSubmissionRepo{}
	gam := &memGamification{}
	svc := newTestService(&stubExecution{result: infraResult()}, subs, gam)

	_, err := svc.SubmitChallenge(context.Background(), "user-1", "two-sum", "code", 71, 0)
	require.ErrorIs(t, err, errs.ExecutionUnavailable)

	assert.Empty(t, subs.subs)
	assert.Equal(t, 0, gam.awards)

	// The next submission still gets attempt number 1
	svc2 := newTestService(&stubExecution{result: failedResult()}, subs, gam)
	res, err := svc2.SubmitChallenge(context.Background(), "user-1", "two-sum", "code", 71, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.AttemptNumber)
}

func TestSubmitChallengeUnknownChallenge(t *testing.T) {
	svc := newTestService(&stubExecution{result: passedResult()}, &memSubmissionRepo{}, &memGamification{})

	_, err := svc.SubmitChallenge(context.Background(), "user-1", "missing", "code", 71, 0)
	assert.ErrorIs(t, err, errs.ChallengeNotFound)
}

func TestSubmitChallengeRetriesOnDuplicateAttempt(t *testing.T) {
	subs := &memSubmissionRepo{failCreates: 1}
	svc := newTestService(&stubExecution{result: failedResult()}, subs, &memGamification{})

	res, err := svc.SubmitChallenge(context.Background(), "user-1", "two-sum", "code", 71, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.AttemptNumber)
	require.Len(t, subs.subs, 1)
}

func TestSubmitChallengeConflictRetriesExhausted(t *testing.T) {
	subs := &memSubmissionRepo{failCreates: 10}
	svc := newTestService(&stubExecution{result: failedResult()}, subs, &memGamification{})

	_, err := svc.SubmitChallenge(context.Background(), "user-1", "two-sum", "code", 71, 0)
	assert.ErrorIs(t, err, errs.ConflictExhausted)
}

func TestSubmitChallengeAwardFailureRollsBackRecord(t *testing.T) {
	subs := &memSubmissionRepo{}
	gam := &memGamification{awardErr: fmt.Errorf("gamification down")}
	svc := newTestService(&stubExecution{result: passedResult()}, subs, gam)

	_, err := svc.SubmitChallenge(context.Background(), "user-1", "two-sum", "code", 71, 0)
	require.Error(t, err)

	// Neither the record nor the XP landed
	assert.Empty(t, subs.subs)
	assert.Equal(t, 0, gam.awards)
}

func TestSubmitChallengeCommitFailureCompensatesXP(t *testing.T) {
	subs := &memSubmissionRepo{commitErr: fmt.Errorf("connection reset")}
	gam := &memGamification{}
	svc := newTestService(&stubExecution{result: passedResult()}, subs, gam)

	_, err := svc.SubmitChallenge(context.Background(), "user-1", "two-sum", "code", 71, 0)
	require.Error(t, err)

	assert.Empty(t, subs.subs)
	assert.Equal(t, 1, gam.deducts)
	assert.Equal(t, 0, gam.total)
}

func TestGetSubmissionHistory(t *testing.T) {
	subs := &memSubmissionRepo{}
	svc := newTestService(&stubExecution{result: failedResult()}, subs, &memGamification{})

	for i := 0; i < 3; i++ {
		_, err := svc.SubmitChallenge(context.Background(), "user-1", "two-sum", "code", 71, 0)
		require.NoError(t, err)
	}

	history, err := svc.GetSubmissionHistory(context.Background(), "user-1", "two-sum")
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i, sub := range history {
		assert.Equal(t, i+1, sub.AttemptNumber)
	}
}
