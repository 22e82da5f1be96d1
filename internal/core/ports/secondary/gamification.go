package secondary

import (
	"context"

	"gitlab.com/codequest-2025.net/internal/domain"
)

// GamificationPort is the outbound contract with the gamification collaborator.
// Reward amounts and level policy are owned by that collaborator; the grading
// core passes amounts through and surfaces the response verbatim.
type GamificationPort interface {
	// AwardXP grants XP to a user and returns the resulting totals and deltas
	AwardXP(ctx context.Context, userID string, amount int, source string) (*domain.XPAward, error)

	// DeductXP reverses a grant; used as the compensating action when the
	// submission record cannot be committed after XP was already awarded.
	DeductXP(ctx context.Context, userID string, amount int, source string) error
}
