// package gamification contains the Redis-backed gamification collaborator
package gamification

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"gitlab.com/codequest-2025.net/internal/core/ports/primary"
	"gitlab.com/codequest-2025.net/internal/core/ports/secondary"
	"gitlab.com/codequest-2025.net/internal/domain"
)

const (
	xpTotalKeyPrefix = "xp:total:"
	leaderboardKey   = "xp:leaderboard"
)

// GamificationAdapter implements the GamificationPort with Redis: XP totals
// live under xp:total:<userId> and a sorted set backs the leaderboard. Level
// and rank policy is computed here from the post-award total.
type GamificationAdapter struct {
	redisClient *redis.Client
	logger      primary.Logger
}

var _ secondary.GamificationPort = (*GamificationAdapter)(nil)

// NewGamificationAdapter creates a Redis gamification adapter
func NewGamificationAdapter(redisClient *redis.Client, logger primary.Logger) *GamificationAdapter {
	return &GamificationAdapter{
		redisClient: redisClient,
		logger:      logger,
	}
}

// AwardXP grants XP and reports the resulting totals and deltas
func (g *GamificationAdapter) AwardXP(ctx context.Context, userID string, amount int, source string) (*domain.XPAward, error) {
	newTotal, err := g.redisClient.IncrBy(ctx, xpTotalKeyPrefix+userID, int64(amount)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to award xp: %w", err)
	}

	if err := g.redisClient.ZAdd(ctx, leaderboardKey, &redis.Z{
		Score:  float64(newTotal),
		Member: userID,
	}).Err(); err != nil {
		g.logger.Warn("Failed to update leaderboard", "userId", userID, "error", err)
	}

	oldLevel := levelFor(int(newTotal) - amount)
	newLevel := levelFor(int(newTotal))

	g.logger.Info("XP awarded",
		"userId", userID,
		"amount", amount,
		"source", source,
		"newTotal", newTotal)

	return &domain.XPAward{
		NewTotal:  int(newTotal),
		LeveledUp: newLevel > oldLevel,
		NewLevel:  newLevel,
		RankTitle: rankTitle(newLevel),
	}, nil
}

// DeductXP reverses a grant; the compensating action for a failed submission commit
func (g *GamificationAdapter) DeductXP(ctx context.Context, userID string, amount int, source string) error {
	newTotal, err := g.redisClient.DecrBy(ctx, xpTotalKeyPrefix+userID, int64(amount)).Result()
	if err != nil {
		return fmt.Errorf("failed to deduct xp: %w", err)
	}

	if err := g.redisClient.ZAdd(ctx, leaderboardKey, &redis.Z{
		Score:  float64(newTotal),
		Member: userID,
	}).Err(); err != nil {
		g.logger.Warn("Failed to update leaderboard", "userId", userID, "error", err)
	}

	g.logger.Info("XP deducted",
		"userId", userID,
		"amount", amount,
		"source", source,
		"newTotal", newTotal)
	return nil
}

// levelThresholds[i] is the XP needed to reach level i+2
var levelThresholds = []int{100, 250, 500, 1000, 2000, 4000, 8000, 16000}

func levelFor(total int) int {
	level := 1
	for _, threshold := range levelThresholds {
		if total < threshold {
			break
		}
		level++
	}
	return level
}

func rankTitle(level int) string {
	switch {
	case level >= 9:
		return "Grandmaster"
	case level >= 7:
		return "Master"
	case level >= 5:
		return "Expert"
	case level >= 3:
		return "Apprentice"
	default:
		return "Novice"
	}
}
