package domain

// XPAward is the gamification collaborator's response to an XP grant.
// The grading core surfaces these fields verbatim; level and rank policy
// belong to gamification, not to grading.
type XPAward struct {
	NewTotal  int
	LeveledUp bool
	NewLevel  int
	RankTitle string
}
