package domain

import "time"

// Difficulty buckets challenges for XP purposes
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Challenge represents a coding challenge with hidden test cases.
// Only the fields the grading core needs are modeled here.
type Challenge struct {
	ID         string
	Title      string
	Difficulty Difficulty
	XPReward   int
	CreatedAt  time.Time
}
