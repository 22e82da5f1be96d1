package domain

import "github.com/google/uuid"

// TestCase represents a single grading check for a challenge
type TestCase struct {
	ID             uuid.UUID
	Input          string
	ExpectedOutput string
	IsHidden       bool
	Position       int
}
