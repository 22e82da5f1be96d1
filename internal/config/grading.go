package config

import (
	"strconv"
	"time"
)

// GradingConfig bounds a single grading call
type GradingConfig struct {
	MaxSourceBytes  int
	OverallDeadline time.Duration
	CPUTimeLimitSec float64
	MemoryLimitKB   int
}

func NewGradingConfig() *GradingConfig {
	maxSrc := 64 * 1024
	if v, err := strconv.Atoi(getEnv("GRADING_MAX_SOURCE_BYTES", "")); err == nil && v > 0 {
		maxSrc = v
	}
	return &GradingConfig{
		MaxSourceBytes:  maxSrc,
		OverallDeadline: getDurationEnv("GRADING_DEADLINE_SEC", 90),
		CPUTimeLimitSec: 2,
		MemoryLimitKB:   128 * 1024,
	}
}
