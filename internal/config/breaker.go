package config

import (
	"strconv"
	"time"
)

// BreakerConfig holds circuit breaker thresholds shared by both backends
type BreakerConfig struct {
	FailureThreshold int
	Cooldown         time.Duration
}

func NewBreakerConfig() *BreakerConfig {
	threshold := 5
	if v, err := strconv.Atoi(getEnv("BREAKER_FAILURE_THRESHOLD", "")); err == nil && v > 0 {
		threshold = v
	}
	return &BreakerConfig{
		FailureThreshold: threshold,
		Cooldown:         getDurationEnv("BREAKER_COOLDOWN_SEC", 30),
	}
}
