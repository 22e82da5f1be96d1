package config

import (
	"strconv"
	"time"
)

// Judge0Config holds settings for the queue-poll execution backend
type Judge0Config struct {
	BaseURL         string
	AuthToken       string
	PollInitial     time.Duration
	PollMax         time.Duration
	BatchDeadline   time.Duration
	MaxPollAttempts int
}

func NewJudge0Config() *Judge0Config {
	return &Judge0Config{
		BaseURL:         getEnv("JUDGE0_URL", "http://localhost:2358"),
		AuthToken:       getEnv("JUDGE0_AUTH_TOKEN", ""),
		PollInitial:     time.Second,
		PollMax:         5 * time.Second,
		BatchDeadline:   getDurationEnv("JUDGE0_BATCH_DEADLINE_SEC", 60),
		MaxPollAttempts: 30,
	}
}

func getDurationEnv(key string, fallbackSec int) time.Duration {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil && v > 0 {
		return time.Duration(v) * time.Second
	}
	return time.Duration(fallbackSec) * time.Second
}
