package config

import "time"

// PistonConfig holds settings for the instant-run execution backend
type PistonConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

func NewPistonConfig() *PistonConfig {
	return &PistonConfig{
		BaseURL:        getEnv("PISTON_URL", "https://emkc.org/api/v2/piston"),
		RequestTimeout: getDurationEnv("PISTON_TIMEOUT_SEC", 15),
	}
}
