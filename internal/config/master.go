package config

import "os"

type AppConfig struct {
	DebugMode      bool
	PostgresConfig *PostgresConfig
	RedisConfig    *RedisConfig
	JwtConfig      *JwtConfig
	Judge0Config   *Judge0Config
	PistonConfig   *PistonConfig
	BreakerConfig  *BreakerConfig
	GradingConfig  *GradingConfig
}

func NewSystemConfig() *AppConfig {
	return &AppConfig{
		DebugMode:      os.Getenv("DEBUG_MODE") == "true",
		PostgresConfig: NewPostgresConfig(),
		RedisConfig:    NewRedisConfig(),
		JwtConfig:      NewJwtConfig(),
		Judge0Config:   NewJudge0Config(),
		PistonConfig:   NewPistonConfig(),
		BreakerConfig:  NewBreakerConfig(),
		GradingConfig:  NewGradingConfig(),
	}
}

// getEnv gets an environment variable with a fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
