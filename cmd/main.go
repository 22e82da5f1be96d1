package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gitlab.com/codequest-2025.net/internal/adapter/judge0"
	"gitlab.com/codequest-2025.net/internal/adapter/piston"
	"gitlab.com/codequest-2025.net/internal/adapter/postgres/challengerepository"
	"gitlab.com/codequest-2025.net/internal/adapter/postgres/submissionrepository"
	"gitlab.com/codequest-2025.net/internal/adapter/redis/gamification"
	"gitlab.com/codequest-2025.net/internal/config"
	"gitlab.com/codequest-2025.net/internal/core/ports/secondary"
	"gitlab.com/codequest-2025.net/internal/core/services/execution"
	"gitlab.com/codequest-2025.net/internal/core/services/grading"
	logger2 "gitlab.com/codequest-2025.net/internal/global/logger"
	http2 "gitlab.com/codequest-2025.net/internal/http"
	"gitlab.com/codequest-2025.net/internal/resilience"
)

func main() {
	InitReader()
	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	logger2.Info("Starting grading service")

	logger := logger2.Logger

	sysCfg := config.NewSystemConfig()

	db, err := setupDatabase(sysCfg)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     sysCfg.RedisConfig.Url,
		Password: sysCfg.RedisConfig.Password,
		DB:       sysCfg.RedisConfig.DB,
	})
	defer redisClient.Close()

	// SECONDARY PORTS
	challengeRepo := challengerepository.NewChallengeRepository(db, logger)
	submissionRepo := submissionrepository.NewSubmissionRepository(db, logger)
	gamificationPort := gamification.NewGamificationAdapter(redisClient, logger)

	// Execution backends, each behind its own breaker; queue-poll first
	judge0Backend := judge0.NewClient(sysCfg.Judge0Config, logger)
	pistonBackend := piston.NewClient(sysCfg.PistonConfig, logger)
	backends := []secondary.ExecutionBackend{
		resilience.NewGuard(judge0Backend, resilience.NewBreaker(
			judge0Backend.Name(),
			sysCfg.BreakerConfig.FailureThreshold,
			sysCfg.BreakerConfig.Cooldown,
			logger,
		)),
		resilience.NewGuard(pistonBackend, resilience.NewBreaker(
			pistonBackend.Name(),
			sysCfg.BreakerConfig.FailureThreshold,
			sysCfg.BreakerConfig.Cooldown,
			logger,
		)),
	}

	// services
	executionSvc := execution.NewExecutionService(backends, sysCfg.GradingConfig, logger)
	gradingSvc := grading.NewGradingService(challengeRepo, submissionRepo, gamificationPort, executionSvc, sysCfg.GradingConfig, logger)
	serviceProvider := http2.NewServiceProvider(gradingSvc, executionSvc)

	// server
	httpServer := http2.NewServer(8082, "gradingService", *serviceProvider, logger)
	if err := httpServer.Init(); err != nil {
		panic(err)
	}
	ctxBg := context.Background()
	httpServer.Start(ctxBg)

	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(ctxBg, 5*time.Second)
	defer cancel()
	httpServer.Stop(ctx)

	logger.Info("successfully shutdown server")
}

// setupDatabase sets up the PostgreSQL connection
func setupDatabase(cfg *config.AppConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.PostgresConfig.Url)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

func InitReader() {
	environment := ""
	if len(os.Args) < 2 {
		log.Fatalf("Env not supplied in argument")
	} else {
		environment = os.Args[1]
	}

	err := godotenv.Load(environment + ".env")
	if err != nil {
		log.Fatalf("Error loading %s.env file", environment)
	}
}
