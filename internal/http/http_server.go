package http

// this is entry point of the http request handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/codequest-2025.net/internal/core/ports/primary"
	"gitlab.com/codequest-2025.net/internal/core/services/execution"
	"gitlab.com/codequest-2025.net/internal/core/services/grading"
	"gitlab.com/codequest-2025.net/internal/handlers"
	"gitlab.com/codequest-2025.net/internal/handlers/runner"
	"gitlab.com/codequest-2025.net/internal/handlers/submissions"
)

type ServiceProvider struct {
	gradingService   grading.IGradingService
	executionService execution.IExecutionService
}

func NewServiceProvider(
	gradingService grading.IGradingService,
	executionService execution.IExecutionService,
) *ServiceProvider {
	return &ServiceProvider{
		gradingService:   gradingService,
		executionService: executionService,
	}
}

type Server struct {
	router          *mux.Router
	srv             *http.Server
	Port            int
	ServiceName     string
	ServiceProvider ServiceProvider
	logger          primary.Logger
}

func NewServer(port int, serviceName string, serviceProvider ServiceProvider, logger primary.Logger) *Server {
	return &Server{
		Port:            port,
		ServiceName:     serviceName,
		ServiceProvider: serviceProvider,
		logger:          logger,
	}
}

func (s *Server) Init() error {
	r := mux.NewRouter()
	mw := handlers.New()

	authed := r.NewRoute().Subrouter()
	authed.Use(mw.JWTMiddleware)
	submissions.
		NewSubmissionHandler(s.ServiceProvider.gradingService, s.logger).
		RegisterRoutes(authed)

	runner.
		NewRunnerHandler(s.ServiceProvider.executionService, s.logger).
		RegisterRoutes(r)

	s.router = r
	return nil
}

func (s *Server) Start(ctx context.Context) {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.srv = srv

	// Start the server in a goroutine
	go func() {
		s.logger.Info("Server listening", "addr", srv.Addr, "service", s.ServiceName)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()
}

func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("Shutting down http server...")
	if s.srv != nil {
		if err := s.srv.Shutdown(ctx); err != nil {
			s.logger.Error("Server forced to shutdown", "error", err)
		}
	}
}
