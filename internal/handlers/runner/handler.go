package runner

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/codequest-2025.net/internal/core/ports/primary"
	"gitlab.com/codequest-2025.net/internal/core/services/execution"
	"gitlab.com/codequest-2025.net/internal/handlers/response"
)

// RunRequest represents an ad-hoc "run code" request, no grading involved
type RunRequest struct {
	SourceCode string `json:"sourceCode"`
	LanguageID int    `json:"languageId"`
	Stdin      string `json:"stdin,omitempty"`
}

// RunResponse carries the raw run output back to the user
type RunResponse struct {
	Stdout          string `json:"stdout"`
	Stderr          string `json:"stderr"`
	CompileOutput   string `json:"compileOutput,omitempty"`
	Status          string `json:"status"`
	ExecutionTimeMs int64  `json:"executionTimeMs"`
	MemoryKB        int    `json:"memoryKb"`
}

// RunnerHandler handles ad-hoc code execution requests
type RunnerHandler struct {
	executionService execution.IExecutionService
	logger           primary.Logger
}

// NewRunnerHandler creates a new runner handler
func NewRunnerHandler(executionService execution.IExecutionService, logger primary.Logger) *RunnerHandler {
	return &RunnerHandler{
		executionService: executionService,
		logger:           logger,
	}
}

// RegisterRoutes registers the API routes for RunnerHandler
func (h *RunnerHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/execute", h.Run).Methods("POST")
}

// Run executes code once and returns the raw output
func (h *RunnerHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode run request", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "invalid request", StatusCode: http.StatusBadRequest})
		return
	}

	outcome, err := h.executionService.RunAdhoc(r.Context(), req.SourceCode, req.LanguageID, req.Stdin)
	if err != nil {
		h.logger.Error("Ad-hoc run failed", "error", err)
		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, RunResponse{
		Stdout:          outcome.Stdout,
		Stderr:          outcome.Stderr,
		CompileOutput:   outcome.CompileOutput,
		Status:          outcome.StatusID.Label(),
		ExecutionTimeMs: int64(outcome.TimeSec * 1000),
		MemoryKB:        outcome.MemoryKB,
	})
}
