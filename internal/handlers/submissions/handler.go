package submissions

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/codequest-2025.net/internal/core/ports/primary"
	"gitlab.com/codequest-2025.net/internal/core/services/grading"
	"gitlab.com/codequest-2025.net/internal/handlers"
	"gitlab.com/codequest-2025.net/internal/handlers/response"
)

// SubmissionHandler handles graded challenge submissions
type SubmissionHandler struct {
	gradingService grading.IGradingService
	logger         primary.Logger
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(gradingService grading.IGradingService, logger primary.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		gradingService: gradingService,
		logger:         logger,
	}
}

// RegisterRoutes registers the API routes for SubmissionHandler
func (h *SubmissionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/challenges/{challengeId}/submissions", h.Submit).Methods("POST")
	router.HandleFunc("/api/challenges/{challengeId}/submissions", h.History).Methods("GET")
}

// Submit handles graded submission requests
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	challengeID := mux.Vars(r)["challengeId"]
	userID := handlers.UserIDFromContext(r.Context())
	if userID == "" {
		response.WriteError(w, response.ErrorMessage{Message: "unauthenticated", StatusCode: http.StatusUnauthorized})
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode submit request", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "invalid request", StatusCode: http.StatusBadRequest})
		return
	}

	result, err := h.gradingService.SubmitChallenge(r.Context(), userID, challengeID, req.SourceCode, req.LanguageID, req.TimeSpentSec)
	if err != nil {
		h.logger.Error("Failed to grade submission",
			"userId", userID,
			"challengeId", challengeID,
			"error", err)
		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, newSubmitResponse(result))
}

// History handles submission history requests
func (h *SubmissionHandler) History(w http.ResponseWriter, r *http.Request) {
	challengeID := mux.Vars(r)["challengeId"]
	userID := handlers.UserIDFromContext(r.Context())
	if userID == "" {
		response.WriteError(w, response.ErrorMessage{Message: "unauthenticated", StatusCode: http.StatusUnauthorized})
		return
	}

	subs, err := h.gradingService.GetSubmissionHistory(r.Context(), userID, challengeID)
	if err != nil {
		h.logger.Error("Failed to list submissions", "userId", userID, "challengeId", challengeID, "error", err)
		response.WriteDomainError(w, err)
		return
	}

	views := make([]SubmissionView, len(subs))
	for i, sub := range subs {
		views[i] = SubmissionView{
			ID:            sub.ID,
			AttemptNumber: sub.AttemptNumber,
			Status:        sub.Status,
			PassedCount:   sub.PassedCount,
			TotalCount:    sub.TotalCount,
			XPAwarded:     sub.XPAwarded,
			LanguageID:    sub.LanguageID,
			CreatedAt:     sub.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	response.WriteSuccess(w, views)
}
