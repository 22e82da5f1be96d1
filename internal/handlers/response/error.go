package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"gitlab.com/codequest-2025.net/internal/static/errs"
)

type ErrorMessage struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

func WriteError(w http.ResponseWriter, err ErrorMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	_ = json.NewEncoder(w).Encode(err)
}

func WriteSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// WriteDomainError maps grading errors onto HTTP statuses without leaking
// backend identities or tokens to the caller.
func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ChallengeNotFound):
		WriteError(w, ErrorMessage{Message: err.Error(), StatusCode: http.StatusNotFound})
	case errors.Is(err, errs.EmptySourceCode),
		errors.Is(err, errs.SourceCodeTooLarge),
		errors.Is(err, errs.UnsupportedLanguage):
		WriteError(w, ErrorMessage{Message: err.Error(), StatusCode: http.StatusBadRequest})
	case errors.Is(err, errs.ExecutionUnavailable):
		WriteError(w, ErrorMessage{Message: "execution service unavailable", StatusCode: http.StatusServiceUnavailable})
	case errors.Is(err, errs.ConflictExhausted):
		WriteError(w, ErrorMessage{Message: "submission conflict, please retry", StatusCode: http.StatusConflict})
	default:
		WriteError(w, ErrorMessage{Message: "internal error", StatusCode: http.StatusInternalServerError})
	}
}
