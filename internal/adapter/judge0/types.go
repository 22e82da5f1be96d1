package judge0

import (
	"encoding/base64"
	"strconv"

	"gitlab.com/codequest-2025.net/internal/domain"
)

// The wire format is JSON carrying arbitrary program bytes, so every text
// field is base64-encoded in both directions.

type wireSubmission struct {
	SourceCode     string  `json:"source_code"`
	LanguageID     int     `json:"language_id"`
	Stdin          string  `json:"stdin,omitempty"`
	ExpectedOutput string  `json:"expected_output,omitempty"`
	CPUTimeLimit   float64 `json:"cpu_time_limit,omitempty"`
	MemoryLimit    int     `json:"memory_limit,omitempty"`
}

type wireBatchRequest struct {
	Submissions []wireSubmission `json:"submissions"`
}

type wireToken struct {
	Token string `json:"token"`
}

type wireResult struct {
	Token         string  `json:"token,omitempty"`
	Stdout        *string `json:"stdout"`
	Stderr        *string `json:"stderr"`
	CompileOutput *string `json:"compile_output"`
	StatusID      int     `json:"status_id"`
	Time          *string `json:"time"`
	Memory        *int    `json:"memory"`
}

type wireBatchResult struct {
	Submissions []wireResult `json:"submissions"`
}

func encodeSubmission(req domain.ExecutionRequest) wireSubmission {
	return wireSubmission{
		SourceCode:     b64(req.SourceCode),
		LanguageID:     req.LanguageID,
		Stdin:          b64(req.Stdin),
		ExpectedOutput: b64(req.ExpectedOutput),
		CPUTimeLimit:   req.CPUTimeLimitSec,
		MemoryLimit:    req.MemoryLimitKB,
	}
}

func decodeResult(w wireResult) domain.ExecutionOutcome {
	out := domain.ExecutionOutcome{
		Stdout:        unb64(w.Stdout),
		Stderr:        unb64(w.Stderr),
		CompileOutput: unb64(w.CompileOutput),
		StatusID:      domain.StatusID(w.StatusID),
	}
	if w.Time != nil {
		if t, err := strconv.ParseFloat(*w.Time, 64); err == nil {
			out.TimeSec = t
		}
	}
	if w.Memory != nil {
		out.MemoryKB = *w.Memory
	}
	return out
}

func b64(s string) string {
	if s == "" {
		return ""
	}
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func unb64(s *string) string {
	if s == nil || *s == "" {
		return ""
	}
	decoded, err := base64.StdEncoding.DecodeString(*s)
	if err != nil {
		// Some deployments return plaintext when the field held no program bytes
		return *s
	}
	return string(decoded)
}
