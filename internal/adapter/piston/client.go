package piston

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"gitlab.com/codequest-2025.net/internal/config"
	"gitlab.com/codequest-2025.net/internal/core/ports/primary"
	"gitlab.com/codequest-2025.net/internal/core/ports/secondary"
	"gitlab.com/codequest-2025.net/internal/domain"
	"gitlab.com/codequest-2025.net/internal/static/errs"
)

const backendName = "piston"

type wireFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type wireRequest struct {
	Language       string     `json:"language"`
	Version        string     `json:"version"`
	Files          []wireFile `json:"files"`
	Stdin          string     `json:"stdin"`
	CompileTimeout int        `json:"compile_timeout,omitempty"`
	RunTimeout     int        `json:"run_timeout,omitempty"`
	RunMemoryLimit int64      `json:"run_memory_limit,omitempty"`
}

type wireStage struct {
	Stdout string  `json:"stdout"`
	Stderr string  `json:"stderr"`
	Code   int     `json:"code"`
	Signal *string `json:"signal"`
}

type wireResponse struct {
	Language string     `json:"language"`
	Version  string     `json:"version"`
	Run      wireStage  `json:"run"`
	Compile  *wireStage `json:"compile"`
}

// Client talks to an instant-run execution backend: one synchronous call per
// request, compile phase reported alongside the run in the same response.
type Client struct {
	cfg        *config.PistonConfig
	httpClient *http.Client
	logger     primary.Logger
}

var _ secondary.ExecutionBackend = (*Client)(nil)

// NewClient creates an instant-run backend client
func NewClient(cfg *config.PistonConfig, logger primary.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     logger,
	}
}

// Name identifies the backend in logs and breaker state
func (c *Client) Name() string {
	return backendName
}

// Execute runs each request with a single synchronous call. There is no
// token/poll cycle; the per-call timeout is the only wait bound.
func (c *Client) Execute(ctx context.Context, requests []domain.ExecutionRequest) ([]domain.ExecutionOutcome, error) {
	outcomes := make([]domain.ExecutionOutcome, len(requests))
	for i, req := range requests {
		outcome, err := c.run(ctx, req)
		if err != nil {
			return nil, err
		}
		outcomes[i] = outcome
	}
	return outcomes, nil
}

func (c *Client) run(ctx context.Context, req domain.ExecutionRequest) (domain.ExecutionOutcome, error) {
	lang, err := lookupLanguage(req.LanguageID)
	if err != nil {
		return domain.ExecutionOutcome{}, err
	}

	wireReq := wireRequest{
		Language:       lang.Name,
		Version:        lang.Version,
		Files:          []wireFile{{Name: lang.File, Content: req.SourceCode}},
		Stdin:          req.Stdin,
		RunTimeout:     int(req.CPUTimeLimitSec * 1000),
		RunMemoryLimit: int64(req.MemoryLimitKB) * 1024,
	}

	payload, err := json.Marshal(wireReq)
	if err != nil {
		return domain.ExecutionOutcome{}, fmt.Errorf("failed to marshal run request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/execute", bytes.NewReader(payload))
	if err != nil {
		return domain.ExecutionOutcome{}, fmt.Errorf("%w: %v", errs.BackendUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return domain.ExecutionOutcome{}, fmt.Errorf("%w: %v", errs.BackendTimeout, err)
		}
		return domain.ExecutionOutcome{}, fmt.Errorf("%w: %v", errs.BackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return domain.ExecutionOutcome{}, fmt.Errorf("%w: status %d", errs.BackendUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return domain.ExecutionOutcome{}, fmt.Errorf("%w: rejected with status %d", errs.BackendUnavailable, resp.StatusCode)
	}

	var wireResp wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wireResp); err != nil {
		return domain.ExecutionOutcome{}, fmt.Errorf("%w: malformed response: %v", errs.BackendUnavailable, err)
	}

	return mapOutcome(wireResp, req.ExpectedOutput), nil
}

// mapOutcome normalizes the instant-run response onto the shared status scale
func mapOutcome(resp wireResponse, expectedOutput string) domain.ExecutionOutcome {
	out := domain.ExecutionOutcome{
		Stdout: resp.Run.Stdout,
		Stderr: resp.Run.Stderr,
	}

	if resp.Compile != nil && resp.Compile.Code != 0 {
		out.CompileOutput = strings.TrimSpace(resp.Compile.Stdout + "\n" + resp.Compile.Stderr)
		out.StatusID = domain.StatusCompilationError
		return out
	}

	if resp.Run.Signal != nil {
		out.StatusID = signalStatus(*resp.Run.Signal)
		return out
	}

	if resp.Run.Code != 0 {
		out.StatusID = domain.StatusRuntimeNZEC
		return out
	}

	if expectedOutput != "" && strings.TrimSpace(resp.Run.Stdout) != strings.TrimSpace(expectedOutput) {
		out.StatusID = domain.StatusWrongAnswer
		return out
	}

	out.StatusID = domain.StatusAccepted
	return out
}

func signalStatus(signal string) domain.StatusID {
	switch signal {
	case "SIGKILL":
		// The runner kills the process on wall/CPU time overrun
		return domain.StatusTimeLimitExceed
	case "SIGSEGV":
		return domain.StatusRuntimeSIGSEGV
	case "SIGXFSZ":
		return domain.StatusRuntimeSIGXFSZ
	case "SIGFPE":
		return domain.StatusRuntimeSIGFPE
	case "SIGABRT":
		return domain.StatusRuntimeSIGABRT
	default:
		return domain.StatusRuntimeOther
	}
}
