package judge0

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gitlab.com/codequest-2025.net/internal/config"
	"gitlab.com/codequest-2025.net/internal/core/ports/primary"
	"gitlab.com/codequest-2025.net/internal/core/ports/secondary"
	"gitlab.com/codequest-2025.net/internal/domain"
	"gitlab.com/codequest-2025.net/internal/static/errs"
)

const backendName = "judge0"

// Client talks to a queue-poll execution backend: submissions return opaque
// tokens and results are polled until every token reaches a terminal status.
type Client struct {
	cfg        *config.Judge0Config
	httpClient *http.Client
	logger     primary.Logger
}

var _ secondary.ExecutionBackend = (*Client)(nil)

// NewClient creates a queue-poll backend client
func NewClient(cfg *config.Judge0Config, logger primary.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// Name identifies the backend in logs and breaker state
func (c *Client) Name() string {
	return backendName
}

// Execute submits every request, then polls until all tokens are terminal or
// the batch deadline expires. Outcomes come back in request order.
func (c *Client) Execute(ctx context.Context, requests []domain.ExecutionRequest) ([]domain.ExecutionOutcome, error) {
	if len(requests) == 0 {
		return nil, nil
	}

	deadline := time.Now().Add(c.cfg.BatchDeadline)
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	tokens, err := c.submit(ctx, requests)
	if err != nil {
		return nil, err
	}

	return c.pollAll(ctx, tokens)
}

// submit sends the batch endpoint when more than one request is present to
// amortize round-trips, otherwise the single-submission endpoint.
func (c *Client) submit(ctx context.Context, requests []domain.ExecutionRequest) ([]string, error) {
	if len(requests) == 1 {
		var tok wireToken
		if err := c.post(ctx, "/submissions?base64_encoded=true&wait=false", encodeSubmission(requests[0]), &tok); err != nil {
			return nil, err
		}
		return []string{tok.Token}, nil
	}

	batch := wireBatchRequest{Submissions: make([]wireSubmission, len(requests))}
	for i, req := range requests {
		batch.Submissions[i] = encodeSubmission(req)
	}

	var tokens []wireToken
	if err := c.post(ctx, "/submissions/batch?base64_encoded=true", batch, &tokens); err != nil {
		return nil, err
	}
	if len(tokens) != len(requests) {
		return nil, fmt.Errorf("%w: got %d tokens for %d submissions", errs.BackendUnavailable, len(tokens), len(requests))
	}

	out := make([]string, len(tokens))
	for i, t := range tokens {
		if t.Token == "" {
			return nil, fmt.Errorf("%w: empty token at position %d", errs.BackendUnavailable, i)
		}
		out[i] = t.Token
	}
	return out, nil
}

// pollAll polls outstanding tokens with increasing backoff until every one is
// terminal. The context deadline is the harness ceiling: expiring with work
// still pending is a BackendTimeout, not a per-test verdict.
func (c *Client) pollAll(ctx context.Context, tokens []string) ([]domain.ExecutionOutcome, error) {
	outcomes := make([]domain.ExecutionOutcome, len(tokens))
	done := make([]bool, len(tokens))
	indexOf := make(map[string]int, len(tokens))
	for i, t := range tokens {
		indexOf[t] = i
	}

	backoff := c.cfg.PollInitial
	for attempt := 0; attempt < c.cfg.MaxPollAttempts; attempt++ {
		pending := pendingTokens(tokens, done)
		if len(pending) == 0 {
			return outcomes, nil
		}

		results, err := c.fetch(ctx, pending)
		if err != nil {
			return nil, err
		}

		for i, res := range results {
			idx, ok := indexOf[res.Token]
			if !ok {
				// Single-submission responses carry no token
				idx = indexOf[pending[i]]
			}
			outcome := decodeResult(res)
			if outcome.StatusID.Terminal() {
				outcomes[idx] = outcome
				done[idx] = true
			}
		}

		if len(pendingTokens(tokens, done)) == 0 {
			return outcomes, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %d submissions still pending", errs.BackendTimeout, len(pendingTokens(tokens, done)))
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > c.cfg.PollMax {
			backoff = c.cfg.PollMax
		}
	}

	return nil, fmt.Errorf("%w: poll attempts exhausted", errs.BackendTimeout)
}

func pendingTokens(tokens []string, done []bool) []string {
	var pending []string
	for i, t := range tokens {
		if !done[i] {
			pending = append(pending, t)
		}
	}
	return pending
}

// fetch retrieves current results for the given tokens, one wireResult per token
func (c *Client) fetch(ctx context.Context, tokens []string) ([]wireResult, error) {
	if len(tokens) == 1 {
		var res wireResult
		if err := c.get(ctx, "/submissions/"+tokens[0]+"?base64_encoded=true&fields=stdout,stderr,compile_output,status_id,time,memory", &res); err != nil {
			return nil, err
		}
		return []wireResult{res}, nil
	}

	var batch wireBatchResult
	path := "/submissions/batch?tokens=" + strings.Join(tokens, ",") +
		"&base64_encoded=true&fields=token,stdout,stderr,compile_output,status_id,time,memory"
	if err := c.get(ctx, path, &batch); err != nil {
		return nil, err
	}
	return batch.Submissions, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", errs.BackendUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.BackendUnavailable, err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	if c.cfg.AuthToken != "" {
		req.Header.Set("X-Auth-Token", c.cfg.AuthToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return fmt.Errorf("%w: %v", errs.BackendTimeout, err)
		}
		return fmt.Errorf("%w: %v", errs.BackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: status %d", errs.BackendUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: rejected with status %d", errs.BackendUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", errs.BackendUnavailable, err)
	}
	return nil
}
