package piston

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/codequest-2025.net/internal/adapter/logging"
	"gitlab.com/codequest-2025.net/internal/config"
	"gitlab.com/codequest-2025.net/internal/domain"
	"gitlab.com/codequest-2025.net/internal/static/errs"
)

func testClient(baseURL string) *Client {
	return NewClient(&config.PistonConfig{
		BaseURL:        baseURL,
		RequestTimeout: 2 * time.Second,
	}, logging.NewNopLogger())
}

func TestExecuteTranslatesLanguageAndRuns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/execute", r.URL.Path)

		var req wireRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		// Numeric ID 71 maps to the backend's name+version pair
		assert.Equal(t, "python", req.Language)
		assert.Equal(t, "3.10.0", req.Version)
		require.Len(t, req.Files, 1)
		assert.Equal(t, "main.py", req.Files[0].Name)
		assert.Equal(t, "print(5)", req.Files[0].Content)

		json.NewEncoder(w).Encode(wireResponse{
			Language: req.Language,
			Version:  req.Version,
			Run:      wireStage{Stdout: "5\n", Code: 0},
		})
	}))
	defer srv.Close()

	outcomes, err := testClient(srv.URL).Execute(context.Background(), []domain.ExecutionRequest{
		{SourceCode: "print(5)", LanguageID: 71, ExpectedOutput: "5"},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, domain.StatusAccepted, outcomes[0].StatusID)
	assert.Equal(t, "5\n", outcomes[0].Stdout)
}

func TestExecutePreservesRequestOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req wireRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(wireResponse{
			Run: wireStage{Stdout: "echo:" + req.Stdin, Code: 0},
		})
	}))
	defer srv.Close()

	outcomes, err := testClient(srv.URL).Execute(context.Background(), []domain.ExecutionRequest{
		{SourceCode: "code", LanguageID: 71, Stdin: "a"},
		{SourceCode: "code", LanguageID: 71, Stdin: "b"},
		{SourceCode: "code", LanguageID: 71, Stdin: "c"},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	assert.Equal(t, "echo:a", outcomes[0].Stdout)
	assert.Equal(t, "echo:b", outcomes[1].Stdout)
	assert.Equal(t, "echo:c", outcomes[2].Stdout)
}

func TestExecuteCompilePhaseFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(wireResponse{
			Compile: &wireStage{Stderr: "main.cpp:1: error: expected ';'", Code: 1},
			Run:     wireStage{},
		})
	}))
	defer srv.Close()

	outcomes, err := testClient(srv.URL).Execute(context.Background(), []domain.ExecutionRequest{
		{SourceCode: "broken(", LanguageID: 54},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompilationError, outcomes[0].StatusID)
	assert.Equal(t, "main.cpp:1: error: expected ';'", outcomes[0].CompileOutput)
}

func TestExecuteSignalMapping(t *testing.T) {
	signal := "SIGKILL"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(wireResponse{
			Run: wireStage{Signal: &signal, Code: 137},
		})
	}))
	defer srv.Close()

	outcomes, err := testClient(srv.URL).Execute(context.Background(), []domain.ExecutionRequest{
		{SourceCode: "while True: pass", LanguageID: 71},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTimeLimitExceed, outcomes[0].StatusID)
}

func TestExecuteNonZeroExitIsRuntimeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(wireResponse{
			Run: wireStage{Stderr: "Traceback ...", Code: 1},
		})
	}))
	defer srv.Close()

	outcomes, err := testClient(srv.URL).Execute(context.Background(), []domain.ExecutionRequest{
		{SourceCode: "raise Exception()", LanguageID: 71},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRuntimeNZEC, outcomes[0].StatusID)
	assert.Equal(t, "Traceback ...", outcomes[0].Stderr)
}

func TestExecuteMismatchedOutputIsWrongAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(wireResponse{
			Run: wireStage{Stdout: "4\n", Code: 0},
		})
	}))
	defer srv.Close()

	outcomes, err := testClient(srv.URL).Execute(context.Background(), []domain.ExecutionRequest{
		{SourceCode: "code", LanguageID: 71, ExpectedOutput: "5"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWrongAnswer, outcomes[0].StatusID)
}

func TestExecuteUnknownLanguageFailsFast(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Execute(context.Background(), []domain.ExecutionRequest{
		{SourceCode: "code", LanguageID: 9999},
	})
	require.ErrorIs(t, err, errs.UnsupportedLanguage)
	// Configuration errors never reach the backend and are not retried
	assert.Equal(t, 0, calls)
	assert.NotErrorIs(t, err, errs.BackendUnavailable)
}

func TestExecuteServerErrorIsBackendUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Execute(context.Background(), []domain.ExecutionRequest{
		{SourceCode: "code", LanguageID: 71},
	})
	assert.ErrorIs(t, err, errs.BackendUnavailable)
}

func TestExecuteRateLimitIsBackendUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Execute(context.Background(), []domain.ExecutionRequest{
		{SourceCode: "code", LanguageID: 71},
	})
	assert.ErrorIs(t, err, errs.BackendUnavailable)
}
