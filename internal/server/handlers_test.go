package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"resumelens/internal/errors"
	"resumelens/internal/observability"
	"resumelens/internal/types"
)

type fakeEngine struct {
	lastRequest types.AnalyzeRequest
	response    types.AnalyzeResponse
}

func (f *fakeEngine) Analyze(_ context.Context, req types.AnalyzeRequest) types.AnalyzeResponse {
	f.lastRequest = req
	return f.response
}

func testServer(t *testing.T, engine Analyzer, apiKeys []string) *Server {
	t.Helper()
	logger, err := errors.New("error")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewServer(nil, ServerConfig{
		Host:           "localhost",
		Port:           "8080",
		Version:        "test",
		APIKeys:        apiKeys,
		MaxRequestSize: 1024 * 1024,
	}, engine, logger)
}

func disabledObservability(t *testing.T) *observability.ObservabilityManager {
	t.Helper()
	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("observability: %v", err)
	}
	return om
}

func successResponse() types.AnalyzeResponse {
	return types.AnalyzeResponse{
		Success:      true,
		AnalysisID:   "id-1",
		OverallScore: 78.25,
		MarketTier:   types.TierSenior,
		Summary:      "Overall assessment: strong",
	}
}

func TestAnalyzeHandlerSuccess(t *testing.T) {
	engine := &fakeEngine{response: successResponse()}
	srv := testServer(t, engine, nil)
	handler := srv.createAnalyzeHandler(disabledObservability(t))

	body := `{"resumeText":"some resume text","industry":"tech_consulting","analysisId":"id-1"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	var resp types.AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if !resp.Success || resp.OverallScore != 78.25 {
		t.Errorf("unexpected envelope: %+v", resp)
	}
	if engine.lastRequest.Industry != "tech_consulting" || engine.lastRequest.AnalysisID != "id-1" {
		t.Errorf("engine received wrong request: %+v", engine.lastRequest)
	}
}

func TestAnalyzeHandlerValidation(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
	}{
		{"missing resume text", `{"industry":"tech_consulting"}`, "application/json"},
		{"missing industry", `{"resumeText":"text"}`, "application/json"},
		{"malformed JSON", `{not json`, "application/json"},
		{"wrong content type", `{"resumeText":"text","industry":"x"}`, "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{response: successResponse()}
			srv := testServer(t, engine, nil)
			handler := srv.createAnalyzeHandler(disabledObservability(t))

			req := httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()

			handler(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if engine.lastRequest.ResumeText != "" {
				t.Error("engine must not run on invalid requests")
			}
		})
	}
}

func TestAnalyzeHandlerMethodNotAllowed(t *testing.T) {
	srv := testServer(t, &fakeEngine{response: successResponse()}, nil)
	handler := srv.createAnalyzeHandler(disabledObservability(t))

	req := httptest.NewRequest(http.MethodGet, "/v1/analyze", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestStatusForResponse(t *testing.T) {
	tests := []struct {
		name string
		resp types.AnalyzeResponse
		want int
	}{
		{"success", types.AnalyzeResponse{Success: true}, http.StatusOK},
		{
			"partial result",
			types.AnalyzeResponse{Success: false, Result: &types.CompleteResult{}, Error: "RETRY_BUDGET_EXHAUSTED: appeal"},
			http.StatusOK,
		},
		{
			"input rejection",
			types.AnalyzeResponse{Success: false, Error: errors.ErrCodeResumeTooShort + ": 12 chars"},
			http.StatusBadRequest,
		},
		{
			"unknown industry",
			types.AnalyzeResponse{Success: false, Error: errors.ErrCodeInvalidIndustry + ": nope"},
			http.StatusBadRequest,
		},
		{
			"cancelled",
			types.AnalyzeResponse{Success: false, Error: errors.ErrCodeAnalysisCancelled + ": ctx done"},
			http.StatusServiceUnavailable,
		},
		{
			"upstream failure",
			types.AnalyzeResponse{Success: false, Error: errors.ErrCodeRetryBudgetExhausted + ": structure"},
			http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusForResponse(tt.resp); got != tt.want {
				t.Errorf("statusForResponse = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	srv := testServer(t, &fakeEngine{response: successResponse()}, []string{"secret-key-12345"})

	called := false
	handler := srv.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	t.Run("missing key", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodPost, "/v1/analyze", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)
		if rec.Code != http.StatusUnauthorized || called {
			t.Errorf("expected 401 without key, got %d (called=%v)", rec.Code, called)
		}
	})

	t.Run("invalid key", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodPost, "/v1/analyze", nil)
		req.Header.Set("X-API-Key", "wrong")
		rec := httptest.NewRecorder()
		handler(rec, req)
		if rec.Code != http.StatusUnauthorized || called {
			t.Errorf("expected 401 with invalid key, got %d (called=%v)", rec.Code, called)
		}
	})

	t.Run("valid header key", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodPost, "/v1/analyze", nil)
		req.Header.Set("X-API-Key", "secret-key-12345")
		rec := httptest.NewRecorder()
		handler(rec, req)
		if !called {
			t.Error("expected handler to run with valid key")
		}
	})

	t.Run("valid bearer token", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodPost, "/v1/analyze", nil)
		req.Header.Set("Authorization", "Bearer secret-key-12345")
		rec := httptest.NewRecorder()
		handler(rec, req)
		if !called {
			t.Error("expected handler to run with valid bearer token")
		}
	})
}

func TestIndustriesHandler(t *testing.T) {
	srv := testServer(t, &fakeEngine{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/industries", nil)
	rec := httptest.NewRecorder()
	srv.industriesHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Industries []map[string]string `json:"industries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(resp.Industries) != len(types.SupportedIndustries) {
		t.Errorf("got %d industries, want %d", len(resp.Industries), len(types.SupportedIndustries))
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := maskAPIKey("short"); got != "****" {
		t.Errorf("maskAPIKey(short) = %q", got)
	}
	if got := maskAPIKey("secret-key-12345"); got != "secret-k****" {
		t.Errorf("maskAPIKey(long) = %q", got)
	}
}
