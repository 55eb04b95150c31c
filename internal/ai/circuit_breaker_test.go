package ai

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"resumelens/internal/config"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

func TestPerAgentCircuitBreakers(t *testing.T) {
	structureConfig := &config.AgentAIConfig{
		Provider: "gemini",
		Model:    "gemini-2.0-flash",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      3,
			Interval:         60 * time.Second,
			Timeout:          60 * time.Second,
			MinRequests:      3,
			FailureThreshold: 0.6,
		},
	}

	appealConfig := &config.AgentAIConfig{
		Provider: "gemini",
		Model:    "gemini-2.0-flash",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      5,
			Interval:         30 * time.Second,
			Timeout:          45 * time.Second,
			MinRequests:      2,
			FailureThreshold: 0.7,
		},
	}

	structureCB := NewAICircuitBreaker("structure", structureConfig, nil)
	appealCB := NewAICircuitBreaker("appeal", appealConfig, nil)

	t.Run("StructureBreakerName", func(t *testing.T) {
		stats := structureCB.GetStats()
		name, ok := stats["name"].(string)
		if !ok {
			t.Fatal("Circuit breaker name not found")
		}
		if name != "AI-structure" {
			t.Errorf("Expected circuit breaker name 'AI-structure', got '%s'", name)
		}

		state, ok := stats["state"].(string)
		if !ok {
			t.Fatal("Circuit breaker state not found")
		}
		if state != "closed" {
			t.Errorf("Expected initial state 'closed', got '%s'", state)
		}
	})

	t.Run("AppealBreakerName", func(t *testing.T) {
		stats := appealCB.GetStats()
		name, ok := stats["name"].(string)
		if !ok {
			t.Fatal("Circuit breaker name not found")
		}
		if name != "AI-appeal" {
			t.Errorf("Expected circuit breaker name 'AI-appeal', got '%s'", name)
		}
	})

	t.Run("IndependentInstances", func(t *testing.T) {
		if structureCB == appealCB {
			t.Error("Structure and appeal circuit breakers should be different instances")
		}
	})

	t.Run("HealthyInitially", func(t *testing.T) {
		if !structureCB.IsHealthy() {
			t.Error("Structure circuit breaker should be healthy initially")
		}
		if !appealCB.IsHealthy() {
			t.Error("Appeal circuit breaker should be healthy initially")
		}
	})
}

func TestCircuitBreakerDisabled(t *testing.T) {
	disabledConfig := &config.AgentAIConfig{
		Provider: "gemini",
		Model:    "test-model",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled: false,
		},
	}

	cb := NewAICircuitBreaker("disabled", disabledConfig, nil)
	if cb != nil {
		t.Fatal("Circuit breaker should be nil when disabled")
	}

	// Disabled breaker still executes the function directly
	called := false
	_, err := cb.Execute(func() (*genai.GenerateContentResponse, error) {
		called = true
		return &genai.GenerateContentResponse{}, nil
	})
	if err != nil {
		t.Errorf("Disabled breaker should pass through, got error: %v", err)
	}
	if !called {
		t.Error("Disabled breaker should invoke the wrapped function")
	}

	if !cb.IsHealthy() {
		t.Error("Disabled breaker should report healthy")
	}
	stats := cb.GetStats()
	if enabled, _ := stats["enabled"].(bool); enabled {
		t.Error("Disabled breaker stats should report enabled=false")
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil error", nil, false},
		{"plain error", fmt.Errorf("boom"), false},
		{"rate limited", &googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{"internal server error", &googleapi.Error{Code: http.StatusInternalServerError}, true},
		{"bad gateway", &googleapi.Error{Code: http.StatusBadGateway}, true},
		{"service unavailable", &googleapi.Error{Code: http.StatusServiceUnavailable}, true},
		{"gateway timeout", &googleapi.Error{Code: http.StatusGatewayTimeout}, true},
		{"unauthorized", &googleapi.Error{Code: http.StatusUnauthorized}, false},
		{"bad request", &googleapi.Error{Code: http.StatusBadRequest}, false},
		{"not found", &googleapi.Error{Code: http.StatusNotFound}, false},
		{"network timeout", &timeoutError{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.retryable {
				t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.retryable)
			}
		})
	}
}

// timeoutError implements net.Error for retry classification tests
type timeoutError struct{}

func (e *timeoutError) Error() string   { return "i/o timeout" }
func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true }
