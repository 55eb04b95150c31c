package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	resumelensErrors "resumelens/internal/errors"
	"resumelens/internal/observability"
	"resumelens/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// createAnalyzeHandler wraps the analyze handler with observability
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumelens.api")
		ctx, span := tracer.Start(ctx, "api.analyze")
		defer span.End()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req AnalyzeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.ResumeText) == "" {
			err := fmt.Errorf("missing resume text")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing resume text", "resumeText field is required", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Industry) == "" {
			err := fmt.Errorf("missing industry")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing industry", "industry field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.String("request.industry", req.Industry),
			attribute.String("operation", "analyze"),
		)

		response := s.Engine.Analyze(ctx, types.AnalyzeRequest{
			ResumeText: req.ResumeText,
			Industry:   req.Industry,
			AnalysisID: req.AnalysisID,
		})

		span.SetAttributes(
			attribute.Bool("success", response.Success),
			attribute.Float64("overall_score", response.OverallScore),
			attribute.String("market_tier", string(response.MarketTier)),
		)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusForResponse(response))
		if err := json.NewEncoder(w).Encode(response); err != nil {
			span.RecordError(err)
			s.Logger.LogError(err, "Failed to encode analyze response")
		}
	}
}

// statusForResponse maps a workflow envelope to an HTTP status code.
// Partial results still serve a payload with 200.
func statusForResponse(resp types.AnalyzeResponse) int {
	if resp.Success || resp.Result != nil {
		return http.StatusOK
	}
	for _, code := range []string{
		resumelensErrors.ErrCodeEmptyResume,
		resumelensErrors.ErrCodeResumeTooShort,
		resumelensErrors.ErrCodeResumeTooLong,
		resumelensErrors.ErrCodeInvalidIndustry,
	} {
		if strings.HasPrefix(resp.Error, code) {
			return http.StatusBadRequest
		}
	}
	if strings.HasPrefix(resp.Error, resumelensErrors.ErrCodeAnalysisCancelled) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

// getHealthCheckTimeout returns the configured health check timeout
func (s *Server) getHealthCheckTimeout() time.Duration {
	if s.AppConfig != nil && s.AppConfig.Observability.HealthCheck.Timeout > 0 {
		return s.AppConfig.Observability.HealthCheck.Timeout
	}
	return 15 * time.Second
}

// healthHandler provides a health check endpoint including AI model status
// and circuit breaker state for both agents
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status":  "healthy",
		"service": "resumelens",
		"version": s.Version,
	}

	aiStatus := s.checkAIModelsHealth()
	response["ai_models"] = aiStatus

	response["circuit_breakers"] = s.checkCircuitBreakerHealth()

	// Degrade overall status if any model is unavailable
	overallHealthy := true
	for _, modelStatus := range aiStatus {
		if info, ok := modelStatus.(map[string]any); ok {
			if available, ok := info["available"].(bool); ok && !available {
				overallHealthy = false
				break
			}
		}
	}

	if !overallHealthy {
		response["status"] = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode health response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// checkAIModelsHealth checks availability of the models behind both agents
func (s *Server) checkAIModelsHealth() map[string]any {
	timeout := s.getHealthCheckTimeout()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	aiStatus := make(map[string]any)

	if s.StructureService != nil {
		aiStatus["structure"] = modelInfoMap(s.StructureService.GetModelInfo(ctx))
	} else {
		aiStatus["structure"] = map[string]any{"available": false, "error": "structure service not configured"}
	}

	if s.AppealService != nil {
		aiStatus["appeal"] = modelInfoMap(s.AppealService.GetModelInfo(ctx))
	} else {
		aiStatus["appeal"] = map[string]any{"available": false, "error": "appeal service not configured"}
	}

	return aiStatus
}

func modelInfoMap(info any) map[string]any {
	data, err := json.Marshal(info)
	if err != nil {
		return map[string]any{"available": false, "error": err.Error()}
	}
	out := make(map[string]any)
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{"available": false, "error": err.Error()}
	}
	return out
}

// checkCircuitBreakerHealth reports circuit breaker state for both agents
func (s *Server) checkCircuitBreakerHealth() map[string]any {
	status := make(map[string]any)

	if s.StructureService != nil {
		status["structure"] = s.StructureService.Provider.GetCircuitBreakerStats()
	} else {
		status["structure"] = map[string]any{"available": false}
	}

	if s.AppealService != nil {
		status["appeal"] = s.AppealService.Provider.GetCircuitBreakerStats()
	} else {
		status["appeal"] = map[string]any{"available": false}
	}

	return status
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "resumelens",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode stats response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// industriesHandler lists the supported target industries
func (s *Server) industriesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	industries := make([]map[string]string, 0, len(types.SupportedIndustries))
	for _, industry := range types.SupportedIndustries {
		industries = append(industries, map[string]string{
			"code":        string(industry),
			"displayName": industry.DisplayName(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"industries": industries}); err != nil {
		log.Printf("Failed to encode industries response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   error,
		Message: message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode error response: %v", err)
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}
