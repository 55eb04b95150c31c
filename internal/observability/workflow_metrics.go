package observability

import (
	"context"
	"time"

	"resumelens/internal/ai"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// WorkflowRecorder adapts the observability metrics to the workflow
// engine's measurement callbacks.
type WorkflowRecorder struct {
	om *ObservabilityManager
}

// WorkflowRecorder returns a recorder suitable for workflow.NewEngine.
func (om *ObservabilityManager) WorkflowRecorder() *WorkflowRecorder {
	return &WorkflowRecorder{om: om}
}

func (r *WorkflowRecorder) workflowMetricsEnabled() bool {
	if r.om.fullConfig == nil {
		return true
	}
	return r.om.fullConfig.Observability.CustomMetrics.Workflow.Enabled
}

// RecordAgentRetry counts one retry of an agent phase.
func (r *WorkflowRecorder) RecordAgentRetry(ctx context.Context, agent string) {
	if !r.workflowMetricsEnabled() {
		return
	}
	if r.om.fullConfig != nil && !r.om.fullConfig.Observability.CustomMetrics.Workflow.TrackRetries {
		return
	}
	if m := r.om.GetMetrics(); m.AgentRetries != nil {
		m.AgentRetries.Add(ctx, 1, metric.WithAttributes(attribute.String("agent", agent)))
	}
}

// RecordConfidence records the confidence score of one agent result.
func (r *WorkflowRecorder) RecordConfidence(ctx context.Context, agent string, confidence float64) {
	if !r.workflowMetricsEnabled() {
		return
	}
	if r.om.fullConfig != nil && !r.om.fullConfig.Observability.CustomMetrics.Workflow.TrackConfidence {
		return
	}
	if m := r.om.GetMetrics(); m.AgentConfidence != nil {
		m.AgentConfidence.Record(ctx, confidence, metric.WithAttributes(attribute.String("agent", agent)))
	}
}

// RecordOutcome counts one finished analysis and its duration. outcome is
// one of "complete", "partial" or "failed".
func (r *WorkflowRecorder) RecordOutcome(ctx context.Context, outcome string, durationSec float64) {
	if !r.workflowMetricsEnabled() {
		return
	}
	m := r.om.GetMetrics()
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	if m.AnalysesTotal != nil {
		m.AnalysesTotal.Add(ctx, 1, attrs)
	}
	if m.AnalysisDuration != nil {
		m.AnalysisDuration.Record(ctx, durationSec, attrs)
	}
}

// instrumentedProvider decorates an ai.Provider with request, duration and
// token-usage metrics.
type instrumentedProvider struct {
	ai.Provider
	agent string
	om    *ObservabilityManager
}

// WrapProvider instruments an AI provider for one agent. When AI operation
// metrics are disabled the provider is returned unchanged.
func (om *ObservabilityManager) WrapProvider(p ai.Provider, agent string) ai.Provider {
	if om.fullConfig != nil && !om.fullConfig.Observability.CustomMetrics.AIOperations.Enabled {
		return p
	}
	return &instrumentedProvider{Provider: p, agent: agent, om: om}
}

func (ip *instrumentedProvider) Complete(ctx context.Context, req ai.CompletionRequest) (string, *ai.TokenUsage, error) {
	m := ip.om.GetMetrics()
	start := time.Now()

	text, usage, err := ip.Provider.Complete(ctx, req)
	duration := time.Since(start).Seconds()

	attrs := []attribute.KeyValue{
		attribute.String("agent", ip.agent),
		attribute.Bool("success", err == nil),
	}

	trackDuration := ip.om.fullConfig == nil || ip.om.fullConfig.Observability.CustomMetrics.AIOperations.TrackDuration
	if trackDuration && m.AIProcessingTime != nil {
		m.AIProcessingTime.Record(ctx, duration, metric.WithAttributes(attrs...))
	}
	if m.AIRequestCount != nil {
		m.AIRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if err != nil && m.AIErrorCount != nil {
		m.AIErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	ip.recordTokenUsage(ctx, usage, attrs)
	return text, usage, err
}

func (ip *instrumentedProvider) recordTokenUsage(ctx context.Context, usage *ai.TokenUsage, attrs []attribute.KeyValue) {
	m := ip.om.GetMetrics()
	if usage == nil || m.AITokenUsage == nil {
		return
	}
	if ip.om.fullConfig != nil && !ip.om.fullConfig.Observability.CustomMetrics.AIOperations.TrackTokenUsage {
		return
	}

	tokenTypes := []struct {
		tokenType string
		value     int64
	}{
		{"input", usage.InputTokens},
		{"output", usage.OutputTokens},
		{"total", usage.TotalTokens},
	}
	for _, tt := range tokenTypes {
		tokenAttrs := append(attrs, attribute.String("token_type", tt.tokenType))
		m.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(tokenAttrs...))
	}
}
