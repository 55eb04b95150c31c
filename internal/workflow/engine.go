package workflow

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resumelens/internal/config"
	"resumelens/internal/errors"
	"resumelens/internal/types"
)

// StructureAnalyzer runs one structure analysis pass.
type StructureAnalyzer interface {
	Analyze(ctx context.Context, resumeText, analysisID string) (*types.StructureResult, error)
}

// AppealAnalyzer runs one appeal analysis pass. structureContext may be nil.
type AppealAnalyzer interface {
	Analyze(ctx context.Context, resumeText string, industry types.Industry, analysisID string, structureContext *types.StructureResult) (*types.AppealResult, error)
}

// Metrics receives workflow-level measurement callbacks. Implementations
// must be safe for concurrent use.
type Metrics interface {
	RecordAgentRetry(ctx context.Context, agent string)
	RecordConfidence(ctx context.Context, agent string, confidence float64)
	RecordOutcome(ctx context.Context, outcome string, durationSec float64)
}

type nopMetrics struct{}

func (nopMetrics) RecordAgentRetry(context.Context, string)          {}
func (nopMetrics) RecordConfidence(context.Context, string, float64) {}
func (nopMetrics) RecordOutcome(context.Context, string, float64)    {}

// Engine drives the analysis state machine: preprocessing, the two agent
// phases with confidence-gated validation and per-phase retry budgets, and
// final aggregation. Engines are stateless across runs and safe for
// concurrent use.
type Engine struct {
	structure StructureAnalyzer
	appeal    AppealAnalyzer
	cfg       config.AnalysisConfig
	logger    *errors.Logger
	metrics   Metrics
}

// NewEngine creates a workflow engine. metrics may be nil.
func NewEngine(structure StructureAnalyzer, appeal AppealAnalyzer, cfg config.AnalysisConfig, logger *errors.Logger, metrics Metrics) *Engine {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Engine{
		structure: structure,
		appeal:    appeal,
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
	}
}

// Analyze runs one complete analysis. It never returns a raw error; every
// outcome, including failure, is delivered as a well-formed envelope.
func (e *Engine) Analyze(ctx context.Context, req types.AnalyzeRequest) types.AnalyzeResponse {
	analysisID := strings.TrimSpace(req.AnalysisID)
	if analysisID == "" {
		analysisID = uuid.NewString()
	}

	if e.cfg.OverallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.OverallTimeout)
		defer cancel()
	}

	tracer := otel.Tracer("resumelens.workflow")
	ctx, span := tracer.Start(ctx, "workflow.analyze")
	defer span.End()
	span.SetAttributes(
		attribute.String("analysis.id", analysisID),
		attribute.String("analysis.industry", req.Industry),
		attribute.Int("request.resume_length", len(req.ResumeText)),
	)

	state := newAnalysisState(analysisID, req.ResumeText, e.cfg.MaxRetries)
	state.Industry = types.Industry(strings.ToLower(strings.TrimSpace(req.Industry)))

	for {
		switch state.CurrentStage {
		case StagePreprocessing:
			e.preprocess(state, req.Industry)
		case StageStructureAnalysis:
			e.runStructureAgent(ctx, state)
		case StageStructureValidation:
			e.validateStructure(ctx, state)
		case StageAppealAnalysis:
			e.runAppealAgent(ctx, state)
		case StageAppealValidation:
			e.validateAppeal(ctx, state)
		case StageAggregation:
			e.aggregate(state)
		case StageComplete:
			span.SetAttributes(attribute.Bool("success", true))
			e.metrics.RecordOutcome(ctx, "complete", state.FinalResult.ProcessingTimeSec)
			return successEnvelope(state)
		case StageError:
			span.SetAttributes(
				attribute.Bool("success", false),
				attribute.String("failure.code", state.FailureCode),
			)
			return e.handleError(ctx, state)
		default:
			state.fail(errors.ErrCodeInvalidRequest, fmt.Sprintf("unknown stage %q", state.CurrentStage))
		}
	}
}

var controlCharRe = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)

// cleanResumeText normalizes line endings, strips control characters,
// trims trailing whitespace per line and collapses runs of blank lines.
func cleanResumeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = controlCharRe.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	blankRun := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blankRun++
			if blankRun > 1 {
				continue
			}
		} else {
			blankRun = 0
		}
		cleaned = append(cleaned, line)
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

// preprocess validates and cleans the input. Any violation is fatal; no
// LLM call happens for invalid input.
func (e *Engine) preprocess(state *AnalysisState, rawIndustry string) {
	cleaned := cleanResumeText(state.ResumeText)

	if cleaned == "" {
		state.fail(errors.ErrCodeEmptyResume, "resume text is empty")
		return
	}

	chars := utf8.RuneCountInString(cleaned)
	if chars < e.cfg.MinResumeChars {
		state.fail(errors.ErrCodeResumeTooShort,
			fmt.Sprintf("resume text has %d characters, minimum is %d", chars, e.cfg.MinResumeChars))
		return
	}
	if chars > e.cfg.MaxResumeChars {
		state.fail(errors.ErrCodeResumeTooLong,
			fmt.Sprintf("resume text has %d characters, maximum is %d", chars, e.cfg.MaxResumeChars))
		return
	}

	industry, err := types.ParseIndustry(rawIndustry)
	if err != nil {
		state.fail(errors.ErrCodeInvalidIndustry, err.Error())
		return
	}

	state.ResumeText = cleaned
	state.Industry = industry
	state.RetryCount = 0
	state.CurrentStage = StageStructureAnalysis
}

// runStructureAgent invokes the structure agent. LLM failures consume the
// phase retry budget; the appeal phase gets a fresh budget later.
func (e *Engine) runStructureAgent(ctx context.Context, state *AnalysisState) {
	if ctx.Err() != nil {
		state.fail(errors.ErrCodeAnalysisCancelled, "analysis cancelled before structure phase")
		return
	}

	result, err := e.structure.Analyze(ctx, state.ResumeText, state.AnalysisID)
	if err != nil {
		state.StructureErrors = append(state.StructureErrors, err.Error())
		e.logger.LogError(err, "Structure agent invocation failed",
			"analysis_id", state.AnalysisID,
			"attempt", state.RetryCount+1)
		e.retryOrFail(ctx, state, "structure", StageStructureAnalysis)
		return
	}

	state.StructureResult = result
	state.CurrentStage = StageStructureValidation
}

// validateStructure gates the structure result on the confidence threshold
// and on structural completeness. Structural failures are immediately
// fatal; only low confidence consumes retry budget.
func (e *Engine) validateStructure(ctx context.Context, state *AnalysisState) {
	sr := state.StructureResult
	if sr == nil {
		state.StructureErrors = append(state.StructureErrors, "structure result missing after analysis")
		e.retryOrFail(ctx, state, "structure", StageStructureAnalysis)
		return
	}

	if err := validateStructureShape(sr); err != nil {
		state.StructureResult = nil
		state.StructureErrors = append(state.StructureErrors, err.Error())
		state.fail(errors.ErrCodeResultValidationFailed, err.Error())
		return
	}

	e.metrics.RecordConfidence(ctx, "structure", sr.ConfidenceScore)
	if sr.ConfidenceScore < e.cfg.StructureConfidenceThreshold {
		state.StructureErrors = append(state.StructureErrors,
			fmt.Sprintf("structure confidence %.2f below threshold %.2f",
				sr.ConfidenceScore, e.cfg.StructureConfidenceThreshold))
		e.retryOrFail(ctx, state, "structure", StageStructureAnalysis)
		return
	}

	// Fresh retry budget for the appeal phase
	state.StructureErrors = []string{}
	state.RetryCount = 0
	state.CurrentStage = StageAppealAnalysis
}

// runAppealAgent invokes the appeal agent with the validated structure
// result as context. The structure result is always fully settled before
// this stage is reachable.
func (e *Engine) runAppealAgent(ctx context.Context, state *AnalysisState) {
	if ctx.Err() != nil {
		state.fail(errors.ErrCodeAnalysisCancelled, "analysis cancelled before appeal phase")
		return
	}

	result, err := e.appeal.Analyze(ctx, state.ResumeText, state.Industry, state.AnalysisID, state.StructureResult)
	if err != nil {
		state.AppealErrors = append(state.AppealErrors, err.Error())
		e.logger.LogError(err, "Appeal agent invocation failed",
			"analysis_id", state.AnalysisID,
			"attempt", state.RetryCount+1)
		e.retryOrFail(ctx, state, "appeal", StageAppealAnalysis)
		return
	}

	state.AppealResult = result
	state.CurrentStage = StageAppealValidation
}

// validateAppeal mirrors validateStructure with the appeal threshold and
// error bucket.
func (e *Engine) validateAppeal(ctx context.Context, state *AnalysisState) {
	ar := state.AppealResult
	if ar == nil {
		state.AppealErrors = append(state.AppealErrors, "appeal result missing after analysis")
		e.retryOrFail(ctx, state, "appeal", StageAppealAnalysis)
		return
	}

	if err := validateAppealShape(ar); err != nil {
		state.AppealResult = nil
		state.AppealErrors = append(state.AppealErrors, err.Error())
		state.fail(errors.ErrCodeResultValidationFailed, err.Error())
		return
	}

	e.metrics.RecordConfidence(ctx, "appeal", ar.ConfidenceScore)
	if ar.ConfidenceScore < e.cfg.AppealConfidenceThreshold {
		state.AppealErrors = append(state.AppealErrors,
			fmt.Sprintf("appeal confidence %.2f below threshold %.2f",
				ar.ConfidenceScore, e.cfg.AppealConfidenceThreshold))
		// A low-confidence retry discards the previous attempt
		state.AppealResult = nil
		e.retryOrFail(ctx, state, "appeal", StageAppealAnalysis)
		return
	}

	state.AppealErrors = []string{}
	state.CurrentStage = StageAggregation
}

// retryOrFail applies the phase retry budget: with budget remaining the
// run loops back to retryStage, otherwise it routes to the error handler.
// Retries reissue the identical prompt; no feedback about the previous
// attempt is carried forward.
func (e *Engine) retryOrFail(ctx context.Context, state *AnalysisState, agent string, retryStage Stage) {
	if state.RetryCount < state.MaxRetries {
		state.RetryCount++
		e.metrics.RecordAgentRetry(ctx, agent)
		e.logger.Warn("Retrying agent phase",
			"analysis_id", state.AnalysisID,
			"agent", agent,
			"retry", state.RetryCount,
			"max_retries", state.MaxRetries)
		state.CurrentStage = retryStage
		return
	}
	state.fail(errors.ErrCodeRetryBudgetExhausted,
		fmt.Sprintf("%s phase failed after %d attempts", agent, state.MaxRetries+1))
}

// validateStructureShape checks structural completeness of a structure
// result. Violations are unfixable by retry.
func validateStructureShape(sr *types.StructureResult) error {
	scores := map[string]float64{
		"format":       sr.Scores.Format,
		"organization": sr.Scores.Organization,
		"tone":         sr.Scores.Tone,
		"completeness": sr.Scores.Completeness,
	}
	for name, score := range scores {
		if score < 0 || score > 100 {
			return fmt.Errorf("structure score %s out of range: %v", name, score)
		}
	}
	lists := map[string][]string{
		"issues":          sr.Feedback.Issues,
		"strengths":       sr.Feedback.Strengths,
		"recommendations": sr.Feedback.Recommendations,
	}
	for name, list := range lists {
		if list == nil {
			return fmt.Errorf("structure feedback list %s is missing", name)
		}
	}
	return nil
}

// validateAppealShape checks structural completeness of an appeal result.
func validateAppealShape(ar *types.AppealResult) error {
	scores := map[string]float64{
		"achievementRelevance":   ar.Scores.AchievementRelevance,
		"skillsAlignment":        ar.Scores.SkillsAlignment,
		"experienceFit":          ar.Scores.ExperienceFit,
		"competitivePositioning": ar.Scores.CompetitivePositioning,
	}
	for name, score := range scores {
		if score < 0 || score > 100 {
			return fmt.Errorf("appeal score %s out of range: %v", name, score)
		}
	}
	if !types.ValidMarketTier(ar.MarketTier) {
		return fmt.Errorf("invalid market tier: %q", ar.MarketTier)
	}
	if ar.Feedback.RelevantAchievements == nil || ar.Feedback.ImprovementAreas == nil {
		return fmt.Errorf("appeal feedback lists are missing")
	}
	return nil
}
