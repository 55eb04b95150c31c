package workflow

import (
	"context"
	"fmt"
	"math"
	"time"

	"resumelens/internal/types"
)

const (
	placeholderScore      = 70.0
	placeholderConfidence = 0.3
	placeholderMarker     = "Analysis incomplete - please retry"

	// Penalty applied to a structure-only partial score
	partialScoreFactor = 0.7
)

// aggregate combines the two validated agent results into the final
// weighted artifact and completes the run.
func (e *Engine) aggregate(state *AnalysisState) {
	sr := state.StructureResult
	ar := state.AppealResult

	structureAvg := sr.Scores.Average()
	appealAvg := ar.Scores.Average()
	overall := round2(e.cfg.StructureWeight*structureAvg + e.cfg.AppealWeight*appealAvg)

	state.FinalResult = &types.CompleteResult{
		OverallScore:         overall,
		StructureResult:      sr,
		AppealResult:         ar,
		AnalysisSummary:      buildSummary(overall, structureAvg, appealAvg, ar.TargetIndustry, ar.MarketTier),
		KeyStrengths:         combineHighlights(sr.Feedback.Strengths, ar.Feedback.CompetitiveAdvantages),
		PriorityImprovements: combineHighlights(sr.Feedback.Recommendations, ar.Feedback.ImprovementAreas),
		ConfidenceMetrics: types.ConfidenceMetrics{
			StructureConfidence: sr.ConfidenceScore,
			AppealConfidence:    ar.ConfidenceScore,
			OverallConfidence:   round2((sr.ConfidenceScore + ar.ConfidenceScore) / 2),
		},
		Industry:          ar.TargetIndustry,
		AnalysisID:        state.AnalysisID,
		CompletedAt:       time.Now().UTC(),
		ProcessingTimeSec: time.Since(state.StartedAt).Seconds(),
	}
	state.CurrentStage = StageComplete
}

// handleError is the terminal error handler. A run with a settled structure
// result degrades to a structure-only partial artifact; otherwise the
// caller gets a bare failure envelope.
func (e *Engine) handleError(ctx context.Context, state *AnalysisState) types.AnalyzeResponse {
	duration := time.Since(state.StartedAt).Seconds()

	if state.StructureResult == nil {
		e.logger.Warn("Analysis failed without a structure result",
			"analysis_id", state.AnalysisID,
			"failure_code", state.FailureCode,
			"structure_errors", state.StructureErrors)
		e.metrics.RecordOutcome(ctx, "failed", duration)
		return types.AnalyzeResponse{
			Success:      false,
			AnalysisID:   state.AnalysisID,
			OverallScore: 0,
			MarketTier:   types.TierUnknown,
			Summary:      "Analysis could not be completed due to an error.",
			Error:        fmt.Sprintf("%s: %s", state.FailureCode, state.FailureMessage),
		}
	}

	sr := state.StructureResult
	structureAvg := sr.Scores.Average()
	overall := round2(structureAvg * partialScoreFactor)
	placeholder := placeholderAppealResult(state.Industry)

	result := &types.CompleteResult{
		OverallScore:         overall,
		StructureResult:      sr,
		AppealResult:         placeholder,
		AnalysisSummary:      buildPartialSummary(overall, structureAvg),
		KeyStrengths:         combineHighlights(sr.Feedback.Strengths, nil),
		PriorityImprovements: combineHighlights(sr.Feedback.Recommendations, nil),
		ConfidenceMetrics: types.ConfidenceMetrics{
			StructureConfidence: sr.ConfidenceScore,
			AppealConfidence:    placeholderConfidence,
			OverallConfidence:   round2((sr.ConfidenceScore + placeholderConfidence) / 2),
		},
		Industry:          state.Industry,
		AnalysisID:        state.AnalysisID,
		CompletedAt:       time.Now().UTC(),
		ProcessingTimeSec: duration,
	}

	e.logger.Warn("Analysis degraded to structure-only partial result",
		"analysis_id", state.AnalysisID,
		"failure_code", state.FailureCode,
		"overall_score", overall,
		"appeal_errors", state.AppealErrors)
	e.metrics.RecordOutcome(ctx, "partial", duration)

	return types.AnalyzeResponse{
		Success:      false,
		AnalysisID:   state.AnalysisID,
		OverallScore: overall,
		MarketTier:   placeholder.MarketTier,
		Summary:      result.AnalysisSummary,
		Structure: types.StructureSection{
			Scores:   &sr.Scores,
			Feedback: &sr.Feedback,
			Metadata: &sr.Metadata,
		},
		Appeal: types.AppealSection{
			Scores:   &placeholder.Scores,
			Feedback: &placeholder.Feedback,
		},
		Error:  fmt.Sprintf("%s: %s", state.FailureCode, state.FailureMessage),
		Result: result,
	}
}

// successEnvelope flattens the final artifact into the caller-facing shape.
func successEnvelope(state *AnalysisState) types.AnalyzeResponse {
	result := state.FinalResult
	return types.AnalyzeResponse{
		Success:      true,
		AnalysisID:   state.AnalysisID,
		OverallScore: result.OverallScore,
		MarketTier:   result.AppealResult.MarketTier,
		Summary:      result.AnalysisSummary,
		Structure: types.StructureSection{
			Scores:   &result.StructureResult.Scores,
			Feedback: &result.StructureResult.Feedback,
			Metadata: &result.StructureResult.Metadata,
		},
		Appeal: types.AppealSection{
			Scores:   &result.AppealResult.Scores,
			Feedback: &result.AppealResult.Feedback,
		},
		Result: result,
	}
}

// placeholderAppealResult stands in for a missing appeal analysis in a
// degraded partial result.
func placeholderAppealResult(industry types.Industry) *types.AppealResult {
	return &types.AppealResult{
		Scores: types.AppealScores{
			AchievementRelevance:   placeholderScore,
			SkillsAlignment:        placeholderScore,
			ExperienceFit:          placeholderScore,
			CompetitivePositioning: placeholderScore,
		},
		MarketTier: types.TierMid,
		Feedback: types.AppealFeedback{
			RelevantAchievements:   []string{placeholderMarker},
			MissingSkills:          []string{},
			TransferableExperience: []string{},
			IndustryKeywords:       []string{},
			CompetitiveAdvantages:  []string{placeholderMarker},
			ImprovementAreas:       []string{placeholderMarker},
		},
		TargetIndustry:  industry,
		ConfidenceScore: placeholderConfidence,
	}
}

// scoreLabel maps a 0-100 score to the qualitative label used in summaries.
func scoreLabel(score float64) string {
	switch {
	case score >= 85:
		return "excellent"
	case score >= 70:
		return "strong"
	case score >= 55:
		return "moderate"
	default:
		return "needs improvement"
	}
}

func buildSummary(overall, structureAvg, appealAvg float64, industry types.Industry, tier types.MarketTier) string {
	return fmt.Sprintf(
		"Overall assessment: %s (%.1f/100). Document structure is %s at %.1f and appeal to the %s industry is %s at %.1f. Estimated market tier: %s.",
		scoreLabel(overall), overall,
		scoreLabel(structureAvg), structureAvg,
		industry.DisplayName(),
		scoreLabel(appealAvg), appealAvg,
		tier)
}

func buildPartialSummary(overall, structureAvg float64) string {
	return fmt.Sprintf(
		"Partial assessment based on document structure only: %s (%.1f/100, structure average %.1f with incompleteness penalty applied). Industry appeal analysis did not complete; please retry for a full evaluation.",
		scoreLabel(overall), overall, structureAvg)
}

// combineHighlights takes up to two items from each source list, then
// backfills from the remainders up to five items total.
func combineHighlights(primary, secondary []string) []string {
	out := make([]string, 0, 5)
	out = append(out, firstN(primary, 2)...)
	out = append(out, firstN(secondary, 2)...)
	for _, rest := range [][]string{afterN(primary, 2), afterN(secondary, 2)} {
		for _, item := range rest {
			if len(out) >= 5 {
				return out
			}
			out = append(out, item)
		}
	}
	return out
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func afterN(items []string, n int) []string {
	if len(items) <= n {
		return nil
	}
	return items[n:]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
