package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resumelens/internal/ai"
	"resumelens/internal/errors"
	"resumelens/internal/prompts"
	"resumelens/internal/types"
)

// AppealAgent runs the industry-specific pass: it scores how well the resume
// appeals to the target industry, classifies the candidate's market tier and
// extracts the feedback lists. The structure agent's output is optional
// context; the agent works correctly without it.
type AppealAgent struct {
	provider ai.Provider
	registry *prompts.Registry
	version  string
	model    string
	logger   *errors.Logger
}

// NewAppealAgent creates an appeal agent bound to one prompt version.
func NewAppealAgent(provider ai.Provider, registry *prompts.Registry, version, model string, logger *errors.Logger) *AppealAgent {
	return &AppealAgent{
		provider: provider,
		registry: registry,
		version:  version,
		model:    model,
		logger:   logger,
	}
}

// Analyze runs one appeal analysis. structureContext may be nil; the prompt
// then omits the context block entirely and the result records that no
// context was used.
func (a *AppealAgent) Analyze(ctx context.Context, resumeText string, industry types.Industry, analysisID string, structureContext *types.StructureResult) (*types.AppealResult, error) {
	start := time.Now()

	tmpl, err := a.registry.Get(prompts.AgentAppeal, a.version)
	if err != nil {
		return nil, err
	}

	profile := ProfileFor(industry)
	systemPrompt := fmt.Sprintf("%s\n\nTarget industry: %s. Skills this industry values include: %s.",
		tmpl.System, industry.DisplayName(), strings.Join(profile.KeySkills, ", "))

	contextBlock := ""
	if structureContext != nil {
		contextBlock = buildStructureContext(structureContext)
	}
	userPrompt := fmt.Sprintf(tmpl.User, industry.DisplayName(), contextBlock, resumeText)

	raw, _, err := a.provider.Complete(ctx, ai.CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
	})
	if err != nil {
		return nil, err
	}

	outcome := ParseAppealResponse(raw, tmpl.Rules, industry, profile)
	if outcome.Degraded {
		a.logger.Warn("Appeal response parsing degraded to defaults",
			"analysis_id", analysisID,
			"industry", industry,
			"reason", outcome.Reason,
			"response_length", len(raw))
	}

	result := outcome.Result
	result.StructureContextUsed = structureContext != nil
	result.ProcessingTimeMS = time.Since(start).Milliseconds()
	result.ModelUsed = a.model
	result.PromptVersion = a.version

	a.logger.Debug("Appeal analysis completed",
		"analysis_id", analysisID,
		"industry", industry,
		"market_tier", result.MarketTier,
		"confidence", result.ConfidenceScore,
		"degraded", outcome.Degraded,
		"processing_time_ms", result.ProcessingTimeMS)

	return &result, nil
}

// buildStructureContext formats the short context block injected into the
// appeal prompt when a structure result is available.
func buildStructureContext(sr *types.StructureResult) string {
	var b strings.Builder
	b.WriteString("**Structural review context:**\n")
	fmt.Fprintf(&b, "- Structure quality average: %.1f/100\n", sr.Scores.Average())
	fmt.Fprintf(&b, "- Sections found: %d\n", sr.Metadata.TotalSectionsFound)
	if len(sr.Feedback.Strengths) > 0 {
		fmt.Fprintf(&b, "- Top strengths: %s\n", strings.Join(topN(sr.Feedback.Strengths, 3), "; "))
	}
	if len(sr.Feedback.Recommendations) > 0 {
		fmt.Fprintf(&b, "- Top recommendations: %s\n", strings.Join(topN(sr.Feedback.Recommendations, 2), "; "))
	}
	return strings.TrimRight(b.String(), "\n")
}

// topN returns the first n items of a list.
func topN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

// ParseAppealResponse turns raw model output into an AppealResult.
// Deterministic for fixed input; unusable responses degrade to defaults.
func ParseAppealResponse(raw string, rules prompts.Rules, industry types.Industry, profile IndustryProfile) (outcome ParseOutcome[types.AppealResult]) {
	defer func() {
		if r := recover(); r != nil {
			outcome = ParseOutcome[types.AppealResult]{
				Result:   degradedAppealResult(industry),
				Degraded: true,
				Reason:   fmt.Sprintf("parse panic: %v", r),
			}
		}
	}()

	if strings.TrimSpace(raw) == "" {
		return ParseOutcome[types.AppealResult]{
			Result:   degradedAppealResult(industry),
			Degraded: true,
			Reason:   "empty response",
		}
	}

	scores, matched := extractScores(raw, rules, []string{
		prompts.ScoreAchievementRelevance,
		prompts.ScoreSkillsAlignment,
		prompts.ScoreExperienceFit,
		prompts.ScoreCompetitivePositioning,
	})
	sections := extractSections(raw, rules.SectionKeywords)

	items := totalItems(sections)
	if matched == 0 && items == 0 {
		return ParseOutcome[types.AppealResult]{
			Result:   degradedAppealResult(industry),
			Degraded: true,
			Reason:   "no scores or feedback sections recognized",
		}
	}

	tier, tierFactor := detectMarketTier(raw, sections[prompts.SectionRelevantAchievements])

	result := types.AppealResult{
		Scores: types.AppealScores{
			AchievementRelevance:   scores[prompts.ScoreAchievementRelevance],
			SkillsAlignment:        scores[prompts.ScoreSkillsAlignment],
			ExperienceFit:          scores[prompts.ScoreExperienceFit],
			CompetitivePositioning: scores[prompts.ScoreCompetitivePositioning],
		},
		MarketTier: tier,
		Feedback: types.AppealFeedback{
			RelevantAchievements:   sections[prompts.SectionRelevantAchievements],
			MissingSkills:          sections[prompts.SectionMissingSkills],
			TransferableExperience: sections[prompts.SectionTransferableExp],
			IndustryKeywords:       sections[prompts.SectionIndustryKeywords],
			CompetitiveAdvantages:  sections[prompts.SectionCompetitiveAdvantages],
			ImprovementAreas:       sections[prompts.SectionImprovementAreas],
		},
		TargetIndustry: industry,
	}

	result.ConfidenceScore = clampConfidence(
		0.25*scoreValidityRatio(matched, 4) +
			0.25*feedbackCompleteness(items) +
			0.20*keywordPresenceFactor(raw, profile.KeySkills) +
			0.10*tierFactor +
			0.20*outputStructureFactor(raw, []string{"relevance", "alignment", "fit", "positioning"}))

	return ParseOutcome[types.AppealResult]{Result: result}
}

// degradedAppealResult is the fallback when the model output cannot be
// parsed at all.
func degradedAppealResult(industry types.Industry) types.AppealResult {
	return types.AppealResult{
		Scores: types.AppealScores{
			AchievementRelevance:   degradedScore,
			SkillsAlignment:        degradedScore,
			ExperienceFit:          degradedScore,
			CompetitivePositioning: degradedScore,
		},
		MarketTier: types.TierMid,
		Feedback: types.AppealFeedback{
			RelevantAchievements:   []string{degradedMarker},
			MissingSkills:          []string{},
			TransferableExperience: []string{},
			IndustryKeywords:       []string{},
			CompetitiveAdvantages:  []string{degradedMarker},
			ImprovementAreas:       []string{degradedMarker},
		},
		TargetIndustry:  industry,
		ConfidenceScore: degradedConfidence,
	}
}
