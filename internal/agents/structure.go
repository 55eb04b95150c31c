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

// StructureAgent runs the industry-agnostic document quality pass: it scores
// formatting, organization, tone and completeness from a single completion
// call and extracts the free-text feedback lists.
type StructureAgent struct {
	provider ai.Provider
	registry *prompts.Registry
	version  string
	model    string
	logger   *errors.Logger
}

// NewStructureAgent creates a structure agent bound to one prompt version.
func NewStructureAgent(provider ai.Provider, registry *prompts.Registry, version, model string, logger *errors.Logger) *StructureAgent {
	return &StructureAgent{
		provider: provider,
		registry: registry,
		version:  version,
		model:    model,
		logger:   logger,
	}
}

// Analyze runs one structure analysis. Only the LLM call can fail; parse
// problems degrade to defaults and are reflected in the confidence score.
func (a *StructureAgent) Analyze(ctx context.Context, resumeText, analysisID string) (*types.StructureResult, error) {
	start := time.Now()

	tmpl, err := a.registry.Get(prompts.AgentStructure, a.version)
	if err != nil {
		return nil, err
	}

	words := wordCount(resumeText)
	sectionNames, sectionCount := detectSections(resumeText)
	readingMin := readingTimeMinutes(words)

	stats := fmt.Sprintf("- Word count: %d\n- Detected sections (%d): %s\n- Estimated reading time: %d minute(s)",
		words, sectionCount, strings.Join(sectionNames, ", "), readingMin)
	userPrompt := fmt.Sprintf(tmpl.User, stats, resumeText)

	raw, _, err := a.provider.Complete(ctx, ai.CompletionRequest{
		SystemPrompt: tmpl.System,
		UserPrompt:   userPrompt,
	})
	if err != nil {
		return nil, err
	}

	outcome := ParseStructureResponse(raw, tmpl.Rules)
	if outcome.Degraded {
		a.logger.Warn("Structure response parsing degraded to defaults",
			"analysis_id", analysisID,
			"reason", outcome.Reason,
			"response_length", len(raw))
	}

	result := outcome.Result
	result.Metadata = types.StructureMetadata{
		TotalSectionsFound:  sectionCount,
		WordCount:           words,
		EstimatedReadingMin: readingMin,
	}
	result.ProcessingTimeMS = time.Since(start).Milliseconds()
	result.ModelUsed = a.model
	result.PromptVersion = a.version

	a.logger.Debug("Structure analysis completed",
		"analysis_id", analysisID,
		"confidence", result.ConfidenceScore,
		"degraded", outcome.Degraded,
		"processing_time_ms", result.ProcessingTimeMS)

	return &result, nil
}

// ParseStructureResponse turns raw model output into a StructureResult.
// Deterministic for fixed input. An unusable response yields a degraded
// result instead of an error.
func ParseStructureResponse(raw string, rules prompts.Rules) (outcome ParseOutcome[types.StructureResult]) {
	defer func() {
		if r := recover(); r != nil {
			outcome = ParseOutcome[types.StructureResult]{
				Result:   degradedStructureResult(),
				Degraded: true,
				Reason:   fmt.Sprintf("parse panic: %v", r),
			}
		}
	}()

	if strings.TrimSpace(raw) == "" {
		return ParseOutcome[types.StructureResult]{
			Result:   degradedStructureResult(),
			Degraded: true,
			Reason:   "empty response",
		}
	}

	scores, matched := extractScores(raw, rules, []string{
		prompts.ScoreFormat,
		prompts.ScoreOrganization,
		prompts.ScoreTone,
		prompts.ScoreCompleteness,
	})
	sections := extractSections(raw, rules.SectionKeywords)

	items := totalItems(sections)
	if matched == 0 && items == 0 {
		return ParseOutcome[types.StructureResult]{
			Result:   degradedStructureResult(),
			Degraded: true,
			Reason:   "no scores or feedback sections recognized",
		}
	}

	result := types.StructureResult{
		Scores: types.StructureScores{
			Format:       scores[prompts.ScoreFormat],
			Organization: scores[prompts.ScoreOrganization],
			Tone:         scores[prompts.ScoreTone],
			Completeness: scores[prompts.ScoreCompleteness],
		},
		Feedback: types.StructureFeedback{
			Issues:           sections[prompts.SectionIssues],
			MissingSections:  sections[prompts.SectionMissingSections],
			ToneProblems:     sections[prompts.SectionToneProblems],
			CompletenessGaps: sections[prompts.SectionCompletenessGaps],
			Strengths:        sections[prompts.SectionStrengths],
			Recommendations:  sections[prompts.SectionRecommendations],
		},
	}

	problemCount := len(result.Feedback.Issues) +
		len(result.Feedback.ToneProblems) +
		len(result.Feedback.CompletenessGaps)

	result.ConfidenceScore = clampConfidence(
		0.25*scoreValidityRatio(matched, 4) +
			0.25*feedbackCompleteness(items) +
			0.30*outputStructureFactor(raw, []string{"format", "organization", "tone", "completeness"}) +
			0.20*consistencyFactor(result.Scores.Average(), problemCount))

	return ParseOutcome[types.StructureResult]{Result: result}
}

// degradedStructureResult is the fallback when the model output cannot be
// parsed at all.
func degradedStructureResult() types.StructureResult {
	return types.StructureResult{
		Scores: types.StructureScores{
			Format:       degradedScore,
			Organization: degradedScore,
			Tone:         degradedScore,
			Completeness: degradedScore,
		},
		Feedback: types.StructureFeedback{
			Issues:           []string{degradedMarker},
			MissingSections:  []string{},
			ToneProblems:     []string{},
			CompletenessGaps: []string{},
			Strengths:        []string{degradedMarker},
			Recommendations:  []string{degradedMarker},
		},
		ConfidenceScore: degradedConfidence,
	}
}
