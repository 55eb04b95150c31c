package types

import (
	"fmt"
	"strings"
	"time"
)

// Industry identifies the target industry for an appeal analysis.
type Industry string

const (
	IndustryTechConsulting   Industry = "tech_consulting"
	IndustrySystemIntegrator Industry = "system_integrator"
	IndustryFinanceBanking   Industry = "finance_banking"
	IndustryHealthcarePharma Industry = "healthcare_pharma"
	IndustryManufacturing    Industry = "manufacturing"
	IndustryGeneralBusiness  Industry = "general_business"
)

// SupportedIndustries lists every industry code the appeal agent accepts,
// in display order.
var SupportedIndustries = []Industry{
	IndustryTechConsulting,
	IndustrySystemIntegrator,
	IndustryFinanceBanking,
	IndustryHealthcarePharma,
	IndustryManufacturing,
	IndustryGeneralBusiness,
}

var industryDisplayNames = map[Industry]string{
	IndustryTechConsulting:   "Technology Consulting",
	IndustrySystemIntegrator: "System Integration",
	IndustryFinanceBanking:   "Finance & Banking",
	IndustryHealthcarePharma: "Healthcare & Pharmaceuticals",
	IndustryManufacturing:    "Manufacturing",
	IndustryGeneralBusiness:  "General Business",
}

// ParseIndustry normalizes and validates an industry code. Matching is
// case-insensitive; unknown codes return an error.
func ParseIndustry(code string) (Industry, error) {
	normalized := Industry(strings.ToLower(strings.TrimSpace(code)))
	for _, industry := range SupportedIndustries {
		if normalized == industry {
			return industry, nil
		}
	}
	return "", fmt.Errorf("unsupported industry %q (supported: %v)", code, SupportedIndustries)
}

// DisplayName returns the human-readable industry name used in prompts.
func (i Industry) DisplayName() string {
	if name, ok := industryDisplayNames[i]; ok {
		return name
	}
	return string(i)
}

// MarketTier is the coarse seniority classification inferred from the
// appeal analysis.
type MarketTier string

const (
	TierEntry     MarketTier = "entry"
	TierMid       MarketTier = "mid"
	TierSenior    MarketTier = "senior"
	TierExecutive MarketTier = "executive"

	// TierUnknown only appears in failure envelopes, never in a valid AppealResult.
	TierUnknown MarketTier = "unknown"
)

// ValidMarketTier reports whether t is one of the four assessable tiers.
func ValidMarketTier(t MarketTier) bool {
	switch t {
	case TierEntry, TierMid, TierSenior, TierExecutive:
		return true
	}
	return false
}

// StructureScores holds the four industry-agnostic structure scores, each in [0,100].
type StructureScores struct {
	Format       float64 `json:"format"`
	Organization float64 `json:"organization"`
	Tone         float64 `json:"tone"`
	Completeness float64 `json:"completeness"`
}

// Average returns the arithmetic mean of the four scores.
func (s StructureScores) Average() float64 {
	return (s.Format + s.Organization + s.Tone + s.Completeness) / 4
}

// StructureFeedback holds the free-text feedback lists produced by the
// structure agent.
type StructureFeedback struct {
	Issues           []string `json:"issues"`
	MissingSections  []string `json:"missingSections"`
	ToneProblems     []string `json:"toneProblems"`
	CompletenessGaps []string `json:"completenessGaps"`
	Strengths        []string `json:"strengths"`
	Recommendations  []string `json:"recommendations"`
}

// StructureMetadata holds lightweight document statistics derived during
// structure analysis.
type StructureMetadata struct {
	TotalSectionsFound  int `json:"totalSectionsFound"`
	WordCount           int `json:"wordCount"`
	EstimatedReadingMin int `json:"estimatedReadingTimeMinutes"`
}

// StructureResult is the immutable output of one successful structure
// agent invocation.
type StructureResult struct {
	Scores           StructureScores   `json:"scores"`
	Feedback         StructureFeedback `json:"feedback"`
	Metadata         StructureMetadata `json:"metadata"`
	ConfidenceScore  float64           `json:"confidenceScore"`
	ProcessingTimeMS int64             `json:"processingTimeMs"`
	ModelUsed        string            `json:"modelUsed"`
	PromptVersion    string            `json:"promptVersion"`
}

// AppealScores holds the four industry-specific appeal scores, each in [0,100].
type AppealScores struct {
	AchievementRelevance   float64 `json:"achievementRelevance"`
	SkillsAlignment        float64 `json:"skillsAlignment"`
	ExperienceFit          float64 `json:"experienceFit"`
	CompetitivePositioning float64 `json:"competitivePositioning"`
}

// Average returns the arithmetic mean of the four scores.
func (s AppealScores) Average() float64 {
	return (s.AchievementRelevance + s.SkillsAlignment + s.ExperienceFit + s.CompetitivePositioning) / 4
}

// AppealFeedback holds the free-text feedback lists produced by the appeal agent.
type AppealFeedback struct {
	RelevantAchievements   []string `json:"relevantAchievements"`
	MissingSkills          []string `json:"missingSkills"`
	TransferableExperience []string `json:"transferableExperience"`
	IndustryKeywords       []string `json:"industryKeywords"`
	CompetitiveAdvantages  []string `json:"competitiveAdvantages"`
	ImprovementAreas       []string `json:"improvementAreas"`
}

// AppealResult is the immutable output of one successful appeal agent invocation.
type AppealResult struct {
	Scores               AppealScores   `json:"scores"`
	MarketTier           MarketTier     `json:"marketTier"`
	Feedback             AppealFeedback `json:"feedback"`
	StructureContextUsed bool           `json:"structureContextUsed"`
	TargetIndustry       Industry       `json:"targetIndustry"`
	ConfidenceScore      float64        `json:"confidenceScore"`
	ProcessingTimeMS     int64          `json:"processingTimeMs"`
	ModelUsed            string         `json:"modelUsed"`
	PromptVersion        string         `json:"promptVersion"`
}

// ConfidenceMetrics aggregates the per-agent confidence scores of a run.
type ConfidenceMetrics struct {
	StructureConfidence float64 `json:"structureConfidence"`
	AppealConfidence    float64 `json:"appealConfidence"`
	OverallConfidence   float64 `json:"overallConfidence"`
}

// CompleteResult is the terminal artifact of an analysis run, created exactly
// once at aggregation (or at error-path partial completion).
type CompleteResult struct {
	OverallScore         float64           `json:"overallScore"`
	StructureResult      *StructureResult  `json:"structureResult"`
	AppealResult         *AppealResult     `json:"appealResult"`
	AnalysisSummary      string            `json:"analysisSummary"`
	KeyStrengths         []string          `json:"keyStrengths"`
	PriorityImprovements []string          `json:"priorityImprovements"`
	ConfidenceMetrics    ConfidenceMetrics `json:"confidenceMetrics"`
	Industry             Industry          `json:"industry"`
	AnalysisID           string            `json:"analysisId"`
	CompletedAt          time.Time         `json:"completedAt"`
	ProcessingTimeSec    float64           `json:"processingTimeSeconds"`
}

// AnalyzeRequest is the input to the workflow engine.
type AnalyzeRequest struct {
	ResumeText string `json:"resumeText"`
	Industry   string `json:"industry"`
	AnalysisID string `json:"analysisId,omitempty"`
}

// StructureSection groups the structure portion of a response envelope.
type StructureSection struct {
	Scores   *StructureScores   `json:"scores,omitempty"`
	Feedback *StructureFeedback `json:"feedback,omitempty"`
	Metadata *StructureMetadata `json:"metadata,omitempty"`
}

// AppealSection groups the appeal portion of a response envelope.
type AppealSection struct {
	Scores   *AppealScores   `json:"scores,omitempty"`
	Feedback *AppealFeedback `json:"feedback,omitempty"`
}

// AnalyzeResponse is the caller-facing envelope. Callers always receive a
// well-formed envelope, never a raw error.
type AnalyzeResponse struct {
	Success      bool             `json:"success"`
	AnalysisID   string           `json:"analysisId"`
	OverallScore float64          `json:"overallScore"`
	MarketTier   MarketTier       `json:"marketTier"`
	Summary      string           `json:"summary"`
	Structure    StructureSection `json:"structure"`
	Appeal       AppealSection    `json:"appeal"`
	Error        string           `json:"error,omitempty"`

	// Result carries the full nested artifact on success or partial completion.
	Result *CompleteResult `json:"result,omitempty"`
}
