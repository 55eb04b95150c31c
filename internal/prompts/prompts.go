package prompts

import "regexp"

// Agent identifies which analysis agent a template belongs to
type Agent string

const (
	AgentStructure Agent = "structure"
	AgentAppeal    Agent = "appeal"
)

// Template bundles the system instruction, the user prompt template and the
// parsing rules for one (agent, version) pair. Prompt wording and parsing
// rules are co-versioned: a template that changes how the model labels its
// output ships the matching extraction patterns.
type Template struct {
	Agent    Agent
	Version  string
	Language string

	// System is the system-level instruction sent verbatim.
	System string

	// User is a fmt template. Structure takes two operands (document
	// statistics block, resume text); appeal takes three (industry display
	// name, structure context block, resume text).
	User string

	Rules Rules
}

// Rules carries the deterministic extraction rules for a template's output.
type Rules struct {
	// DefaultScore is substituted when a score pattern does not match.
	DefaultScore float64

	// ScorePatterns maps a score key to ordered regex alternatives. Each
	// pattern captures the numeric value in group 1. The first match wins.
	ScorePatterns map[string][]*regexp.Regexp

	// SectionKeywords maps a feedback category to the lowercase header
	// keywords that open its list in the model output.
	SectionKeywords map[string][]string
}

// Score keys used by the structure agent
const (
	ScoreFormat       = "format"
	ScoreOrganization = "organization"
	ScoreTone         = "tone"
	ScoreCompleteness = "completeness"
)

// Score keys used by the appeal agent
const (
	ScoreAchievementRelevance   = "achievement_relevance"
	ScoreSkillsAlignment        = "skills_alignment"
	ScoreExperienceFit          = "experience_fit"
	ScoreCompetitivePositioning = "competitive_positioning"
)

// Feedback categories used by the structure agent
const (
	SectionIssues           = "issues"
	SectionMissingSections  = "missing_sections"
	SectionToneProblems     = "tone_problems"
	SectionCompletenessGaps = "completeness_gaps"
	SectionStrengths        = "strengths"
	SectionRecommendations  = "recommendations"
)

// Feedback categories used by the appeal agent
const (
	SectionRelevantAchievements  = "relevant_achievements"
	SectionMissingSkills         = "missing_skills"
	SectionTransferableExp       = "transferable_experience"
	SectionIndustryKeywords      = "industry_keywords"
	SectionCompetitiveAdvantages = "competitive_advantages"
	SectionImprovementAreas      = "improvement_areas"
)

// Versions recognized by the registry
const (
	VersionV10 = "v1.0"
	VersionV11 = "v1.1"
)

// SupportedVersions lists the registered template versions, oldest first.
var SupportedVersions = []string{VersionV10, VersionV11}
