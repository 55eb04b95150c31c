package prompts

import "regexp"

// scorePattern builds the regex alternatives for one labeled score line.
// Models emit variations like "Format: 85", "FORMAT SCORE: 85/100" or
// "**Format**: 85.5"; all resolve to the first captured number.
func scorePattern(labels ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(labels)*2)
	for _, label := range labels {
		patterns = append(patterns,
			regexp.MustCompile(`(?i)\*{0,2}`+label+`\*{0,2}(?:\s+score)?\s*[:=]\s*\*{0,2}\s*(\d{1,3}(?:\.\d+)?)`),
			regexp.MustCompile(`(?i)`+label+`\s*[:=]?\s*(\d{1,3}(?:\.\d+)?)\s*/\s*100`),
		)
	}
	return patterns
}

func structureRules() Rules {
	return Rules{
		DefaultScore: 75.0,
		ScorePatterns: map[string][]*regexp.Regexp{
			ScoreFormat:       scorePattern(`format(?:ting)?`),
			ScoreOrganization: scorePattern(`organi[sz]ation`, `structure`),
			ScoreTone:         scorePattern(`tone`, `professional\s+tone`),
			ScoreCompleteness: scorePattern(`completeness`),
		},
		SectionKeywords: map[string][]string{
			SectionIssues:           {"structure issues", "issues", "problems"},
			SectionMissingSections:  {"missing sections", "missing section"},
			SectionToneProblems:     {"tone problems", "tone issues"},
			SectionCompletenessGaps: {"completeness gaps", "content gaps", "gaps"},
			SectionStrengths:        {"strengths", "strong points"},
			SectionRecommendations:  {"recommendations", "suggestions"},
		},
	}
}

func appealRules() Rules {
	return Rules{
		DefaultScore: 75.0,
		ScorePatterns: map[string][]*regexp.Regexp{
			ScoreAchievementRelevance:   scorePattern(`achievement\s+relevance`, `achievements?`),
			ScoreSkillsAlignment:        scorePattern(`skills?\s+alignment`, `skills?\s+match`),
			ScoreExperienceFit:          scorePattern(`experience\s+fit`, `experience\s+relevance`),
			ScoreCompetitivePositioning: scorePattern(`competitive\s+positioning`, `competitiveness`),
		},
		SectionKeywords: map[string][]string{
			SectionRelevantAchievements:  {"relevant achievements", "key achievements"},
			SectionMissingSkills:         {"missing skills", "skill gaps"},
			SectionTransferableExp:       {"transferable experience", "transferable skills"},
			SectionIndustryKeywords:      {"industry keywords", "keywords"},
			SectionCompetitiveAdvantages: {"competitive advantages", "advantages"},
			SectionImprovementAreas:      {"improvement areas", "areas for improvement"},
		},
	}
}
