package agents

import (
	"regexp"
	"strings"

	"resumelens/internal/types"
)

// IndustryProfile carries the vocabulary the appeal agent uses for one
// target industry: skills the industry values, achievement phrasing that
// signals relevance, and keywords for the confidence heuristic.
type IndustryProfile struct {
	Industry        types.Industry
	KeySkills       []string
	AchievementCues []string
}

var industryProfiles = map[types.Industry]IndustryProfile{
	types.IndustryTechConsulting: {
		Industry: types.IndustryTechConsulting,
		KeySkills: []string{
			"cloud", "architecture", "agile", "stakeholder management",
			"digital transformation", "data analytics", "devops",
		},
		AchievementCues: []string{
			"delivered", "migrated", "optimized", "automated", "scaled",
		},
	},
	types.IndustrySystemIntegrator: {
		Industry: types.IndustrySystemIntegrator,
		KeySkills: []string{
			"integration", "erp", "sap", "infrastructure", "deployment",
			"vendor management", "requirements definition",
		},
		AchievementCues: []string{
			"implemented", "integrated", "deployed", "maintained", "launched",
		},
	},
	types.IndustryFinanceBanking: {
		Industry: types.IndustryFinanceBanking,
		KeySkills: []string{
			"compliance", "risk management", "regulatory", "audit",
			"portfolio", "trading", "financial modeling",
		},
		AchievementCues: []string{
			"reduced risk", "managed portfolio", "ensured compliance", "audited",
		},
	},
	types.IndustryHealthcarePharma: {
		Industry: types.IndustryHealthcarePharma,
		KeySkills: []string{
			"clinical", "regulatory affairs", "gcp", "pharmacovigilance",
			"quality assurance", "patient", "validation",
		},
		AchievementCues: []string{
			"approved", "submitted", "validated", "conducted trials",
		},
	},
	types.IndustryManufacturing: {
		Industry: types.IndustryManufacturing,
		KeySkills: []string{
			"lean", "six sigma", "supply chain", "quality control",
			"kaizen", "production planning", "process improvement",
		},
		AchievementCues: []string{
			"reduced cost", "improved yield", "streamlined", "increased output",
		},
	},
	types.IndustryGeneralBusiness: {
		Industry: types.IndustryGeneralBusiness,
		KeySkills: []string{
			"leadership", "communication", "project management",
			"analysis", "negotiation", "teamwork",
		},
		AchievementCues: []string{
			"led", "managed", "improved", "achieved", "coordinated",
		},
	},
}

// ProfileFor returns the industry profile, falling back to general_business
// for unrecognized codes.
func ProfileFor(industry types.Industry) IndustryProfile {
	if profile, ok := industryProfiles[industry]; ok {
		return profile
	}
	return industryProfiles[types.IndustryGeneralBusiness]
}

// tierKeywords lists the indicator families for each market tier, checked
// most senior first so a "senior consultant" resume is not classified by an
// incidental "entry" mention.
var tierKeywords = []struct {
	tier     types.MarketTier
	keywords []string
}{
	{types.TierExecutive, []string{"executive", "director", "vice president", "vp", "chief", "c-level", "head of"}},
	{types.TierSenior, []string{"senior", "lead", "principal", "staff engineer", "expert"}},
	{types.TierMid, []string{"mid-level", "mid level", "experienced", "specialist", "professional"}},
	{types.TierEntry, []string{"entry", "junior", "associate", "graduate", "entry-level"}},
}

var tierLineRe = regexp.MustCompile(`(?i)market\s+tier(?:\s+assessment)?\s*[:=\-]?\s*\**\s*([a-z][a-z\- ]*)`)

// Tier detection quality, fed into the appeal confidence blend.
const (
	tierFactorExplicit  = 1.0
	tierFactorInferred  = 0.6
	tierFactorDefaulted = 0.3
)

// detectMarketTier runs the two-stage tier heuristic: first the explicit
// labeled line or tier keywords in the raw output, then the extracted
// achievements text, defaulting to entry. The factor reports how the tier
// was determined.
func detectMarketTier(raw string, achievements []string) (types.MarketTier, float64) {
	if m := tierLineRe.FindStringSubmatch(raw); m != nil {
		if tier, ok := tierFromText(m[1]); ok {
			return tier, tierFactorExplicit
		}
	}
	if tier, ok := tierFromText(raw); ok {
		return tier, tierFactorExplicit
	}
	if tier, ok := tierFromText(strings.Join(achievements, " ")); ok {
		return tier, tierFactorInferred
	}
	return types.TierEntry, tierFactorDefaulted
}

// tierFromText returns the first tier whose keyword family matches.
func tierFromText(text string) (types.MarketTier, bool) {
	lowered := strings.ToLower(text)
	for _, family := range tierKeywords {
		for _, keyword := range family.keywords {
			if strings.Contains(lowered, keyword) {
				return family.tier, true
			}
		}
	}
	return "", false
}
