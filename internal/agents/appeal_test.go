package agents

import (
	"context"
	"strings"
	"testing"

	"resumelens/internal/prompts"
	"resumelens/internal/types"
)

const sampleAppealOutput = `ACHIEVEMENT RELEVANCE: 82
SKILLS ALIGNMENT: 75
EXPERIENCE FIT: 80
COMPETITIVE POSITIONING: 68

MARKET TIER: senior

RELEVANT ACHIEVEMENTS
- Led migration of core platform to cloud infrastructure
- Delivered digital transformation program across three business units

MISSING SKILLS
- No agile certification mentioned

TRANSFERABLE EXPERIENCE
- Vendor management from a prior integration role

INDUSTRY KEYWORDS
- cloud
- architecture

COMPETITIVE ADVANTAGES
- Deep stakeholder management experience

IMPROVEMENT AREAS
- Quantify outcomes with metrics`

func TestAppealAgentWithStructureContext(t *testing.T) {
	provider := &fakeProvider{response: sampleAppealOutput}
	agent := NewAppealAgent(provider, testRegistry(t), prompts.VersionV11, "gemini-2.0-flash", testLogger())

	structureResult := &types.StructureResult{
		Scores: types.StructureScores{Format: 80, Organization: 85, Tone: 75, Completeness: 82},
		Feedback: types.StructureFeedback{
			Strengths:       []string{"Clear ordering", "Strong verbs", "Good sections", "Extra strength"},
			Recommendations: []string{"Add summary", "Fix dates", "Trim length"},
		},
		Metadata: types.StructureMetadata{TotalSectionsFound: 5},
	}

	result, err := agent.Analyze(context.Background(), testResume, types.IndustryTechConsulting, "test-id", structureResult)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if !result.StructureContextUsed {
		t.Error("expected StructureContextUsed=true with context present")
	}
	if result.TargetIndustry != types.IndustryTechConsulting {
		t.Errorf("expected target industry echoed, got %s", result.TargetIndustry)
	}
	if result.MarketTier != types.TierSenior {
		t.Errorf("expected senior tier from explicit label, got %s", result.MarketTier)
	}

	// Context block limited to top-3 strengths and top-2 recommendations
	if !strings.Contains(provider.lastUser, "Structural review context") {
		t.Error("context block missing from user prompt")
	}
	if strings.Contains(provider.lastUser, "Extra strength") {
		t.Error("context block should cap strengths at 3")
	}
	if strings.Contains(provider.lastUser, "Trim length") {
		t.Error("context block should cap recommendations at 2")
	}

	// Industry display name lands in both prompts
	if !strings.Contains(provider.lastSystem, "Technology Consulting") {
		t.Error("industry display name missing from system prompt")
	}
	if !strings.Contains(provider.lastUser, "Technology Consulting") {
		t.Error("industry display name missing from user prompt")
	}
}

func TestAppealAgentWithoutStructureContext(t *testing.T) {
	provider := &fakeProvider{response: sampleAppealOutput}
	agent := NewAppealAgent(provider, testRegistry(t), prompts.VersionV11, "gemini-2.0-flash", testLogger())

	result, err := agent.Analyze(context.Background(), testResume, types.IndustryFinanceBanking, "test-id", nil)
	if err != nil {
		t.Fatalf("Analyze without context failed: %v", err)
	}

	if result.StructureContextUsed {
		t.Error("expected StructureContextUsed=false without context")
	}
	if strings.Contains(provider.lastUser, "Structural review context") {
		t.Error("context block should be omitted entirely when no context exists")
	}
	if !types.ValidMarketTier(result.MarketTier) {
		t.Errorf("invalid market tier: %s", result.MarketTier)
	}
}

func TestParseAppealResponseScores(t *testing.T) {
	rules := appealRulesForTest()
	profile := ProfileFor(types.IndustryTechConsulting)

	outcome := ParseAppealResponse(sampleAppealOutput, rules, types.IndustryTechConsulting, profile)
	if outcome.Degraded {
		t.Fatal("expected full parse")
	}

	s := outcome.Result.Scores
	if s.AchievementRelevance != 82 || s.SkillsAlignment != 75 ||
		s.ExperienceFit != 80 || s.CompetitivePositioning != 68 {
		t.Errorf("unexpected appeal scores: %+v", s)
	}
	if len(outcome.Result.Feedback.RelevantAchievements) != 2 {
		t.Errorf("expected 2 achievements, got %v", outcome.Result.Feedback.RelevantAchievements)
	}
	c := outcome.Result.ConfidenceScore
	if c < 0.3 || c > 1.0 {
		t.Errorf("confidence %v out of [0.3,1.0]", c)
	}
}

func TestParseAppealResponseDegraded(t *testing.T) {
	rules := appealRulesForTest()
	profile := ProfileFor(types.IndustryManufacturing)

	outcome := ParseAppealResponse("completely unrelated text", rules, types.IndustryManufacturing, profile)
	if !outcome.Degraded {
		t.Fatal("expected degraded outcome")
	}
	result := outcome.Result
	if result.Scores.Average() != 70.0 {
		t.Errorf("degraded average = %v, want 70.0", result.Scores.Average())
	}
	if result.MarketTier != types.TierMid {
		t.Errorf("degraded tier = %s, want mid", result.MarketTier)
	}
	if result.ConfidenceScore != 0.3 {
		t.Errorf("degraded confidence = %v, want 0.3", result.ConfidenceScore)
	}
	if result.TargetIndustry != types.IndustryManufacturing {
		t.Errorf("degraded result must echo industry, got %s", result.TargetIndustry)
	}
}

func TestDetectMarketTier(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		achievements []string
		wantTier     types.MarketTier
		wantFactor   float64
	}{
		{
			"explicit labeled line",
			"MARKET TIER: executive\nsome text",
			nil,
			types.TierExecutive, tierFactorExplicit,
		},
		{
			"keyword in raw output",
			"The candidate shows senior level ownership.",
			nil,
			types.TierSenior, tierFactorExplicit,
		},
		{
			"fallback to achievements",
			"no tier words here",
			[]string{"Worked as junior developer on the data team"},
			types.TierEntry, tierFactorInferred,
		},
		{
			"default entry",
			"nothing informative",
			[]string{"did some things"},
			types.TierEntry, tierFactorDefaulted,
		},
		{
			"executive outranks senior",
			"A senior leader promoted to director of engineering.",
			nil,
			types.TierExecutive, tierFactorExplicit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, factor := detectMarketTier(tt.raw, tt.achievements)
			if tier != tt.wantTier || factor != tt.wantFactor {
				t.Errorf("detectMarketTier = (%s, %v), want (%s, %v)",
					tier, factor, tt.wantTier, tt.wantFactor)
			}
		})
	}
}

func TestProfileForFallsBackToGeneralBusiness(t *testing.T) {
	profile := ProfileFor(types.Industry("no_such_industry"))
	if profile.Industry != types.IndustryGeneralBusiness {
		t.Errorf("expected general_business fallback, got %s", profile.Industry)
	}

	// Every supported industry has its own profile
	for _, industry := range types.SupportedIndustries {
		if ProfileFor(industry).Industry != industry {
			t.Errorf("missing dedicated profile for %s", industry)
		}
	}
}
