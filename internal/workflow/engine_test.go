package workflow

import (
	"context"
	"strings"
	"testing"

	"resumelens/internal/config"
	"resumelens/internal/errors"
	"resumelens/internal/types"
)

type fakeStructureAgent struct {
	calls int
	fn    func(call int) (*types.StructureResult, error)
}

func (f *fakeStructureAgent) Analyze(_ context.Context, _, _ string) (*types.StructureResult, error) {
	f.calls++
	return f.fn(f.calls)
}

type fakeAppealAgent struct {
	calls       int
	lastContext *types.StructureResult
	fn          func(call int) (*types.AppealResult, error)
}

func (f *fakeAppealAgent) Analyze(_ context.Context, _ string, _ types.Industry, _ string, structureContext *types.StructureResult) (*types.AppealResult, error) {
	f.calls++
	f.lastContext = structureContext
	return f.fn(f.calls)
}

func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		StructureConfidenceThreshold: 0.6,
		AppealConfidenceThreshold:    0.65,
		MaxRetries:                   2,
		StructureWeight:              0.35,
		AppealWeight:                 0.65,
		MinResumeChars:               100,
		MaxResumeChars:               50000,
	}
}

func testWorkflowLogger() *errors.Logger {
	logger, err := errors.New("error")
	if err != nil {
		panic(err)
	}
	return logger
}

func validStructureResult(confidence float64) *types.StructureResult {
	return &types.StructureResult{
		Scores:          types.StructureScores{Format: 80, Organization: 90, Tone: 70, Completeness: 60},
		Feedback:        emptyStructureFeedback(),
		ConfidenceScore: confidence,
	}
}

func emptyStructureFeedback() types.StructureFeedback {
	return types.StructureFeedback{
		Issues:           []string{},
		MissingSections:  []string{},
		ToneProblems:     []string{},
		CompletenessGaps: []string{},
		Strengths:        []string{"Clear ordering", "Strong verbs", "Good headings"},
		Recommendations:  []string{"Add summary", "Fix dates"},
	}
}

func validAppealResult(confidence float64) *types.AppealResult {
	return &types.AppealResult{
		Scores:     types.AppealScores{AchievementRelevance: 85, SkillsAlignment: 80, ExperienceFit: 75, CompetitivePositioning: 80},
		MarketTier: types.TierSenior,
		Feedback: types.AppealFeedback{
			RelevantAchievements:   []string{"Platform migration"},
			MissingSkills:          []string{},
			TransferableExperience: []string{},
			IndustryKeywords:       []string{},
			CompetitiveAdvantages:  []string{"Stakeholder experience", "Cloud depth"},
			ImprovementAreas:       []string{"Quantify outcomes"},
		},
		TargetIndustry:  types.IndustryTechConsulting,
		ConfidenceScore: confidence,
	}
}

var longResume = strings.Repeat("Experienced engineer with a track record of delivery. ", 5)

func newTestEngine(structure *fakeStructureAgent, appeal *fakeAppealAgent) *Engine {
	return NewEngine(structure, appeal, testAnalysisConfig(), testWorkflowLogger(), nil)
}

func TestAnalyzeSuccess(t *testing.T) {
	structure := &fakeStructureAgent{fn: func(int) (*types.StructureResult, error) {
		return validStructureResult(0.9), nil
	}}
	appeal := &fakeAppealAgent{fn: func(int) (*types.AppealResult, error) {
		return validAppealResult(0.8), nil
	}}
	engine := newTestEngine(structure, appeal)

	resp := engine.Analyze(context.Background(), types.AnalyzeRequest{
		ResumeText: longResume,
		Industry:   "tech_consulting",
	})

	if !resp.Success {
		t.Fatalf("expected success, got error %q", resp.Error)
	}
	// structure avg 75, appeal avg 80: 0.35*75 + 0.65*80 = 78.25
	if resp.OverallScore != 78.25 {
		t.Errorf("overall score = %v, want 78.25", resp.OverallScore)
	}
	if resp.MarketTier != types.TierSenior {
		t.Errorf("market tier = %s, want senior", resp.MarketTier)
	}
	if resp.AnalysisID == "" {
		t.Error("expected generated analysis ID")
	}
	if structure.calls != 1 || appeal.calls != 1 {
		t.Errorf("expected single attempt per phase, got %d/%d", structure.calls, appeal.calls)
	}
	if resp.Result == nil {
		t.Fatal("expected full result payload")
	}
	cm := resp.Result.ConfidenceMetrics
	if cm.StructureConfidence != 0.9 || cm.AppealConfidence != 0.8 || cm.OverallConfidence != 0.85 {
		t.Errorf("unexpected confidence metrics: %+v", cm)
	}
	if len(resp.Result.KeyStrengths) == 0 || len(resp.Result.PriorityImprovements) == 0 {
		t.Error("expected aggregated highlights")
	}
}

func TestAppealReceivesStructureContext(t *testing.T) {
	structure := &fakeStructureAgent{fn: func(int) (*types.StructureResult, error) {
		return validStructureResult(0.9), nil
	}}
	appeal := &fakeAppealAgent{fn: func(int) (*types.AppealResult, error) {
		return validAppealResult(0.8), nil
	}}
	engine := newTestEngine(structure, appeal)

	engine.Analyze(context.Background(), types.AnalyzeRequest{ResumeText: longResume, Industry: "tech_consulting"})

	if appeal.lastContext == nil {
		t.Fatal("appeal agent must receive the validated structure result as context")
	}
	if appeal.lastContext.ConfidenceScore != 0.9 {
		t.Error("appeal received a different structure result than validated")
	}
}

func TestStructureLowConfidenceRetryBudget(t *testing.T) {
	structure := &fakeStructureAgent{fn: func(int) (*types.StructureResult, error) {
		return validStructureResult(0.2), nil
	}}
	appeal := &fakeAppealAgent{fn: func(int) (*types.AppealResult, error) {
		return validAppealResult(0.8), nil
	}}
	engine := newTestEngine(structure, appeal)

	resp := engine.Analyze(context.Background(), types.AnalyzeRequest{ResumeText: longResume, Industry: "manufacturing"})

	// maxRetries=2 means exactly 3 attempts: 1 initial + 2 retries
	if structure.calls != 3 {
		t.Errorf("structure attempts = %d, want 3", structure.calls)
	}
	if appeal.calls != 0 {
		t.Errorf("appeal must not run after structure phase failure, got %d calls", appeal.calls)
	}
	if resp.Success {
		t.Error("expected failure envelope")
	}
	if !strings.Contains(resp.Error, errors.ErrCodeRetryBudgetExhausted) {
		t.Errorf("expected retry budget exhaustion error, got %q", resp.Error)
	}
	// A settled (if low-confidence) structure result still yields a partial
	if resp.Result == nil {
		t.Fatal("expected structure-only partial result")
	}
	if want := round2(75 * 0.7); resp.OverallScore != want {
		t.Errorf("partial overall = %v, want %v", resp.OverallScore, want)
	}
}

func TestStructureErrorsExhaustToFullFailure(t *testing.T) {
	structure := &fakeStructureAgent{fn: func(int) (*types.StructureResult, error) {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "boom", nil)
	}}
	appeal := &fakeAppealAgent{fn: func(int) (*types.AppealResult, error) {
		return validAppealResult(0.8), nil
	}}
	engine := newTestEngine(structure, appeal)

	resp := engine.Analyze(context.Background(), types.AnalyzeRequest{ResumeText: longResume, Industry: "manufacturing"})

	if structure.calls != 3 {
		t.Errorf("structure attempts = %d, want 3", structure.calls)
	}
	if resp.Success || resp.Result != nil {
		t.Error("no structure result ever existed, expected a bare failure envelope")
	}
	if resp.OverallScore != 0 || resp.MarketTier != types.TierUnknown {
		t.Errorf("failure envelope shape wrong: score=%v tier=%s", resp.OverallScore, resp.MarketTier)
	}
	if resp.Summary != "Analysis could not be completed due to an error." {
		t.Errorf("unexpected failure summary: %q", resp.Summary)
	}
}

func TestAppealExhaustionDegradesToPartial(t *testing.T) {
	structure := &fakeStructureAgent{fn: func(int) (*types.StructureResult, error) {
		return validStructureResult(0.9), nil
	}}
	appeal := &fakeAppealAgent{fn: func(int) (*types.AppealResult, error) {
		return validAppealResult(0.1), nil
	}}
	engine := newTestEngine(structure, appeal)

	resp := engine.Analyze(context.Background(), types.AnalyzeRequest{ResumeText: longResume, Industry: "finance_banking"})

	if structure.calls != 1 {
		t.Errorf("structure attempts = %d, want 1", structure.calls)
	}
	if appeal.calls != 3 {
		t.Errorf("appeal attempts = %d, want 3", appeal.calls)
	}
	if resp.Success {
		t.Error("partial results are not full successes")
	}
	if resp.Result == nil {
		t.Fatal("expected partial result payload")
	}
	// structure avg 75 with the incompleteness penalty
	if want := round2(75 * 0.7); resp.OverallScore != want {
		t.Errorf("partial overall = %v, want %v", resp.OverallScore, want)
	}
	if resp.MarketTier != types.TierMid {
		t.Errorf("placeholder tier = %s, want mid", resp.MarketTier)
	}
	appealFeedback := resp.Result.AppealResult.Feedback
	if len(appealFeedback.ImprovementAreas) == 0 || !strings.Contains(appealFeedback.ImprovementAreas[0], "incomplete") {
		t.Error("placeholder appeal feedback must carry incomplete markers")
	}
	if resp.Result.ConfidenceMetrics.AppealConfidence != 0.3 {
		t.Errorf("placeholder appeal confidence = %v, want 0.3", resp.Result.ConfidenceMetrics.AppealConfidence)
	}
}

func TestPreprocessingRejections(t *testing.T) {
	tests := []struct {
		name     string
		resume   string
		industry string
		wantCode string
	}{
		{"empty resume", "   \n\n ", "tech_consulting", errors.ErrCodeEmptyResume},
		{"too short", "short resume", "tech_consulting", errors.ErrCodeResumeTooShort},
		{"too long", strings.Repeat("x", 50001), "tech_consulting", errors.ErrCodeResumeTooLong},
		{"unknown industry", longResume, "unknown_code", errors.ErrCodeInvalidIndustry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			structure := &fakeStructureAgent{fn: func(int) (*types.StructureResult, error) {
				return validStructureResult(0.9), nil
			}}
			appeal := &fakeAppealAgent{fn: func(int) (*types.AppealResult, error) {
				return validAppealResult(0.8), nil
			}}
			engine := newTestEngine(structure, appeal)

			resp := engine.Analyze(context.Background(), types.AnalyzeRequest{
				ResumeText: tt.resume,
				Industry:   tt.industry,
			})

			if resp.Success {
				t.Fatal("expected preprocessing rejection")
			}
			if !strings.Contains(resp.Error, tt.wantCode) {
				t.Errorf("error %q does not carry code %s", resp.Error, tt.wantCode)
			}
			if structure.calls != 0 || appeal.calls != 0 {
				t.Errorf("no agent may run on invalid input, got %d/%d calls", structure.calls, appeal.calls)
			}
		})
	}
}

func TestCancelledContext(t *testing.T) {
	structure := &fakeStructureAgent{fn: func(int) (*types.StructureResult, error) {
		return validStructureResult(0.9), nil
	}}
	appeal := &fakeAppealAgent{fn: func(int) (*types.AppealResult, error) {
		return validAppealResult(0.8), nil
	}}
	engine := newTestEngine(structure, appeal)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := engine.Analyze(ctx, types.AnalyzeRequest{ResumeText: longResume, Industry: "tech_consulting"})

	if resp.Success {
		t.Error("cancelled run must not succeed")
	}
	if !strings.Contains(resp.Error, errors.ErrCodeAnalysisCancelled) {
		t.Errorf("expected cancellation code, got %q", resp.Error)
	}
	if structure.calls != 0 {
		t.Errorf("cancelled run must not invoke agents, got %d calls", structure.calls)
	}
}

func TestStructuralValidationFailureIsFatal(t *testing.T) {
	structure := &fakeStructureAgent{fn: func(int) (*types.StructureResult, error) {
		bad := validStructureResult(0.9)
		bad.Scores.Format = 150
		return bad, nil
	}}
	appeal := &fakeAppealAgent{fn: func(int) (*types.AppealResult, error) {
		return validAppealResult(0.8), nil
	}}
	engine := newTestEngine(structure, appeal)

	resp := engine.Analyze(context.Background(), types.AnalyzeRequest{ResumeText: longResume, Industry: "tech_consulting"})

	// Out-of-range scores cannot be fixed by retrying, no budget is spent
	if structure.calls != 1 {
		t.Errorf("structure attempts = %d, want 1", structure.calls)
	}
	if resp.Success || resp.Result != nil {
		t.Error("invalid structure result must not produce a payload")
	}
	if !strings.Contains(resp.Error, errors.ErrCodeResultValidationFailed) {
		t.Errorf("expected validation failure code, got %q", resp.Error)
	}
}

func TestAnalysisIDPreserved(t *testing.T) {
	structure := &fakeStructureAgent{fn: func(int) (*types.StructureResult, error) {
		return validStructureResult(0.9), nil
	}}
	appeal := &fakeAppealAgent{fn: func(int) (*types.AppealResult, error) {
		return validAppealResult(0.8), nil
	}}
	engine := newTestEngine(structure, appeal)

	resp := engine.Analyze(context.Background(), types.AnalyzeRequest{
		ResumeText: longResume,
		Industry:   "tech_consulting",
		AnalysisID: "caller-supplied-id",
	})

	if resp.AnalysisID != "caller-supplied-id" {
		t.Errorf("analysis ID = %q, want caller-supplied-id", resp.AnalysisID)
	}
}

func TestCleanResumeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"CRLF normalized", "line one\r\nline two", "line one\nline two"},
		{"control chars stripped", "hello\x00\x07 world", "hello world"},
		{"blank runs collapsed", "a\n\n\n\n\nb", "a\n\nb"},
		{"trailing spaces trimmed", "a   \nb\t\n", "a\nb"},
		{"tabs inside lines kept", "a\tb", "a\tb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanResumeText(tt.in); got != tt.want {
				t.Errorf("cleanResumeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
