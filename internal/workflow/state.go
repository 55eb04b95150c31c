package workflow

import (
	"time"

	"resumelens/internal/types"
)

// Stage identifies the current position of a run in the analysis state
// machine. Transitions only move forward except for the retry self-loops
// on the two analysis stages.
type Stage string

const (
	StagePreprocessing       Stage = "preprocessing"
	StageStructureAnalysis   Stage = "structure_analysis"
	StageStructureValidation Stage = "structure_validation"
	StageAppealAnalysis      Stage = "appeal_analysis"
	StageAppealValidation    Stage = "appeal_validation"
	StageAggregation         Stage = "aggregation"
	StageComplete            Stage = "complete"
	StageError               Stage = "error"
)

// AnalysisState is the mutable working state of one analysis run. It is
// owned by a single goroutine for the lifetime of the run; concurrent runs
// each get their own state.
type AnalysisState struct {
	AnalysisID string
	ResumeText string
	Industry   types.Industry

	CurrentStage Stage

	StructureResult *types.StructureResult
	StructureErrors []string

	AppealResult *types.AppealResult
	AppealErrors []string

	// RetryCount resets to 0 when the run transitions from the structure
	// phase to the appeal phase; each phase has an independent budget.
	RetryCount int
	MaxRetries int

	HasErrors      bool
	FailureCode    string
	FailureMessage string

	FinalResult *types.CompleteResult
	StartedAt   time.Time
}

// newAnalysisState initializes a run at the preprocessing stage.
func newAnalysisState(analysisID, resumeText string, maxRetries int) *AnalysisState {
	return &AnalysisState{
		AnalysisID:      analysisID,
		ResumeText:      resumeText,
		CurrentStage:    StagePreprocessing,
		StructureErrors: []string{},
		AppealErrors:    []string{},
		MaxRetries:      maxRetries,
		StartedAt:       time.Now(),
	}
}

// fail routes the run to the terminal error stage. The first failure code
// recorded wins; later calls only append detail via the error lists.
func (s *AnalysisState) fail(code, message string) {
	s.HasErrors = true
	if s.FailureCode == "" {
		s.FailureCode = code
		s.FailureMessage = message
	}
	s.CurrentStage = StageError
}
