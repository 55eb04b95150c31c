package common

import (
	"context"
	"fmt"

	"resumelens/internal/errors"
	"resumelens/internal/types"
)

// CreateRequestFunc builds the analysis request from the resume file contents.
type CreateRequestFunc func(resumeText string) (types.AnalyzeRequest, error)

// AnalysisFunc runs one analysis and always returns an envelope.
type AnalysisFunc func(context.Context, types.AnalyzeRequest) types.AnalyzeResponse

// LogDetailsFunc logs the start of an analysis.
type LogDetailsFunc func(req types.AnalyzeRequest, cfg CommandConfig)

// RunAnalysisCommand encapsulates the common logic for file-based analysis
// commands: read the resume file, run the workflow, format the envelope.
func RunAnalysisCommand(
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	resumeFile string,
	createRequest CreateRequestFunc,
	analyze AnalysisFunc,
	logDetails LogDetailsFunc,
) error {
	fileProcessor := NewFileProcessor(logger)
	outputHandler := NewOutputHandler(logger)

	resumeText, err := fileProcessor.ReadResumeFile(resumeFile)
	if err != nil {
		return err
	}

	req, err := createRequest(resumeText)
	if err != nil {
		return fmt.Errorf("failed to create analysis request: %w", err)
	}

	logDetails(req, cmdConfig)

	response := analyze(ctx, req)

	if response.Error != "" {
		logger.Warn("Analysis did not complete cleanly",
			"analysis_id", response.AnalysisID,
			"error", response.Error,
			"partial_result", response.Result != nil)
	}

	if err := outputHandler.HandleOutput(response, cmdConfig); err != nil {
		return err
	}

	// A bare failure envelope carries no result payload at all
	if !response.Success && response.Result == nil {
		return fmt.Errorf("analysis failed: %s", response.Error)
	}

	return nil
}
