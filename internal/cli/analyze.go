package cli

import (
	"fmt"
	"strings"

	"resumelens/internal/common"
	"resumelens/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file]",
	Short: "Analyze a resume for structure quality and industry appeal",
	Long: `Analyze a resume with the two-stage AI workflow. The structure agent
scores formatting, organization, tone and completeness; the appeal agent then
evaluates achievements, skills and experience against a target industry,
using the structure findings as context.

The analysis includes:
- Weighted overall score and market tier estimate
- Structure scores with issues and recommendations
- Industry appeal scores with competitive positioning
- Per-agent confidence metrics

Use the industries command to list valid --industry codes.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		// Apply default format if not specified
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var analyzeConfig common.CommandConfig
var analyzeIndustry string

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeIndustry, "industry", "i", "", "Target industry code (required)")
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	_ = analyzeCmd.MarkFlagRequired("industry")

	// Add completion for the industry and format flags
	_ = analyzeCmd.RegisterFlagCompletionFunc("industry", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		codes := make([]string, 0, len(types.SupportedIndustries))
		for _, industry := range types.SupportedIndustries {
			codes = append(codes, string(industry))
		}
		return codes, cobra.ShellCompDirectiveNoFileComp
	})
	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return []string{}, cobra.ShellCompDirectiveError
		}
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	components, err := buildAnalysisComponents(cfg, logger, nil)
	if err != nil {
		return err
	}

	createRequest := func(resumeText string) (types.AnalyzeRequest, error) {
		if strings.TrimSpace(resumeText) == "" {
			return types.AnalyzeRequest{}, fmt.Errorf("resume file is empty")
		}
		return types.AnalyzeRequest{
			ResumeText: resumeText,
			Industry:   analyzeIndustry,
		}, nil
	}

	logDetails := func(req types.AnalyzeRequest, cfg common.CommandConfig) {
		logger.Info("Starting resume analysis",
			"resume_chars", len(req.ResumeText),
			"industry", req.Industry,
			"output_format", cfg.OutputFormat)
	}

	err = common.RunAnalysisCommand(
		cmd.Context(),
		logger,
		analyzeConfig,
		args[0],
		createRequest,
		components.Engine.Analyze,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	logger.Info("Resume analysis completed successfully")
	return nil
}
