package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"resumelens/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "AnalyzeResponse", &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalyzeResponse", &AnalysisMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalyzeResponse, *types.AnalyzeResponse:
		return "AnalyzeResponse"
	default:
		return "any"
	}
}

func asAnalyzeResponse(data any) (types.AnalyzeResponse, error) {
	switch v := data.(type) {
	case types.AnalyzeResponse:
		return v, nil
	case *types.AnalyzeResponse:
		return *v, nil
	}
	return types.AnalyzeResponse{}, fmt.Errorf("expected AnalyzeResponse, got %T", data)
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// AnalysisTextFormatter handles text formatting for analysis envelopes
type AnalysisTextFormatter struct{}

func (atf *AnalysisTextFormatter) Format(data any) (string, error) {
	result, err := asAnalyzeResponse(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== RESUME ANALYSIS ===\n\n")
	if result.Error != "" {
		output.WriteString(fmt.Sprintf("Error: %s\n\n", result.Error))
	}
	output.WriteString(fmt.Sprintf("Overall Score: %.2f/100\n", result.OverallScore))
	output.WriteString(fmt.Sprintf("Market Tier: %s\n\n", result.MarketTier))
	output.WriteString("Summary:\n")
	output.WriteString(result.Summary)
	output.WriteString("\n\n")

	if result.Structure.Scores != nil {
		s := result.Structure.Scores
		output.WriteString("=== STRUCTURE ANALYSIS ===\n")
		output.WriteString(fmt.Sprintf("Format: %.1f/100\n", s.Format))
		output.WriteString(fmt.Sprintf("Organization: %.1f/100\n", s.Organization))
		output.WriteString(fmt.Sprintf("Tone: %.1f/100\n", s.Tone))
		output.WriteString(fmt.Sprintf("Completeness: %.1f/100\n\n", s.Completeness))
	}
	if result.Structure.Feedback != nil {
		fb := result.Structure.Feedback
		writeTextList(&output, "Structure Strengths", fb.Strengths)
		writeTextList(&output, "Structure Issues", fb.Issues)
		writeTextList(&output, "Missing Sections", fb.MissingSections)
		writeTextList(&output, "Recommendations", fb.Recommendations)
	}

	if result.Appeal.Scores != nil {
		s := result.Appeal.Scores
		output.WriteString("=== INDUSTRY APPEAL ===\n")
		output.WriteString(fmt.Sprintf("Achievement Relevance: %.1f/100\n", s.AchievementRelevance))
		output.WriteString(fmt.Sprintf("Skills Alignment: %.1f/100\n", s.SkillsAlignment))
		output.WriteString(fmt.Sprintf("Experience Fit: %.1f/100\n", s.ExperienceFit))
		output.WriteString(fmt.Sprintf("Competitive Positioning: %.1f/100\n\n", s.CompetitivePositioning))
	}
	if result.Appeal.Feedback != nil {
		fb := result.Appeal.Feedback
		writeTextList(&output, "Relevant Achievements", fb.RelevantAchievements)
		writeTextList(&output, "Competitive Advantages", fb.CompetitiveAdvantages)
		writeTextList(&output, "Missing Skills", fb.MissingSkills)
		writeTextList(&output, "Improvement Areas", fb.ImprovementAreas)
	}

	if result.Result != nil {
		writeTextList(&output, "Key Strengths", result.Result.KeyStrengths)
		writeTextList(&output, "Priority Improvements", result.Result.PriorityImprovements)

		cm := result.Result.ConfidenceMetrics
		output.WriteString("=== CONFIDENCE ===\n")
		output.WriteString(fmt.Sprintf("Structure: %.2f\n", cm.StructureConfidence))
		output.WriteString(fmt.Sprintf("Appeal: %.2f\n", cm.AppealConfidence))
		output.WriteString(fmt.Sprintf("Overall: %.2f\n", cm.OverallConfidence))
	}

	return output.String(), nil
}

func (atf *AnalysisTextFormatter) SupportedType() string {
	return "AnalyzeResponse"
}

func writeTextList(output *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	output.WriteString(heading + ":\n")
	for _, item := range items {
		output.WriteString(fmt.Sprintf("- %s\n", item))
	}
	output.WriteString("\n")
}

// AnalysisMarkdownFormatter handles markdown formatting for analysis envelopes
type AnalysisMarkdownFormatter struct{}

func (amf *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, err := asAnalyzeResponse(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# Resume Analysis\n\n")
	if result.Error != "" {
		output.WriteString(fmt.Sprintf("> **Error:** %s\n\n", result.Error))
	}
	output.WriteString(fmt.Sprintf("**Overall Score:** %.2f/100\n\n", result.OverallScore))
	output.WriteString(fmt.Sprintf("**Market Tier:** %s\n\n", result.MarketTier))
	output.WriteString("## Summary\n\n")
	output.WriteString(result.Summary)
	output.WriteString("\n\n")

	if result.Structure.Scores != nil {
		s := result.Structure.Scores
		output.WriteString("## Structure Analysis\n\n")
		output.WriteString("| Format | Organization | Tone | Completeness |\n")
		output.WriteString("|--------|--------------|------|--------------|\n")
		output.WriteString(fmt.Sprintf("| %.1f | %.1f | %.1f | %.1f |\n\n",
			s.Format, s.Organization, s.Tone, s.Completeness))
	}
	if result.Structure.Feedback != nil {
		fb := result.Structure.Feedback
		writeMarkdownList(&output, "Structure Strengths", fb.Strengths)
		writeMarkdownList(&output, "Structure Issues", fb.Issues)
		writeMarkdownList(&output, "Missing Sections", fb.MissingSections)
		writeMarkdownList(&output, "Recommendations", fb.Recommendations)
	}

	if result.Appeal.Scores != nil {
		s := result.Appeal.Scores
		output.WriteString("## Industry Appeal\n\n")
		output.WriteString("| Achievements | Skills | Experience | Positioning |\n")
		output.WriteString("|--------------|--------|------------|-------------|\n")
		output.WriteString(fmt.Sprintf("| %.1f | %.1f | %.1f | %.1f |\n\n",
			s.AchievementRelevance, s.SkillsAlignment, s.ExperienceFit, s.CompetitivePositioning))
	}
	if result.Appeal.Feedback != nil {
		fb := result.Appeal.Feedback
		writeMarkdownList(&output, "Relevant Achievements", fb.RelevantAchievements)
		writeMarkdownList(&output, "Competitive Advantages", fb.CompetitiveAdvantages)
		writeMarkdownList(&output, "Missing Skills", fb.MissingSkills)
		writeMarkdownList(&output, "Improvement Areas", fb.ImprovementAreas)
	}

	if result.Result != nil {
		writeMarkdownList(&output, "Key Strengths", result.Result.KeyStrengths)
		writeMarkdownList(&output, "Priority Improvements", result.Result.PriorityImprovements)

		cm := result.Result.ConfidenceMetrics
		output.WriteString("## Confidence\n\n")
		output.WriteString(fmt.Sprintf("- Structure: %.2f\n", cm.StructureConfidence))
		output.WriteString(fmt.Sprintf("- Appeal: %.2f\n", cm.AppealConfidence))
		output.WriteString(fmt.Sprintf("- Overall: %.2f\n", cm.OverallConfidence))
	}

	return output.String(), nil
}

func (amf *AnalysisMarkdownFormatter) SupportedType() string {
	return "AnalyzeResponse"
}

func writeMarkdownList(output *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	output.WriteString("### " + heading + "\n\n")
	for _, item := range items {
		output.WriteString(fmt.Sprintf("- %s\n", item))
	}
	output.WriteString("\n")
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
