package cli

import (
	"fmt"

	"resumelens/internal/agents"
	"resumelens/internal/ai"
	"resumelens/internal/config"
	"resumelens/internal/errors"
	"resumelens/internal/observability"
	"resumelens/internal/prompts"
	"resumelens/internal/workflow"
)

// analysisComponents bundles everything needed to run the two-agent workflow.
type analysisComponents struct {
	Engine           *workflow.Engine
	StructureService *ai.Service
	AppealService    *ai.Service
	Registry         *prompts.Registry
}

// buildAnalysisComponents wires the prompt registry, both AI services and the
// workflow engine. The observability manager is optional; when present the
// providers are instrumented and workflow metrics are recorded.
func buildAnalysisComponents(cfg *config.Config, logger *errors.Logger, om *observability.ObservabilityManager) (*analysisComponents, error) {
	registry, err := prompts.NewRegistry(cfg.Prompts.Language, cfg.Prompts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}

	structureCfg := cfg.GetStructureConfig()
	structureService, err := ai.NewService(&structureCfg, "structure", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create structure AI service: %w", err)
	}

	appealCfg := cfg.GetAppealConfig()
	appealService, err := ai.NewService(&appealCfg, "appeal", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create appeal AI service: %w", err)
	}

	structureProvider := structureService.Provider
	appealProvider := appealService.Provider
	var metrics workflow.Metrics
	if om != nil {
		structureProvider = om.WrapProvider(structureProvider, "structure")
		appealProvider = om.WrapProvider(appealProvider, "appeal")
		metrics = om.WorkflowRecorder()
	}

	structureAgent := agents.NewStructureAgent(structureProvider, registry, cfg.Prompts.Version, structureCfg.Model, logger)
	appealAgent := agents.NewAppealAgent(appealProvider, registry, cfg.Prompts.Version, appealCfg.Model, logger)

	engine := workflow.NewEngine(structureAgent, appealAgent, cfg.Analysis, logger, metrics)

	return &analysisComponents{
		Engine:           engine,
		StructureService: structureService,
		AppealService:    appealService,
		Registry:         registry,
	}, nil
}
