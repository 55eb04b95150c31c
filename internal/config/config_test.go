package config

import (
	"strings"
	"testing"
	"time"
)

func validTestConfig() *Config {
	timeout := 60 * time.Second
	retries := 3
	return &Config{
		AI: AIConfig{
			Provider:   "gemini",
			Model:      "gemini-2.0-flash",
			Timeout:    timeout,
			APIKey:     "test-key",
			MaxRetries: retries,
		},
		Analysis: AnalysisConfig{
			StructureConfidenceThreshold: 0.6,
			AppealConfidenceThreshold:    0.65,
			MaxRetries:                   2,
			StructureWeight:              0.35,
			AppealWeight:                 0.65,
			MinResumeChars:               100,
			MaxResumeChars:               50000,
			OverallTimeout:               300 * time.Second,
		},
		Prompts: PromptsConfig{
			Language: "en",
			Version:  "v1.1",
		},
		Server: ServerConfig{
			Port: "8080",
		},
		App: AppConfig{
			LogLevel:         "info",
			DefaultFormat:    "json",
			SupportedFormats: []string{"json", "text", "markdown"},
		},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{
			"missing API key everywhere",
			func(c *Config) { c.AI.APIKey = "" },
			"API key",
		},
		{
			"agent key alone is enough",
			func(c *Config) {
				c.AI.APIKey = ""
				c.AI.Structure.APIKey = "agent-key"
			},
			"",
		},
		{
			"non-positive timeout",
			func(c *Config) { c.AI.Timeout = 0 },
			"timeout",
		},
		{
			"missing port",
			func(c *Config) { c.Server.Port = "" },
			"port",
		},
		{
			"default format not supported",
			func(c *Config) { c.App.DefaultFormat = "yaml" },
			"invalid default format",
		},
		{
			"TLS enabled without cert",
			func(c *Config) { c.Server.TLS = TLSConfig{Enabled: true, KeyFile: "key.pem"} },
			"TLS certificate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestAnalysisConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(a *AnalysisConfig)
		wantErr bool
	}{
		{"valid", func(a *AnalysisConfig) {}, false},
		{"zero retries allowed", func(a *AnalysisConfig) { a.MaxRetries = 0 }, false},
		{"negative retries", func(a *AnalysisConfig) { a.MaxRetries = -1 }, true},
		{"structure threshold above one", func(a *AnalysisConfig) { a.StructureConfidenceThreshold = 1.5 }, true},
		{"appeal threshold negative", func(a *AnalysisConfig) { a.AppealConfidenceThreshold = -0.1 }, true},
		{"weights do not sum to one", func(a *AnalysisConfig) { a.StructureWeight = 0.5 }, true},
		{"swapped length bounds", func(a *AnalysisConfig) { a.MinResumeChars = 50000; a.MaxResumeChars = 100 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig().Analysis
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPromptsConfigValidate(t *testing.T) {
	tests := []struct {
		name     string
		language string
		version  string
		wantErr  bool
	}{
		{"english v1.1", "en", "v1.1", false},
		{"japanese v1.0", "ja", "v1.0", false},
		{"unknown language", "fr", "v1.1", true},
		{"unknown version", "en", "v2.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := PromptsConfig{Language: tt.language, Version: tt.version}
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetAgentConfigFallbacks(t *testing.T) {
	cfg := validTestConfig()

	structure := cfg.GetStructureConfig()
	if structure.Provider != "gemini" {
		t.Errorf("Provider = %q, want fallback to global", structure.Provider)
	}
	if structure.Model != "gemini-2.0-flash" {
		t.Errorf("Model = %q, want fallback to global", structure.Model)
	}
	if structure.APIKey != "test-key" {
		t.Errorf("APIKey = %q, want fallback to global", structure.APIKey)
	}
	if structure.Timeout == nil || *structure.Timeout != cfg.AI.Timeout {
		t.Errorf("Timeout = %v, want global %v", structure.Timeout, cfg.AI.Timeout)
	}
	if structure.MaxRetries == nil || *structure.MaxRetries != cfg.AI.MaxRetries {
		t.Errorf("MaxRetries = %v, want global %d", structure.MaxRetries, cfg.AI.MaxRetries)
	}
}

func TestGetAgentConfigOverrides(t *testing.T) {
	cfg := validTestConfig()
	appealTimeout := 90 * time.Second
	cfg.AI.Appeal = AgentAIConfig{
		Model:   "gemini-2.5-pro",
		Timeout: &appealTimeout,
		APIKey:  "appeal-key",
	}

	appeal := cfg.GetAppealConfig()
	if appeal.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %q, want agent override", appeal.Model)
	}
	if appeal.APIKey != "appeal-key" {
		t.Errorf("APIKey = %q, want agent override", appeal.APIKey)
	}
	if appeal.Timeout == nil || *appeal.Timeout != appealTimeout {
		t.Errorf("Timeout = %v, want agent override %v", appeal.Timeout, appealTimeout)
	}
	// Unset fields still fall back
	if appeal.Provider != "gemini" {
		t.Errorf("Provider = %q, want fallback to global", appeal.Provider)
	}

	// The getter must not mutate the stored agent config
	if cfg.AI.Appeal.Provider != "" {
		t.Error("GetAppealConfig mutated the stored agent config")
	}
}
