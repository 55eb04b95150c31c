package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
// API Key Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (RESUMELENS_AI_APIKEY, etc.)
// 4. Default values - Lowest priority
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Analysis      AnalysisConfig      `mapstructure:"analysis"`
	Prompts       PromptsConfig       `mapstructure:"prompts"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AIConfig holds AI service configuration
type AIConfig struct {
	// Global/fallback configuration shared by both agents
	Provider   string        `mapstructure:"provider"`
	Model      string        `mapstructure:"model"`
	Timeout    time.Duration `mapstructure:"timeout"`
	APIKey     string        `mapstructure:"apiKey"`
	MaxRetries int           `mapstructure:"maxRetries"`

	// Agent-specific configurations
	Structure AgentAIConfig `mapstructure:"structure"`
	Appeal    AgentAIConfig `mapstructure:"appeal"`
}

// AgentAIConfig holds AI configuration for one analysis agent
type AgentAIConfig struct {
	Provider       string               `mapstructure:"provider"`
	Model          string               `mapstructure:"model"`
	Timeout        *time.Duration       `mapstructure:"timeout"`
	APIKey         string               `mapstructure:"apiKey"`
	MaxRetries     *int                 `mapstructure:"maxRetries"`
	Temperature    *float32             `mapstructure:"temperature"`
	MaxTokens      *int32               `mapstructure:"maxTokens"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// AnalysisConfig holds workflow-level tuning for the analysis pipeline
type AnalysisConfig struct {
	StructureConfidenceThreshold float64       `mapstructure:"structureConfidenceThreshold"`
	AppealConfidenceThreshold    float64       `mapstructure:"appealConfidenceThreshold"`
	MaxRetries                   int           `mapstructure:"maxRetries"`
	StructureWeight              float64       `mapstructure:"structureWeight"`
	AppealWeight                 float64       `mapstructure:"appealWeight"`
	MinResumeChars               int           `mapstructure:"minResumeChars"`
	MaxResumeChars               int           `mapstructure:"maxResumeChars"`
	OverallTimeout               time.Duration `mapstructure:"overallTimeout"`
}

// PromptsConfig selects which prompt template set the registry loads
type PromptsConfig struct {
	Language  string `mapstructure:"language"`  // "en" or "ja"
	Version   string `mapstructure:"version"`   // "v1.0" or "v1.1"
	Dir       string `mapstructure:"dir"`       // optional directory with template override files
	HotReload bool   `mapstructure:"hotReload"` // watch Dir for changes (serve mode)
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`

	// TLS Configuration
	TLS TLSConfig `mapstructure:"tls"`

	// API Authentication
	APIKeys []string `mapstructure:"apiKeys"` // Valid API keys for authentication

	// Rate Limiting Configuration
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// TLSConfig holds TLS configuration for the HTTP server
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"certFile"` // Server certificate file (PEM)
	KeyFile  string `mapstructure:"keyFile"`  // Server private key file (PEM)
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`        // Enable/disable rate limiting
	RequestsPerMin int           `mapstructure:"requestsPerMin"` // Requests allowed per minute
	BurstCapacity  int           `mapstructure:"burstCapacity"`  // Burst capacity for token bucket
	ByIP           bool          `mapstructure:"byIP"`           // Enable per-IP rate limiting
	ByAPIKey       bool          `mapstructure:"byAPIKey"`       // Enable per-API-key rate limiting
	Window         time.Duration `mapstructure:"window"`         // Rate limiting window duration
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool                `mapstructure:"enabled"`
	ServiceName     string              `mapstructure:"serviceName"`
	ServiceVersion  string              `mapstructure:"serviceVersion"`
	ServiceInstance string              `mapstructure:"serviceInstance"`
	ConsoleOutput   bool                `mapstructure:"consoleOutput"`
	SampleRate      float64             `mapstructure:"sampleRate"`
	Tracing         TracingConfig       `mapstructure:"tracing"`
	Metrics         MetricsConfig       `mapstructure:"metrics"`
	CustomMetrics   CustomMetricsConfig `mapstructure:"customMetrics"`
	Console         ConsoleConfig       `mapstructure:"console"`
	Prometheus      PrometheusConfig    `mapstructure:"prometheus"`
	OTLP            OTLPConfig          `mapstructure:"otlp"`
	HealthCheck     HealthCheckConfig   `mapstructure:"healthCheck"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// CustomMetricsConfig holds fine-grained custom metrics configuration
type CustomMetricsConfig struct {
	AIOperations   AIOperationsMetricsConfig `mapstructure:"aiOperations"`
	Workflow       WorkflowMetricsConfig     `mapstructure:"workflow"`
	Infrastructure InfraMetricsConfig        `mapstructure:"infrastructure"`
}

// AIOperationsMetricsConfig holds AI operation metrics configuration
type AIOperationsMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackDuration   bool `mapstructure:"trackDuration"`
	TrackTokenUsage bool `mapstructure:"trackTokenUsage"`
}

// WorkflowMetricsConfig holds analysis workflow metrics configuration
type WorkflowMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackRetries    bool `mapstructure:"trackRetries"`
	TrackConfidence bool `mapstructure:"trackConfidence"`
}

// InfraMetricsConfig holds infrastructure metrics configuration
type InfraMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackRateLimits bool `mapstructure:"trackRateLimits"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// HealthCheckConfig holds health check configuration
type HealthCheckConfig struct {
	Timeout             time.Duration `mapstructure:"timeout"`
	AIModelCheckTimeout time.Duration `mapstructure:"aiModelCheckTimeout"`
}

// LoadConfig loads configuration from environment variables and a config file
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Set up environment variable handling
	v.SetEnvPrefix("RESUMELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set up config file handling
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/resumelens/")
	v.AddConfigPath("$HOME/.resumelens")
	v.AddConfigPath(".")

	// Read the config file
	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Loaded config file: %s", configFileUsed)
	}

	// Unmarshal the configuration into the Config struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply environment fallbacks and derived defaults
	config.applyFallbacks()

	// Resolve secrets from Vault (highest precedence)
	if err := config.resolveVaultSecrets(); err != nil {
		return nil, fmt.Errorf("failed to resolve Vault secrets: %w", err)
	}

	// Validate the configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration - Global defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 3)

	// AI Configuration - Structure agent defaults
	v.SetDefault("ai.structure.provider", "gemini")
	v.SetDefault("ai.structure.model", "")
	v.SetDefault("ai.structure.timeout", 60*time.Second)
	v.SetDefault("ai.structure.apiKey", "")
	v.SetDefault("ai.structure.maxRetries", 3)
	v.SetDefault("ai.structure.temperature", 0.3)
	v.SetDefault("ai.structure.maxTokens", 3000)

	// AI Configuration - Appeal agent defaults
	// Higher creativity and length budget for open-ended industry reasoning
	v.SetDefault("ai.appeal.provider", "gemini")
	v.SetDefault("ai.appeal.model", "")
	v.SetDefault("ai.appeal.timeout", 90*time.Second)
	v.SetDefault("ai.appeal.apiKey", "")
	v.SetDefault("ai.appeal.maxRetries", 3)
	v.SetDefault("ai.appeal.temperature", 0.4)
	v.SetDefault("ai.appeal.maxTokens", 3500)

	// Circuit Breaker Configuration defaults for both agents
	for _, agent := range []string{"structure", "appeal"} {
		v.SetDefault("ai."+agent+".circuitBreaker.enabled", true)
		v.SetDefault("ai."+agent+".circuitBreaker.maxRequests", 3)
		v.SetDefault("ai."+agent+".circuitBreaker.interval", 60*time.Second)
		v.SetDefault("ai."+agent+".circuitBreaker.timeout", 60*time.Second)
		v.SetDefault("ai."+agent+".circuitBreaker.minRequests", 3)
		v.SetDefault("ai."+agent+".circuitBreaker.failureThreshold", 0.6)
	}

	// Analysis workflow defaults
	v.SetDefault("analysis.structureConfidenceThreshold", 0.6)
	v.SetDefault("analysis.appealConfidenceThreshold", 0.65)
	v.SetDefault("analysis.maxRetries", 2)
	v.SetDefault("analysis.structureWeight", 0.35)
	v.SetDefault("analysis.appealWeight", 0.65)
	v.SetDefault("analysis.minResumeChars", 100)
	v.SetDefault("analysis.maxResumeChars", 50000)
	v.SetDefault("analysis.overallTimeout", 300*time.Second)

	// Prompt template defaults
	v.SetDefault("prompts.language", "en")
	v.SetDefault("prompts.version", "v1.1")
	v.SetDefault("prompts.dir", "")
	v.SetDefault("prompts.hotReload", false)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 120*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.tls.enabled", false)
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.apiKeys", []string{})
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 1024*1024) // 1MB

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.geminiKey", "")
	v.SetDefault("vault.secrets.apiKeys", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "resumelens")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	v.SetDefault("observability.customMetrics.aiOperations.enabled", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackDuration", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.workflow.enabled", true)
	v.SetDefault("observability.customMetrics.workflow.trackRetries", true)
	v.SetDefault("observability.customMetrics.workflow.trackConfidence", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)

	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)

	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})

	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
	v.SetDefault("observability.healthCheck.aiModelCheckTimeout", 10*time.Second)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.AI.APIKey == "" && c.AI.Structure.APIKey == "" && c.AI.Appeal.APIKey == "" {
		return fmt.Errorf("AI API key is required (set RESUMELENS_AI_APIKEY environment variable)")
	}

	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI timeout must be positive")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if err := c.Analysis.Validate(); err != nil {
		return err
	}

	if err := c.Prompts.Validate(); err != nil {
		return err
	}

	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	if c.Server.TLS.Enabled && (c.Server.TLS.CertFile == "" || c.Server.TLS.KeyFile == "") {
		return fmt.Errorf("TLS certificate and key files are required when TLS is enabled")
	}

	return nil
}

// Validate checks workflow tuning bounds
func (a *AnalysisConfig) Validate() error {
	if a.StructureConfidenceThreshold < 0 || a.StructureConfidenceThreshold > 1 {
		return fmt.Errorf("structure confidence threshold must be in [0,1], got %v", a.StructureConfidenceThreshold)
	}
	if a.AppealConfidenceThreshold < 0 || a.AppealConfidenceThreshold > 1 {
		return fmt.Errorf("appeal confidence threshold must be in [0,1], got %v", a.AppealConfidenceThreshold)
	}
	if a.MaxRetries < 0 {
		return fmt.Errorf("analysis maxRetries must be non-negative, got %d", a.MaxRetries)
	}
	weightSum := a.StructureWeight + a.AppealWeight
	if weightSum < 0.999 || weightSum > 1.001 {
		return fmt.Errorf("structure and appeal weights must sum to 1.0, got %v", weightSum)
	}
	if a.MinResumeChars <= 0 || a.MaxResumeChars <= a.MinResumeChars {
		return fmt.Errorf("invalid resume length bounds [%d,%d]", a.MinResumeChars, a.MaxResumeChars)
	}
	return nil
}

// Validate checks the prompt selection
func (p *PromptsConfig) Validate() error {
	switch p.Language {
	case "en", "ja":
	default:
		return fmt.Errorf("invalid prompt language: %s (must be 'en' or 'ja')", p.Language)
	}
	switch p.Version {
	case "v1.0", "v1.1":
	default:
		return fmt.Errorf("invalid prompt version: %s (must be 'v1.0' or 'v1.1')", p.Version)
	}
	return nil
}

// applyAgentDefaults applies global defaults to agent-specific configuration
func (c *Config) applyAgentDefaults(agentCfg *AgentAIConfig) {
	if agentCfg.Provider == "" {
		agentCfg.Provider = c.AI.Provider
	}
	if agentCfg.Model == "" {
		agentCfg.Model = c.AI.Model
	}
	if agentCfg.Timeout == nil {
		agentCfg.Timeout = &c.AI.Timeout
	}
	if agentCfg.APIKey == "" {
		agentCfg.APIKey = c.AI.APIKey
	}
	if agentCfg.MaxRetries == nil {
		agentCfg.MaxRetries = &c.AI.MaxRetries
	}
}

// GetStructureConfig returns the AI configuration for the structure agent
// with fallback to global config
func (c *Config) GetStructureConfig() AgentAIConfig {
	config := c.AI.Structure
	c.applyAgentDefaults(&config)
	return config
}

// GetAppealConfig returns the AI configuration for the appeal agent with
// fallback to global config
func (c *Config) GetAppealConfig() AgentAIConfig {
	config := c.AI.Appeal
	c.applyAgentDefaults(&config)
	return config
}

// applyFallbacks applies environment variable fallbacks
func (c *Config) applyFallbacks() {
	// Parse API keys from environment variable if not set in config
	if len(c.Server.APIKeys) == 0 {
		if apiKeysEnv := os.Getenv("RESUMELENS_SERVER_APIKEYS"); apiKeysEnv != "" {
			c.Server.APIKeys = strings.Split(apiKeysEnv, ",")
			for i, key := range c.Server.APIKeys {
				c.Server.APIKeys[i] = strings.TrimSpace(key)
			}
		}
	}

	// Legacy Gemini key support
	if c.AI.APIKey == "" {
		c.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	// Set dynamic service instance ID if not specified
	if c.Observability.ServiceInstance == "" {
		if hostname, err := os.Hostname(); err == nil {
			c.Observability.ServiceInstance = fmt.Sprintf("%s-%s", c.Observability.ServiceName, hostname)
		} else {
			c.Observability.ServiceInstance = fmt.Sprintf("%s-1", c.Observability.ServiceName)
		}
	}

	// Set console output based on log level if not explicitly configured
	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

// resolveVaultSecrets overrides secret values from Vault when enabled
func (c *Config) resolveVaultSecrets() error {
	if !c.Vault.Enabled {
		return nil
	}

	client, err := NewVaultClient(c.Vault, nil)
	if err != nil {
		return err
	}
	if client == nil {
		return nil
	}

	if c.Vault.Secrets.GeminiKey != "" {
		key, err := client.GetGeminiAPIKey()
		if err != nil {
			return err
		}
		if key != "" {
			c.AI.APIKey = key
		}
	}

	if c.Vault.Secrets.APIKeys != "" {
		keys, err := client.GetServerAPIKeys()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			c.Server.APIKeys = keys
		}
	}

	return nil
}
