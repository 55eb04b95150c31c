package cli

import (
	"fmt"
	"time"

	"resumelens/internal/observability"
	"resumelens/internal/prompts"
	"resumelens/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for resume analysis",
	Long: `Start an HTTP server that provides REST API endpoints for resume analysis.

Available endpoints:
- POST /v1/analyze: Run the two-agent resume analysis workflow
- GET /health: Health check including AI model and circuit breaker status
- GET /stats: Server statistics and rate limiting info
- GET /industries: List supported target industries

TLS Configuration:
- Use --cert-file and --key-file to enable TLS`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")

	// Bind flags to viper config keys
	bindFlag := func(key, flagName string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(flagName)); err != nil {
			panic(err)
		}
	}

	bindFlag("server.port", "port")
	bindFlag("server.host", "host")
	bindFlag("server.tls.certFile", "cert-file")
	bindFlag("server.tls.keyFile", "key-file")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	obsConfig := observability.GetObservabilityConfig(cfg, Version)
	om, err := observability.NewObservabilityManager(obsConfig, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}

	components, err := buildAnalysisComponents(cfg, logger, om)
	if err != nil {
		return err
	}

	// Watch the prompt override directory in serve mode so template edits
	// take effect without a restart
	if cfg.Prompts.HotReload && cfg.Prompts.Dir != "" {
		watcher, err := prompts.NewWatcher(components.Registry, 500*time.Millisecond, logger)
		if err != nil {
			return fmt.Errorf("failed to create prompt watcher: %w", err)
		}
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("failed to start prompt watcher: %w", err)
		}
		defer func() {
			if err := watcher.Stop(); err != nil {
				logger.Warn("Failed to stop prompt watcher", "error", err)
			}
		}()
	}

	serverCfg := server.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        Version,
		TLSConfig:      cfg.Server.TLS,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.App.MaxFileSize,
		RateLimit:      &cfg.Server.RateLimit,
	}

	srv := server.NewServer(cfg, serverCfg, components.Engine, logger)
	srv.StructureService = components.StructureService
	srv.AppealService = components.AppealService
	srv.Observability = om
	return srv.Start()
}
