package main

import (
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/schemasmith-inc/schemasmith-engine/pkg/analyzer"
	"github.com/schemasmith-inc/schemasmith-engine/pkg/config"
	"github.com/schemasmith-inc/schemasmith-engine/pkg/generator"
	"github.com/schemasmith-inc/schemasmith-engine/pkg/handlers"
	"github.com/schemasmith-inc/schemasmith-engine/pkg/llm"
	"github.com/schemasmith-inc/schemasmith-engine/pkg/logging"
	"github.com/schemasmith-inc/schemasmith-engine/pkg/relationships"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("output_root", cfg.OutputRoot),
		zap.Bool("ai_insights", cfg.AI.IsAvailable()),
		zap.Bool("external_validation", cfg.Validator.IsAvailable()))

	// Insights fall back to rule-based when no model is configured.
	var insights generator.InsightsProvider
	if cfg.AI.IsAvailable() {
		client, err := llm.NewClient(&llm.Config{
			Provider: cfg.AI.Provider,
			Endpoint: cfg.AI.Endpoint,
			Model:    cfg.AI.Model,
			APIKey:   cfg.AI.APIKey,
		}, logger)
		if err != nil {
			log.Fatalf("Failed to build llm client: %v", err)
		}
		insights = generator.NewLLMProvider(client, logger)
	}

	var validator generator.SchemaValidator
	if cfg.Validator.IsAvailable() {
		validator = generator.NewHTTPValidator(cfg.Validator.Endpoint, cfg.Validator.Timeout(), logger)
	}

	generatorService := generator.NewService(logger,
		analyzer.NewService(logger),
		relationships.NewDetector(logger),
		insights, validator, cfg.OutputRoot)

	mux := http.NewServeMux()

	// Register handlers
	healthHandler := handlers.NewHealthHandler(cfg, logger)
	healthHandler.RegisterRoutes(mux)

	generateHandler := handlers.NewGenerateHandler(cfg, generatorService, logger)
	generateHandler.RegisterRoutes(mux)

	logger.Info("Starting schemasmith-engine",
		zap.String("port", cfg.Port),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(cfg.BindAddr+":"+cfg.Port, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
