package app

import (
	"github.com/ternarybob/arbor"

	"github.com/claimlens/claimlens/internal/common"
	"github.com/claimlens/claimlens/internal/handlers"
	"github.com/claimlens/claimlens/internal/services/ocr"
	"github.com/claimlens/claimlens/internal/services/pipeline"
	"github.com/claimlens/claimlens/internal/services/validation"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Pipeline services
	Splitter     *ocr.Splitter
	Extractor    *ocr.TesseractExtractor
	Validator    *validation.Client
	Orchestrator *pipeline.Orchestrator

	// HTTP handlers
	MCPHandler    *handlers.MCPHandler
	HealthHandler *handlers.HealthHandler
}

// New wires services and handlers from configuration. Every client is
// constructed here, once, and passed down explicitly.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	splitter := ocr.NewSplitter(logger)
	extractor := ocr.NewTesseractExtractor(logger)

	prompts := validation.NewPromptStore(config.Prompts.Dir, logger)
	validator := validation.NewClient(config.Inference, config.Validation.ReviewThreshold, prompts, logger)

	orchestrator := pipeline.NewOrchestrator(
		splitter,
		extractor,
		validator,
		config.OCR.Language,
		config.OCR.PageWorkers,
		logger,
	)

	mcpHandler := handlers.NewMCPHandler(orchestrator, logger)
	healthHandler := handlers.NewHealthHandler(config.OCR.TesseractPath, len(mcpHandler.Tools()), logger)

	logger.Info().
		Str("inference_endpoint", config.Inference.Endpoint).
		Str("model", config.Inference.Model).
		Str("ocr_language", config.OCR.Language).
		Int("page_workers", config.OCR.PageWorkers).
		Msg("Application services initialized")

	return &App{
		Config:        config,
		Logger:        logger,
		Splitter:      splitter,
		Extractor:     extractor,
		Validator:     validator,
		Orchestrator:  orchestrator,
		MCPHandler:    mcpHandler,
		HealthHandler: healthHandler,
	}, nil
}
