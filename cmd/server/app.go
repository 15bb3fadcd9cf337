package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/bionexus-api/internal/config"
	"github.com/phrazzld/bionexus-api/internal/generation"
	"github.com/phrazzld/bionexus-api/internal/platform/gemini"
	"github.com/phrazzld/bionexus-api/internal/platform/metrics"
	"github.com/phrazzld/bionexus-api/internal/service"
	"github.com/phrazzld/bionexus-api/internal/session"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	metrics  *metrics.Metrics
	gateway  *generation.Gateway
	sessions *session.Store

	knowledgeService *service.KnowledgeService
	clinicalService  *service.ClinicalService
	scholarService   *service.ScholarService
	patientService   *service.PatientService
}

// appOption customizes newApplication.
type appOption func(*appOptions)

type appOptions struct {
	model generation.Model
	wait  generation.WaitFunc
}

// withModel replaces the Gemini client with another model.
func withModel(m generation.Model) appOption {
	return func(o *appOptions) {
		o.model = m
	}
}

// withWait replaces the gateway backoff sleep.
func withWait(fn generation.WaitFunc) appOption {
	return func(o *appOptions) {
		o.wait = fn
	}
}

// newApplication creates a new application instance with all dependencies
// initialized.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...appOption) (*application, error) {
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}

	app := &application{
		config:  cfg,
		logger:  logger,
		metrics: metrics.New(),
	}

	model := o.model
	if model == nil {
		client, err := gemini.NewClient(ctx, cfg.LLM, logger.With("component", "gemini_client"))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		model = client
	}

	gatewayOpts := []generation.GatewayOption{generation.WithObserver(app.metrics)}
	if o.wait != nil {
		gatewayOpts = append(gatewayOpts, generation.WithWait(o.wait))
	}
	policy := gemini.RetryPolicy(cfg.LLM)
	gateway, err := generation.NewGateway(model, policy, logger, gatewayOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation gateway: %w", err)
	}
	app.gateway = gateway
	logger.Info("Generation gateway initialized",
		"max_attempts", gateway.Policy().MaxAttempts,
		"initial_backoff", gateway.Policy().InitialDelay.String(),
		"retry_network_errors", cfg.LLM.RetryNetworkErrors)

	app.sessions = session.NewStore(logger)

	rec := service.WithRecorder(app.metrics)
	if app.knowledgeService, err = service.NewKnowledgeService(gateway, logger, rec); err != nil {
		return nil, fmt.Errorf("failed to create knowledge service: %w", err)
	}
	if app.clinicalService, err = service.NewClinicalService(gateway, app.sessions, logger, rec); err != nil {
		return nil, fmt.Errorf("failed to create clinical service: %w", err)
	}
	if app.scholarService, err = service.NewScholarService(gateway, app.sessions, logger, rec); err != nil {
		return nil, fmt.Errorf("failed to create scholar service: %w", err)
	}
	if app.patientService, err = service.NewPatientService(gateway, app.sessions, logger, rec); err != nil {
		return nil, fmt.Errorf("failed to create patient service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources. Sessions live
// only in memory and are discarded.
func (app *application) cleanup() {
	app.logger.Info("Application shutdown completed", "sessions_discarded", app.sessions.Len())
}
