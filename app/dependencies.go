package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/upb/inventory-api/auth"
	"github.com/upb/inventory-api/cognito"
	"github.com/upb/inventory-api/config"
	"github.com/upb/inventory-api/internal/observability"
	"github.com/upb/inventory-api/middleware"
	"github.com/upb/inventory-api/repositories"
	"github.com/upb/inventory-api/repositories/postgres"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB // nil when DATABASE_URL is not set
	Logger *zap.Logger

	// Observability. Registry is nil when metrics are disabled.
	Registry *prometheus.Registry
	Metrics  observability.AuthMetrics

	// Repositories
	AuthEvents repositories.AuthEventRepository

	// Auth
	Verifiers *cognito.VerifierFactory
	Pipeline  *auth.Pipeline
	AuthGuard *middleware.AuthGuard
}

// NewDependencies creates and wires up all application dependencies.
// factoryOpts are passed through to the Cognito verifier factory.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger, factoryOpts ...cognito.FactoryOption) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	// Initialize PostgreSQL (optional)
	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initMetrics(cfg)

	// Initialize auth pipeline and guard
	if err := deps.initAuth(cfg, factoryOpts); err != nil {
		_ = deps.Close(ctx)
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase connects the auth audit database when one is configured
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	if cfg.Database == nil {
		d.Logger.Info("DATABASE_URL not set, auth audit trail disabled")
		return nil
	}

	db, err := postgres.NewDB(cfg.Database, d.Logger)
	if err != nil {
		return err
	}

	if err := db.InitSchema(ctx); err != nil {
		_ = db.Close()
		return err
	}

	d.DB = db
	d.AuthEvents = postgres.NewAuthEventRepository(db, d.Logger)

	d.Logger.Info("repositories initialized")
	return nil
}

// initMetrics creates a dedicated Prometheus registry
func (d *Dependencies) initMetrics(cfg *config.Config) {
	if !cfg.Observability.MetricsEnabled {
		d.Metrics = observability.NoopMetrics{}
		return
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	d.Registry = registry
	d.Metrics = observability.NewPrometheusMetrics(registry)
}

func (d *Dependencies) initAuth(cfg *config.Config, factoryOpts []cognito.FactoryOption) error {
	mode, err := auth.ParseMode(cfg.Auth.Mode)
	if err != nil {
		return err
	}

	d.Verifiers = cognito.NewVerifierFactory(cognito.Config{
		Region:     cfg.Cognito.Region,
		UserPoolID: cfg.Cognito.UserPoolID,
		ClientID:   cfg.Cognito.ClientID,
		JWKSURL:    cfg.Cognito.JWKSURL,
	}, d.Logger, factoryOpts...)

	if mode == auth.ModeStrict && !cfg.Cognito.VerificationConfigured() {
		d.Logger.Warn("strict auth mode without COGNITO_USER_POOL_ID, tokens will only be decoded")
	}
	if mode == auth.ModePermissive && cfg.IsProduction() {
		d.Logger.Warn("permissive auth mode in production, token signatures are not verified")
	}

	d.Pipeline = auth.NewPipeline(d.Verifiers,
		auth.WithMode(mode),
		auth.WithLogger(d.Logger),
		auth.WithMetrics(d.Metrics),
	)

	var guardOpts []middleware.GuardOption
	if d.AuthEvents != nil {
		guardOpts = append(guardOpts, middleware.WithAuthEventRecorder(d.AuthEvents))
	}
	d.AuthGuard = middleware.NewAuthGuard(d.Pipeline, d.Logger, guardOpts...)

	d.Logger.Info("auth pipeline initialized",
		zap.String("mode", string(mode)),
		zap.Bool("access_verification", d.Verifiers.Configured(cognito.TokenUseAccess)),
		zap.Bool("id_verification", d.Verifiers.Configured(cognito.TokenUseID)),
		zap.Bool("audit_trail", d.AuthEvents != nil))
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	// Stop JWKS refresh goroutines
	if d.Verifiers != nil {
		d.Verifiers.Close()
	}

	// Close database connection
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
		d.DB = nil
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
