// Package di wires the application together. Providers are plain
// functions composed manually by InitializeContainer.
package di

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/zach-sndr/twitcanva/application/generation"
	"github.com/zach-sndr/twitcanva/application/gestures"
	"github.com/zach-sndr/twitcanva/application/ports"
	"github.com/zach-sndr/twitcanva/application/workspace"
	domainconfig "github.com/zach-sndr/twitcanva/domain/config"
	"github.com/zach-sndr/twitcanva/infrastructure/config"
	"github.com/zach-sndr/twitcanva/infrastructure/mediagen"
	"github.com/zach-sndr/twitcanva/infrastructure/persistence/workflow"
	"github.com/zach-sndr/twitcanva/pkg/observability"
)

// ProvideLogger creates a logger configured for the current environment
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideMetrics creates the metrics collectors, registered against a
// fresh registry when metrics are enabled.
func ProvideMetrics(cfg *config.Config) *observability.Metrics {
	if !cfg.EnableMetrics {
		return observability.NopMetrics()
	}
	return observability.NewMetrics(prometheus.NewRegistry())
}

// ProvideStore selects the configured persistence backend
func ProvideStore(cfg *config.Config, logger *zap.Logger) (workflow.Store, error) {
	if cfg.StoreBackend == "sqlite" {
		return workflow.NewSQLiteStore(cfg.DatabasePath, logger)
	}
	return workflow.NewFileStore(cfg.WorkflowDir, logger)
}

// ProvideGenerator selects the generation provider: the configured
// HTTP endpoint, or a local stub when none is set.
func ProvideGenerator(cfg *config.Config, logger *zap.Logger) ports.Generator {
	if cfg.GeneratorEndpoint != "" {
		return mediagen.NewHTTPGenerator(cfg.GeneratorEndpoint, logger)
	}
	return &mediagen.StubGenerator{}
}

// ProvideWorkspace creates the canvas workspace
func ProvideWorkspace(dc *domainconfig.DomainConfig, logger *zap.Logger, metrics *observability.Metrics) *workspace.Workspace {
	return workspace.New(dc, workspace.NewMemoryDefaults(), logger, metrics)
}

// ProvideGestureController creates the pointer gesture controller
func ProvideGestureController(ws *workspace.Workspace, logger *zap.Logger, metrics *observability.Metrics) *gestures.Controller {
	return gestures.NewController(ws, logger, metrics)
}

// ProvideStatusRegistry creates the generation status registry
func ProvideStatusRegistry(dc *domainconfig.DomainConfig) *generation.StatusRegistry {
	return generation.NewStatusRegistry(dc.GenerationStatusTTL, dc.StatusSweepInterval)
}

// ProvideGenerationService creates the async generation service
func ProvideGenerationService(
	ws *workspace.Workspace,
	generator ports.Generator,
	registry *generation.StatusRegistry,
	dc *domainconfig.DomainConfig,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *generation.Service {
	return generation.NewService(ws, generator, registry, dc, logger, metrics)
}
