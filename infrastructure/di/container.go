package di

import (
	"go.uber.org/zap"

	"github.com/zach-sndr/twitcanva/application/generation"
	"github.com/zach-sndr/twitcanva/application/gestures"
	"github.com/zach-sndr/twitcanva/application/ports"
	"github.com/zach-sndr/twitcanva/application/workspace"
	domainconfig "github.com/zach-sndr/twitcanva/domain/config"
	"github.com/zach-sndr/twitcanva/infrastructure/config"
	"github.com/zach-sndr/twitcanva/infrastructure/persistence/workflow"
	"github.com/zach-sndr/twitcanva/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	DomainConfig *domainconfig.DomainConfig
	Logger       *zap.Logger
	Metrics      *observability.Metrics
	Store        workflow.Store
	Generator    ports.Generator
	Workspace    *workspace.Workspace
	Gestures     *gestures.Controller
	Statuses     *generation.StatusRegistry
	Generation   *generation.Service
}

// InitializeContainer creates a fully wired container
func InitializeContainer(cfg *config.Config) (*Container, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}

	metrics := ProvideMetrics(cfg)

	store, err := ProvideStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	dc := cfg.DomainConfig()
	ws := ProvideWorkspace(dc, logger, metrics)
	controller := ProvideGestureController(ws, logger, metrics)
	generator := ProvideGenerator(cfg, logger)
	registry := ProvideStatusRegistry(dc)
	genService := ProvideGenerationService(ws, generator, registry, dc, logger, metrics)

	return &Container{
		Config:       cfg,
		DomainConfig: dc,
		Logger:       logger,
		Metrics:      metrics,
		Store:        store,
		Generator:    generator,
		Workspace:    ws,
		Gestures:     controller,
		Statuses:     registry,
		Generation:   genService,
	}, nil
}

// Shutdown releases long-lived resources: in-flight generations are
// awaited, the status registry's sweeper stops, and any database
// handle closes.
func (c *Container) Shutdown() {
	c.Generation.Wait()
	c.Statuses.Stop()
	if closer, ok := c.Store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			c.Logger.Warn("failed to close store", zap.Error(err))
		}
	}
	_ = c.Logger.Sync()
}
