// Package generation dispatches asynchronous generation tasks for
// canvas nodes and applies their keyed, idempotent completions. Any
// number of nodes may be loading concurrently; completions arrive in
// any order and each updates only its own node.
package generation

import (
	"context"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/zach-sndr/twitcanva/application/ports"
	"github.com/zach-sndr/twitcanva/application/workspace"
	"github.com/zach-sndr/twitcanva/domain/config"
	"github.com/zach-sndr/twitcanva/domain/core/entities"
	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
	"github.com/zach-sndr/twitcanva/pkg/observability"
)

// Service runs one cancellable task per node id against the generation
// collaborator. A circuit breaker short-circuits dispatches into
// immediate node-scoped failures while the provider is unhealthy.
type Service struct {
	ws        *workspace.Workspace
	generator ports.Generator
	registry  *StatusRegistry
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger
	metrics   *observability.Metrics

	mu    sync.Mutex
	tasks map[valueobjects.NodeID]context.CancelFunc
	wg    sync.WaitGroup
}

// NewService creates a generation service
func NewService(
	ws *workspace.Workspace,
	generator ports.Generator,
	registry *StatusRegistry,
	cfg *config.DomainConfig,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *Service {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "generation-provider",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		Timeout: 30 * time.Second,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("generation breaker state change",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Service{
		ws:        ws,
		generator: generator,
		registry:  registry,
		breaker:   breaker,
		logger:    logger,
		metrics:   metrics,
		tasks:     make(map[valueobjects.NodeID]context.CancelFunc),
	}
}

// Dispatch resolves a node's inputs, marks it loading, and launches the
// asynchronous task. The call never blocks on the provider; the node's
// status transitions are the only visible effect of the suspension.
func (s *Service) Dispatch(ctx context.Context, id valueobjects.NodeID) error {
	req, err := s.ws.ResolveInputs(id)
	if err != nil {
		return err
	}
	if err := s.ws.BeginGeneration(id); err != nil {
		return err
	}
	s.registry.Set(id, entities.StatusLoading, "", "")
	s.metrics.GenerationsDispatched.Inc()

	// BeginGeneration conflicts while the node is loading, so at most
	// one task per node id can be in flight here.
	taskCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.tasks[id] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(taskCtx, req)

	s.logger.Info("generation dispatched",
		zap.String("nodeId", id.String()),
		zap.String("type", req.NodeType.String()),
		zap.Int("parentResults", len(req.ParentResults)),
	)
	return nil
}

// Cancel stops the in-flight task for a node, if any, and returns the
// node to idle so it can be dispatched again. A cancelled task reports
// no completion of its own.
func (s *Service) Cancel(id valueobjects.NodeID) {
	s.mu.Lock()
	cancel, ok := s.tasks[id]
	if ok {
		delete(s.tasks, id)
	}
	s.mu.Unlock()

	if !ok {
		return
	}
	cancel()
	s.registry.Delete(id)
	s.ws.ApplyGenerationCancel(id)
	s.logger.Info("generation cancelled", zap.String("nodeId", id.String()))
}

// Wait blocks until all in-flight tasks have finished. Used on
// shutdown and in tests.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) run(ctx context.Context, req ports.GenerationRequest) {
	defer s.wg.Done()
	start := time.Now()

	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.generator.Generate(ctx, req)
	})

	s.mu.Lock()
	if ctx.Err() == nil {
		delete(s.tasks, req.NodeID)
	}
	s.mu.Unlock()

	if ctx.Err() != nil {
		// Cancelled or shut down. Cancel already removed the map entry
		// and a re-dispatch may own it again, so leave both alone.
		return
	}

	s.metrics.GenerationDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		s.metrics.GenerationsFailed.Inc()
		s.registry.Set(req.NodeID, entities.StatusError, "", err.Error())
		// Failure is scoped to this node only; applying it to a node
		// deleted mid-flight is a no-op.
		s.ws.ApplyGenerationFailure(req.NodeID, err.Error())
		s.logger.Warn("generation failed",
			zap.String("nodeId", req.NodeID.String()),
			zap.Error(err),
		)
		return
	}

	url, _ := result.(string)
	s.metrics.GenerationsSucceeded.Inc()
	s.registry.Set(req.NodeID, entities.StatusSuccess, url, "")
	s.ws.ApplyGenerationSuccess(req.NodeID, url)
	s.logger.Info("generation succeeded",
		zap.String("nodeId", req.NodeID.String()),
		zap.Duration("elapsed", time.Since(start)),
	)
}
