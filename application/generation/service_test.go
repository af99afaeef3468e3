package generation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zach-sndr/twitcanva/application/ports"
	"github.com/zach-sndr/twitcanva/application/workspace"
	"github.com/zach-sndr/twitcanva/domain/core/entities"
	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
)

type generatorFunc func(ctx context.Context, req ports.GenerationRequest) (string, error)

func (f generatorFunc) Generate(ctx context.Context, req ports.GenerationRequest) (string, error) {
	return f(ctx, req)
}

func newTestService(t *testing.T, gen ports.Generator) (*Service, *workspace.Workspace, *StatusRegistry) {
	t.Helper()
	ws := workspace.New(nil, nil, nil, nil)
	registry := NewStatusRegistry(0, time.Hour)
	t.Cleanup(registry.Stop)
	return NewService(ws, gen, registry, nil, nil, nil), ws, registry
}

func TestDispatchSuccess(t *testing.T) {
	gen := generatorFunc(func(_ context.Context, req ports.GenerationRequest) (string, error) {
		assert.Equal(t, "a red fox", req.Prompt)
		return "https://cdn/fox.png", nil
	})
	svc, ws, registry := newTestService(t, gen)

	node, err := ws.CreateNode(valueobjects.NodeTypeImage, valueobjects.MustPoint(300, 200), nil)
	require.NoError(t, err)
	ws.SetPrompt(node.ID(), "a red fox")

	require.NoError(t, svc.Dispatch(context.Background(), node.ID()))

	// Loading is visible immediately, before the task completes.
	rec, ok := registry.Get(node.ID())
	require.True(t, ok)
	if rec.Status == entities.StatusLoading {
		got, gerr := ws.Canvas().Node(node.ID())
		require.NoError(t, gerr)
		assert.Equal(t, entities.StatusLoading, got.Status())
	}

	svc.Wait()

	got, err := ws.Canvas().Node(node.ID())
	require.NoError(t, err)
	assert.Equal(t, entities.StatusSuccess, got.Status())
	assert.Equal(t, "https://cdn/fox.png", got.ResultURL())

	rec, ok = registry.Get(node.ID())
	require.True(t, ok)
	assert.Equal(t, entities.StatusSuccess, rec.Status)
	assert.Equal(t, "https://cdn/fox.png", rec.ResultURL)
}

func TestDispatchFailure(t *testing.T) {
	gen := generatorFunc(func(context.Context, ports.GenerationRequest) (string, error) {
		return "", errors.New("provider rejected prompt")
	})
	svc, ws, registry := newTestService(t, gen)

	node, err := ws.CreateNode(valueobjects.NodeTypeVideo, valueobjects.MustPoint(0, 0), nil)
	require.NoError(t, err)

	require.NoError(t, svc.Dispatch(context.Background(), node.ID()))
	svc.Wait()

	got, err := ws.Canvas().Node(node.ID())
	require.NoError(t, err)
	assert.Equal(t, entities.StatusError, got.Status())
	assert.Equal(t, "provider rejected prompt", got.ErrorMessage())

	rec, ok := registry.Get(node.ID())
	require.True(t, ok)
	assert.Equal(t, entities.StatusError, rec.Status)
	assert.Equal(t, "provider rejected prompt", rec.Error)
}

func TestDispatchUnknownNode(t *testing.T) {
	svc, _, _ := newTestService(t, generatorFunc(func(context.Context, ports.GenerationRequest) (string, error) {
		t.Fatal("generator must not run for an unknown node")
		return "", nil
	}))
	err := svc.Dispatch(context.Background(), valueobjects.NewNodeID())
	assert.Error(t, err)
}

func TestDispatchRejectsWhileLoading(t *testing.T) {
	release := make(chan struct{})
	gen := generatorFunc(func(ctx context.Context, _ ports.GenerationRequest) (string, error) {
		select {
		case <-release:
			return "https://cdn/slow.png", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
	svc, ws, _ := newTestService(t, gen)

	node, err := ws.CreateNode(valueobjects.NodeTypeImage, valueobjects.MustPoint(0, 0), nil)
	require.NoError(t, err)

	require.NoError(t, svc.Dispatch(context.Background(), node.ID()))
	err = svc.Dispatch(context.Background(), node.ID())
	assert.Error(t, err, "a loading node cannot be dispatched again")

	close(release)
	svc.Wait()

	got, err := ws.Canvas().Node(node.ID())
	require.NoError(t, err)
	assert.Equal(t, entities.StatusSuccess, got.Status())
}

func TestCancelReturnsNodeToIdle(t *testing.T) {
	started := make(chan struct{})
	gen := generatorFunc(func(ctx context.Context, _ ports.GenerationRequest) (string, error) {
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	})
	svc, ws, registry := newTestService(t, gen)

	node, err := ws.CreateNode(valueobjects.NodeTypeImage, valueobjects.MustPoint(0, 0), nil)
	require.NoError(t, err)

	require.NoError(t, svc.Dispatch(context.Background(), node.ID()))
	<-started
	svc.Cancel(node.ID())
	svc.Wait()

	got, err := ws.Canvas().Node(node.ID())
	require.NoError(t, err)
	assert.Equal(t, entities.StatusIdle, got.Status())

	_, ok := registry.Get(node.ID())
	assert.False(t, ok, "cancellation removes the status record")
}

func TestDispatchAfterCancel(t *testing.T) {
	started := make(chan struct{})
	var calls atomic.Int32
	gen := generatorFunc(func(ctx context.Context, _ ports.GenerationRequest) (string, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "https://cdn/retry.png", nil
	})
	svc, ws, _ := newTestService(t, gen)

	node, err := ws.CreateNode(valueobjects.NodeTypeImage, valueobjects.MustPoint(0, 0), nil)
	require.NoError(t, err)

	require.NoError(t, svc.Dispatch(context.Background(), node.ID()))
	<-started
	svc.Cancel(node.ID())

	require.NoError(t, svc.Dispatch(context.Background(), node.ID()))
	svc.Wait()

	got, err := ws.Canvas().Node(node.ID())
	require.NoError(t, err)
	assert.Equal(t, entities.StatusSuccess, got.Status())
	assert.Equal(t, "https://cdn/retry.png", got.ResultURL())
}

func TestCancelUnknownNodeIsNoOp(t *testing.T) {
	svc, _, _ := newTestService(t, generatorFunc(func(context.Context, ports.GenerationRequest) (string, error) {
		return "", nil
	}))
	svc.Cancel(valueobjects.NewNodeID())
}

func TestCompletionAfterDeleteIsNoOp(t *testing.T) {
	release := make(chan struct{})
	gen := generatorFunc(func(ctx context.Context, _ ports.GenerationRequest) (string, error) {
		select {
		case <-release:
			return "https://cdn/late.png", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
	svc, ws, _ := newTestService(t, gen)

	node, err := ws.CreateNode(valueobjects.NodeTypeImage, valueobjects.MustPoint(0, 0), nil)
	require.NoError(t, err)

	require.NoError(t, svc.Dispatch(context.Background(), node.ID()))
	require.NoError(t, ws.DeleteNodes([]valueobjects.NodeID{node.ID()}))

	close(release)
	svc.Wait()

	_, err = ws.Canvas().Node(node.ID())
	assert.Error(t, err, "completion must not resurrect a deleted node")
}

func TestDispatchResolvesParentResults(t *testing.T) {
	var captured ports.GenerationRequest
	gen := generatorFunc(func(_ context.Context, req ports.GenerationRequest) (string, error) {
		captured = req
		return "https://cdn/out.mp4", nil
	})
	svc, ws, _ := newTestService(t, gen)

	parent, err := ws.CreateNode(valueobjects.NodeTypeImage, valueobjects.MustPoint(0, 0), nil)
	require.NoError(t, err)
	pid := parent.ID()
	child, err := ws.CreateNode(valueobjects.NodeTypeVideo, valueobjects.MustPoint(600, 0), &pid)
	require.NoError(t, err)

	ws.ApplyGenerationSuccess(pid, "https://cdn/frame.png")

	require.NoError(t, svc.Dispatch(context.Background(), child.ID()))
	svc.Wait()

	assert.Equal(t, child.ID(), captured.NodeID)
	assert.Equal(t, valueobjects.NodeTypeVideo, captured.NodeType)
	assert.Equal(t, []string{"https://cdn/frame.png"}, captured.ParentResults)
}

func TestBreakerShortCircuitsAfterConsecutiveFailures(t *testing.T) {
	var calls int
	gen := generatorFunc(func(context.Context, ports.GenerationRequest) (string, error) {
		calls++
		return "", errors.New("provider down")
	})
	svc, ws, _ := newTestService(t, gen)

	for i := 0; i < 6; i++ {
		node, err := ws.CreateNode(valueobjects.NodeTypeImage, valueobjects.MustPoint(float64(i)*400, 0), nil)
		require.NoError(t, err)
		require.NoError(t, svc.Dispatch(context.Background(), node.ID()))
		svc.Wait()

		got, gerr := ws.Canvas().Node(node.ID())
		require.NoError(t, gerr)
		assert.Equal(t, entities.StatusError, got.Status())
	}

	// The sixth dispatch fails fast without reaching the provider.
	assert.Equal(t, 5, calls)
}
