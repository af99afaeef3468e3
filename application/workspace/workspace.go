// Package workspace coordinates the canvas aggregate with selection,
// viewport, history and clipboard state. Every interaction engine
// mutates the graph through a Workspace so history observes settled,
// consistent transitions only.
package workspace

import (
	"sync"

	"go.uber.org/zap"

	"github.com/zach-sndr/twitcanva/application/history"
	"github.com/zach-sndr/twitcanva/application/ports"
	"github.com/zach-sndr/twitcanva/application/services"
	"github.com/zach-sndr/twitcanva/domain/config"
	"github.com/zach-sndr/twitcanva/domain/connection"
	"github.com/zach-sndr/twitcanva/domain/core/aggregates"
	"github.com/zach-sndr/twitcanva/domain/core/entities"
	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
	"github.com/zach-sndr/twitcanva/pkg/observability"
)

// Workspace owns the live canvas and the transient interaction state
// around it. Graph mutation is single-writer: the mutex serializes the
// UI gesture path with asynchronous generation completions.
type Workspace struct {
	mu sync.Mutex

	cfg      *config.DomainConfig
	canvas   *aggregates.Canvas
	viewport valueobjects.Viewport
	history  *history.History

	selection selectionState
	clipboard []*entities.Node

	defaults   ports.DefaultsProvider
	propagator *services.PromptPropagator

	logger  *zap.Logger
	metrics *observability.Metrics

	// gestureActive suppresses history pushes while a continuous
	// gesture (node drag) is in progress; pendingSettle remembers that
	// a settle is owed once it ends.
	gestureActive bool
	pendingSettle bool

	// suppressNextPush is the replay guard: set before applying a
	// history state so the resulting observation does not re-push the
	// state it just restored.
	suppressNextPush bool
}

// New creates a workspace around an empty canvas
func New(cfg *config.DomainConfig, defaults ports.DefaultsProvider, logger *zap.Logger, metrics *observability.Metrics) *Workspace {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	if defaults == nil {
		defaults = NewMemoryDefaults()
	}

	canvas := aggregates.NewCanvas("", cfg)
	return &Workspace{
		cfg:        cfg,
		canvas:     canvas,
		viewport:   valueobjects.NewViewport(cfg),
		history:    history.New(canvas.Snapshot(), cfg.MaxHistoryDepth),
		defaults:   defaults,
		propagator: services.NewPromptPropagator(logger),
		logger:     logger,
		metrics:    metrics,
	}
}

// Canvas returns the live aggregate. Callers must treat it as read-only
// and route mutation through Workspace methods.
func (w *Workspace) Canvas() *aggregates.Canvas {
	return w.canvas
}

// Config returns the domain configuration
func (w *Workspace) Config() *config.DomainConfig {
	return w.cfg
}

// Title returns the workflow title
func (w *Workspace) Title() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canvas.Title()
}

// SetTitle renames the workflow
func (w *Workspace) SetTitle(title string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.canvas.SetTitle(title)
}

// Viewport

// Viewport returns the current pan/zoom state
func (w *Workspace) Viewport() valueobjects.Viewport {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewport
}

// Pan translates the viewport by a screen-space delta. Viewport changes
// are transient and never enter history.
func (w *Workspace) Pan(dx, dy float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.viewport = w.viewport.Pan(dx, dy)
}

// ZoomAt scales the viewport anchored at the given screen point
func (w *Workspace) ZoomAt(screen valueobjects.Point, factor float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.viewport = w.viewport.ZoomAt(screen, factor)
}

// SetViewport replaces the viewport wholesale (workflow load)
func (w *Workspace) SetViewport(v valueobjects.Viewport) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.viewport = v
}

// Node operations

// CreateNode places a new node of the given type at a canvas position,
// optionally linked to a parent, and applies the type's remembered
// defaults.
func (w *Workspace) CreateNode(nodeType valueobjects.NodeType, position valueobjects.Point, parentID *valueobjects.NodeID) (*entities.Node, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	node, err := w.canvas.CreateNode(nodeType, position, parentID)
	if err != nil {
		return nil, err
	}

	if model, settings := w.defaults.DefaultsFor(nodeType); model != "" || len(settings) > 0 {
		node.ApplySettings(model, settings)
	}

	if parentID != nil {
		w.propagator.OnConnected(w.canvas, *parentID, node.ID(), services.NewPropagationToken())
	}

	w.logger.Info("node created",
		zap.String("nodeId", node.ID().String()),
		zap.String("type", nodeType.String()),
	)
	w.observe()
	return node, nil
}

// SetPrompt updates a node's prompt text
func (w *Workspace) SetPrompt(id valueobjects.NodeID, prompt string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.canvas.SetNodePrompt(id, prompt)
	w.observe()
}

// ApplySettings sets a node's model/settings and remembers them as the
// new defaults for that type
func (w *Workspace) ApplySettings(id valueobjects.NodeID, model string, settings map[string]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	node, err := w.canvas.Node(id)
	if err != nil {
		return err
	}
	node.ApplySettings(model, settings)
	w.defaults.Remember(node.Type(), model, settings)
	w.observe()
	return nil
}

// MoveNode repositions one node. Called per move tick during a drag;
// history pushes are suppressed until the drag settles.
func (w *Workspace) MoveNode(id valueobjects.NodeID, position valueobjects.Point) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.canvas.MoveNode(id, position)
	w.observe()
}

// DeleteNode removes one node and everything referencing it
func (w *Workspace) DeleteNode(id valueobjects.NodeID) error {
	return w.DeleteNodes([]valueobjects.NodeID{id})
}

// DeleteNodes removes the given nodes, clearing them from the selection
func (w *Workspace) DeleteNodes(ids []valueobjects.NodeID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.canvas.DeleteNodes(ids); err != nil {
		return err
	}
	for _, id := range ids {
		w.selection.removeNode(id)
	}
	w.selection.dropConnectionIfGone(w.canvas)
	w.observe()
	return nil
}

// DeleteSelection deletes whatever is selected: the selected connection
// if one is, otherwise the selected nodes.
func (w *Workspace) DeleteSelection() error {
	w.mu.Lock()
	edge := w.selection.connection
	nodes := w.selection.nodeList()
	w.mu.Unlock()

	if edge != nil {
		return w.Disconnect(edge.ParentID, edge.ChildID)
	}
	if len(nodes) == 0 {
		return nil
	}
	return w.DeleteNodes(nodes)
}

// Connections

// Connect commits a parent->child edge after consulting the legality
// rules. An illegal pair is a silent no-op for gestures; callers that
// need the reason get ErrIllegalConnection.
func (w *Workspace) Connect(parentID, childID valueobjects.NodeID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connectLocked(parentID, childID)
}

func (w *Workspace) connectLocked(parentID, childID valueobjects.NodeID) error {
	parent, err := w.canvas.Node(parentID)
	if err != nil {
		return err
	}
	child, err := w.canvas.Node(childID)
	if err != nil {
		return err
	}

	if !connection.IsValidConnection(parent.Type(), child.Type()) {
		w.metrics.EdgesRejected.Inc()
		w.logger.Debug("connection rejected by legality rules",
			zap.String("parentType", parent.Type().String()),
			zap.String("childType", child.Type().String()),
		)
		return ErrIllegalConnection
	}

	if err := w.canvas.AddParent(childID, parentID); err != nil {
		w.metrics.EdgesRejected.Inc()
		return err
	}

	w.metrics.EdgesCreated.Inc()
	w.propagator.OnConnected(w.canvas, parentID, childID, services.NewPropagationToken())
	w.observe()
	return nil
}

// Disconnect removes one parent link; neither node is deleted
func (w *Workspace) Disconnect(parentID, childID valueobjects.NodeID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.canvas.RemoveParent(childID, parentID); err != nil {
		return err
	}
	w.selection.dropConnectionIfGone(w.canvas)
	w.observe()
	return nil
}

// Grouping

// GroupSelection forms a group over the current multi-selection
func (w *Workspace) GroupSelection(label string) (*entities.NodeGroup, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	group, err := w.canvas.GroupNodes(w.selection.nodeList(), label)
	if err != nil {
		return nil, err
	}
	w.observe()
	return group, nil
}

// UngroupSelection dissolves every group touched by the selection
func (w *Workspace) UngroupSelection() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	seen := make(map[valueobjects.GroupID]bool)
	for _, id := range w.selection.nodeList() {
		node, err := w.canvas.Node(id)
		if err != nil {
			continue
		}
		gid := node.GroupID()
		if gid.IsZero() || seen[gid] {
			continue
		}
		seen[gid] = true
		if err := w.canvas.Ungroup(gid); err != nil {
			return err
		}
	}
	w.observe()
	return nil
}

// History

// Undo steps one snapshot back and applies it to the live store. The
// replay guard suppresses the push that the resulting observation would
// otherwise fire.
func (w *Workspace) Undo() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap, ok := w.history.Undo()
	if !ok {
		return false
	}
	w.applyHistoryState(snap)
	w.metrics.UndoOperations.Inc()
	return true
}

// Redo steps one snapshot forward
func (w *Workspace) Redo() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap, ok := w.history.Redo()
	if !ok {
		return false
	}
	w.applyHistoryState(snap)
	w.metrics.RedoOperations.Inc()
	return true
}

// CanUndo reports whether an undo step is available
func (w *Workspace) CanUndo() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.history.CanUndo()
}

// CanRedo reports whether a redo step is available
func (w *Workspace) CanRedo() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.history.CanRedo()
}

func (w *Workspace) applyHistoryState(snap aggregates.CanvasSnapshot) {
	w.suppressNextPush = true
	w.canvas.Restore(snap)
	w.selection.reconcile(w.canvas)
	w.observe()
	// The guard is scoped to this restore. Restore commits its events,
	// so observe may not have consumed the flag; clearing here keeps it
	// from swallowing the push for the next real mutation.
	w.suppressNextPush = false
}

// BeginContinuousGesture suspends history pushes until the matching
// EndContinuousGesture, so a drag settles as one entry instead of one
// per move tick.
func (w *Workspace) BeginContinuousGesture() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.gestureActive = true
}

// EndContinuousGesture resumes history pushes and settles once if the
// gesture changed anything.
func (w *Workspace) EndContinuousGesture() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.gestureActive = false
	if w.pendingSettle {
		w.pendingSettle = false
		w.pushHistory()
	}
}

// Load replaces the entire workspace state from a persisted document:
// store replaced wholesale, selection cleared, history re-rooted at a
// fresh baseline.
func (w *Workspace) Load(canvas *aggregates.Canvas, viewport valueobjects.Viewport) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.canvas = canvas
	w.viewport = viewport
	w.selection.clearAll()
	w.history.Reset(canvas.Snapshot())
	w.suppressNextPush = false
	w.pendingSettle = false
	w.metrics.NodesOnCanvas.Set(float64(canvas.NodeCount()))
	w.logger.Info("workflow loaded",
		zap.String("title", canvas.Title()),
		zap.Int("nodes", canvas.NodeCount()),
	)
}

// observe is the single observation point called after every mutation
// with the lock held. It drains domain events, updates gauges, and
// pushes a history snapshot unless a continuous gesture or the replay
// guard suppresses it.
func (w *Workspace) observe() {
	events := w.canvas.GetUncommittedEvents()
	w.canvas.MarkEventsAsCommitted()
	w.metrics.NodesOnCanvas.Set(float64(w.canvas.NodeCount()))

	if len(events) == 0 {
		return
	}

	if w.gestureActive {
		w.pendingSettle = true
		return
	}
	if w.suppressNextPush {
		w.suppressNextPush = false
		return
	}
	w.pushHistory()
}

func (w *Workspace) pushHistory() {
	w.history.Push(w.canvas.Snapshot())
	w.metrics.HistoryPushes.Inc()
	w.metrics.UndoDepth.Set(float64(w.history.UndoDepth()))
}
