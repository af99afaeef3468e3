package gestures

import (
	"time"

	"go.uber.org/zap"

	"github.com/zach-sndr/twitcanva/application/ports"
	"github.com/zach-sndr/twitcanva/application/workspace"
	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
	"github.com/zach-sndr/twitcanva/pkg/observability"
)

// Controller is the gesture disambiguator: the single pointer-event
// router. Every pointer-down selects exactly one gesture; subsequent
// moves are routed only to that gesture's updater until pointer-up
// resets to none.
//
// All pointer positions are screen coordinates relative to the canvas
// container, not raw client coordinates.
type Controller struct {
	ws      *workspace.Workspace
	logger  *zap.Logger
	metrics *observability.Metrics

	active Kind
	pan    panState
	box    boxState
	drag   nodeDragState
	conn   connDragState

	// now is injectable so click-vs-drag timing is testable.
	now func() time.Time
}

// NewController creates a gesture controller over a workspace
func NewController(ws *workspace.Workspace, logger *zap.Logger, metrics *observability.Metrics) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	return &Controller{
		ws:      ws,
		logger:  logger,
		metrics: metrics,
		active:  KindNone,
		now:     time.Now,
	}
}

// ActiveGesture returns the currently active gesture kind
func (c *Controller) ActiveGesture() Kind {
	return c.active
}

// PointerDown routes a pointer-down event. The target is derived by
// hit-testing: connector handles first, then node bodies, then the
// canvas background.
func (c *Controller) PointerDown(screen valueobjects.Point, button Button) {
	if c.active != KindNone {
		// A second pointer-down while a gesture owns the pointer is
		// ignored; one gesture at a time.
		return
	}

	canvasPoint := c.ws.Viewport().ScreenToCanvas(screen)

	if nodeID, side, ok := c.connectorAt(screen); ok && button == ButtonPrimary {
		c.startConnectionDrag(nodeID, side, screen)
		return
	}

	if node := c.ws.Canvas().NodeAt(canvasPoint); node != nil {
		if button != ButtonPrimary {
			return
		}
		c.startNodeDrag(node.ID(), canvasPoint)
		return
	}

	// Background press.
	if button == ButtonPrimary {
		c.startBoxSelect(screen)
	} else {
		c.startPan(screen)
	}
}

// PointerMove routes a pointer-move to the active gesture only
func (c *Controller) PointerMove(screen valueobjects.Point) {
	switch c.active {
	case KindPanning:
		c.updatePan(screen)
	case KindBoxSelecting:
		c.updateBoxSelect(screen)
	case KindDraggingNode:
		c.updateNodeDrag(screen)
	case KindDraggingConnection:
		c.updateConnectionDrag(screen)
	}
}

// PointerUp ends the active gesture, commits its effect, and resets to
// none (releasing pointer capture). A connector click may produce a
// NodeMenuRequest for the embedder to present.
func (c *Controller) PointerUp(screen valueobjects.Point) *NodeMenuRequest {
	defer func() { c.active = KindNone }()

	switch c.active {
	case KindPanning:
		c.updatePan(screen)
	case KindBoxSelecting:
		c.endBoxSelect(screen)
	case KindDraggingNode:
		c.endNodeDrag(screen)
	case KindDraggingConnection:
		return c.endConnectionDrag(screen)
	}
	return nil
}

// Escape clears the active selection and an in-progress box-select.
// There is no abort keybinding for drags; releasing the pointer is the
// only way to end one.
func (c *Controller) Escape() {
	if c.active == KindBoxSelecting {
		c.active = KindNone
		c.box = boxState{}
	}
	c.ws.CancelSelection()
}

// Zoom applies a wheel-zoom step anchored at the given screen point.
// Zoom is not a gesture: it can interleave with any pointer state.
func (c *Controller) Zoom(screen valueobjects.Point, factor float64) {
	c.ws.ZoomAt(screen, factor)
}

// CreateFromMenu resolves a NodeMenuRequest with the collaborator's
// choice, creating the node auto-connected on the grabbed side.
func (c *Controller) CreateFromMenu(req NodeMenuRequest, choice ports.MenuChoice) error {
	if choice.Delete {
		return c.ws.DeleteNode(req.SourceID)
	}

	if req.Side == SideOutput {
		// New node becomes the child, placed right of the source.
		source := req.SourceID
		_, err := c.ws.CreateNode(choice.NodeType, valueobjects.Point{}, &source)
		return err
	}

	// Grabbed the input side: the new node becomes a parent, placed to
	// the left of the source.
	source, err := c.ws.Canvas().Node(req.SourceID)
	if err != nil {
		return err
	}
	w, _ := choice.NodeType.Size()
	bounds := source.Bounds()
	gap := c.ws.Config().ChildPlacementGap
	at := valueobjects.MustPoint(bounds.MinX()-gap-w/2, bounds.MinY()+(bounds.MaxY()-bounds.MinY())/2)

	node, err := c.ws.CreateNode(choice.NodeType, at, nil)
	if err != nil {
		return err
	}
	if err := c.ws.Connect(node.ID(), req.SourceID); err != nil {
		// The source cannot accept this parent type; remove the
		// orphaned node rather than leaving it dangling.
		_ = c.ws.DeleteNode(node.ID())
		return err
	}
	return nil
}

// Pan gesture

func (c *Controller) startPan(screen valueobjects.Point) {
	c.active = KindPanning
	c.pan = panState{last: screen}
	// Panning clears connection selection and open menus but preserves
	// node selection.
	if c.ws.SelectedConnection() != nil {
		sel := c.ws.SelectedNodes()
		c.ws.ClearSelection()
		c.ws.SelectNodes(sel)
	}
	c.metrics.GesturesStarted.WithLabelValues(string(KindPanning)).Inc()
}

func (c *Controller) updatePan(screen valueobjects.Point) {
	dx, dy := screen.Sub(c.pan.last)
	c.ws.Pan(dx, dy)
	c.pan.last = screen
}

// Target derivation

// connectorAt hit-tests the connector handles of every node in screen
// space, topmost node first.
func (c *Controller) connectorAt(screen valueobjects.Point) (valueobjects.NodeID, ConnectorSide, bool) {
	vp := c.ws.Viewport()
	nodes := c.ws.Canvas().Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		node := nodes[i]
		in := vp.CanvasToScreen(node.InputAnchor())
		if in.DistanceTo(screen) <= connectorHitRadius {
			return node.ID(), SideInput, true
		}
		out := vp.CanvasToScreen(node.OutputAnchor())
		if out.DistanceTo(screen) <= connectorHitRadius {
			return node.ID(), SideOutput, true
		}
	}
	return valueobjects.NodeID{}, "", false
}
