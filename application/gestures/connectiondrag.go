package gestures

import (
	"errors"

	"go.uber.org/zap"

	"github.com/zach-sndr/twitcanva/application/workspace"
	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
)

// Connection drag: grabbing a connector handle and releasing over
// another node's input or output half. Which half the release lands on
// decides edge orientation; the legality rules decide whether it
// commits at all. A fast release with nothing hovered is a click that
// requests the "add next node" menu instead.

func (c *Controller) startConnectionDrag(sourceID valueobjects.NodeID, side ConnectorSide, screen valueobjects.Point) {
	c.active = KindDraggingConnection
	c.conn = connDragState{
		sourceID:  sourceID,
		side:      side,
		startedAt: c.now(),
		endScreen: screen,
	}
	c.metrics.GesturesStarted.WithLabelValues(string(KindDraggingConnection)).Inc()
}

func (c *Controller) updateConnectionDrag(screen valueobjects.Point) {
	c.conn.endScreen = screen

	canvasPoint := c.ws.Viewport().ScreenToCanvas(screen)
	c.conn.hovering = false

	node := c.ws.Canvas().NodeAt(canvasPoint)
	if node == nil || node.ID().Equals(c.conn.sourceID) {
		return
	}

	c.conn.hovering = true
	c.conn.hoverID = node.ID()
	if canvasPoint.X() < node.Bounds().MidX() {
		c.conn.hoverSide = SideInput
	} else {
		c.conn.hoverSide = SideOutput
	}
}

// endConnectionDrag commits the gesture, branching on elapsed time and
// hover state.
func (c *Controller) endConnectionDrag(screen valueobjects.Point) *NodeMenuRequest {
	c.updateConnectionDrag(screen)
	state := c.conn
	c.conn = connDragState{}

	elapsed := c.now().Sub(state.startedAt)

	if !state.hovering {
		if elapsed < c.ws.Config().ConnectorClickThreshold {
			// A click, not a drag: hand the embedder an anchored menu
			// request seeded with the source and grabbed side.
			return &NodeMenuRequest{
				SourceID: state.sourceID,
				Side:     state.side,
				Anchor:   state.endScreen,
			}
		}
		// Released over empty canvas: no mutation.
		return nil
	}

	var parentID, childID valueobjects.NodeID
	if state.hoverSide == SideInput {
		// Released on the hovered node's input side: the source feeds it.
		parentID, childID = state.sourceID, state.hoverID
	} else {
		// Released on the output side: the hovered node feeds the source.
		parentID, childID = state.hoverID, state.sourceID
	}

	if err := c.ws.Connect(parentID, childID); err != nil {
		// Rejected pairs abort with no mutation; anything else is
		// unexpected and worth a log line.
		if !errors.Is(err, workspace.ErrIllegalConnection) {
			c.logger.Warn("connection commit failed",
				zap.String("parentId", parentID.String()),
				zap.String("childId", childID.String()),
				zap.Error(err),
			)
		}
	}
	return nil
}

// ConnectionDragEndpoint exposes the live drag endpoint for rendering
// the elastic line, and whether a connection drag is active.
func (c *Controller) ConnectionDragEndpoint() (valueobjects.Point, bool) {
	if c.active != KindDraggingConnection {
		return valueobjects.Point{}, false
	}
	return c.conn.endScreen, true
}

// HoverTarget exposes the node and side the connection drag would
// commit against, for rendering the drop highlight.
func (c *Controller) HoverTarget() (valueobjects.NodeID, ConnectorSide, bool) {
	if c.active != KindDraggingConnection || !c.conn.hovering {
		return valueobjects.NodeID{}, "", false
	}
	return c.conn.hoverID, c.conn.hoverSide, true
}
