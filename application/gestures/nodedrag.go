package gestures

import (
	"go.uber.org/zap"

	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
)

// Node drag: multi-node relative-offset dragging. Every dragged node's
// origin is recorded at gesture start and the same canvas-space delta
// is applied to all of them on each move, so the set moves rigidly.

func (c *Controller) startNodeDrag(grabbed valueobjects.NodeID, canvasPoint valueobjects.Point) {
	// Click-drag on a selected node drags the whole selection; on an
	// unselected node it selects just that node first.
	if !c.ws.IsSelected(grabbed) {
		c.ws.SelectNode(grabbed, false)
	}

	// Group cohesion: members of any touched group move with it.
	dragSet := make(map[valueobjects.NodeID]bool)
	for _, id := range c.ws.SelectedNodes() {
		for _, member := range c.ws.Canvas().GroupMembers(id) {
			dragSet[member] = true
		}
	}

	origins := make(map[valueobjects.NodeID]valueobjects.Point, len(dragSet))
	for id := range dragSet {
		node, err := c.ws.Canvas().Node(id)
		if err != nil {
			continue
		}
		origins[id] = node.Position()
	}

	c.active = KindDraggingNode
	c.drag = nodeDragState{startCanvas: canvasPoint, origins: origins}

	// Suppress history until the drag settles; one entry per drag, not
	// one per move tick.
	c.ws.BeginContinuousGesture()
	c.metrics.GesturesStarted.WithLabelValues(string(KindDraggingNode)).Inc()
}

func (c *Controller) updateNodeDrag(screen valueobjects.Point) {
	canvasPoint := c.ws.Viewport().ScreenToCanvas(screen)
	dx, dy := canvasPoint.Sub(c.drag.startCanvas)
	for id, origin := range c.drag.origins {
		c.ws.MoveNode(id, origin.Translate(dx, dy))
	}
}

// endNodeDrag stops the drag. No snapping or rounding is applied; the
// deferred settle records a single history entry.
func (c *Controller) endNodeDrag(screen valueobjects.Point) {
	c.updateNodeDrag(screen)
	c.ws.EndContinuousGesture()
	c.logger.Debug("node drag ended", zap.Int("nodes", len(c.drag.origins)))
	c.drag = nodeDragState{}
}
