package gestures

import (
	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
)

// Box selection: a screen-space rectangle dragged over the background,
// resolved to a canvas-space node hit-test on release. Start and end
// corners may be in any order; the rectangle is normalized.

func (c *Controller) startBoxSelect(screen valueobjects.Point) {
	c.active = KindBoxSelecting
	c.box = boxState{start: screen, end: screen}

	// Starting a box-select clears the current selection, connection
	// selection and any open menus.
	c.ws.ClearSelection()
	c.metrics.GesturesStarted.WithLabelValues(string(KindBoxSelecting)).Inc()
}

func (c *Controller) updateBoxSelect(screen valueobjects.Point) {
	c.box.end = screen
}

// endBoxSelect converts the screen rectangle to canvas space and
// selects every node whose nominal bounding box intersects it.
func (c *Controller) endBoxSelect(screen valueobjects.Point) {
	c.box.end = screen
	screenRect := valueobjects.NewRect(c.box.start, c.box.end)
	canvasRect := c.ws.Viewport().ScreenRectToCanvas(screenRect)

	matched := c.ws.Canvas().NodesIntersecting(canvasRect)
	ids := make([]valueobjects.NodeID, len(matched))
	for i, node := range matched {
		ids[i] = node.ID()
	}
	c.ws.SelectNodes(ids)
	c.box = boxState{}
}

// BoxRect exposes the in-progress selection rectangle for rendering,
// normalized, and whether a box-select is active.
func (c *Controller) BoxRect() (valueobjects.Rect, bool) {
	if c.active != KindBoxSelecting {
		return valueobjects.Rect{}, false
	}
	return valueobjects.NewRect(c.box.start, c.box.end), true
}
