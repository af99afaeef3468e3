// Package gestures routes pointer events into exactly one active
// direct-manipulation engine: pan, box-select, node-drag or
// connection-drag. Mutual exclusion between gestures is the core
// correctness property of this package; two engines never read or
// write overlapping state concurrently.
package gestures

import (
	"time"

	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
)

// Kind identifies the active gesture.
type Kind string

const (
	KindNone               Kind = "none"
	KindPanning            Kind = "panning"
	KindBoxSelecting       Kind = "box_selecting"
	KindDraggingNode       Kind = "dragging_node"
	KindDraggingConnection Kind = "dragging_connection"
)

// Button is the pointer button pressed on pointer-down.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonMiddle
)

// ConnectorSide identifies which connector handle a gesture grabbed or
// which half of a hovered node a release landed on. Left is the input
// side, right is the output side.
type ConnectorSide string

const (
	SideInput  ConnectorSide = "input"
	SideOutput ConnectorSide = "output"
)

// NodeMenuRequest is produced when a connector press is released
// quickly with no node hovered: a click, not a drag. The embedder
// presents an "add next node" menu anchored at the source connector,
// seeded with the source id and grabbed side.
type NodeMenuRequest struct {
	SourceID valueobjects.NodeID
	Side     ConnectorSide
	Anchor   valueobjects.Point // container-relative screen position
}

// connectorHitRadius is the screen-space radius around a connector
// anchor that counts as grabbing the handle rather than the node body.
const connectorHitRadius = 14.0

// panState tracks the last pointer position while panning.
type panState struct {
	last valueobjects.Point
}

// boxState is the in-progress selection rectangle in screen
// coordinates relative to the canvas container.
type boxState struct {
	start valueobjects.Point
	end   valueobjects.Point
}

// nodeDragState is the per-node offset table recorded at drag start.
// Applying the same canvas-space delta to every origin keeps
// multi-node drags rigid.
type nodeDragState struct {
	startCanvas valueobjects.Point
	origins     map[valueobjects.NodeID]valueobjects.Point
}

// connDragState tracks a connection drag from a connector handle.
type connDragState struct {
	sourceID  valueobjects.NodeID
	side      ConnectorSide
	startedAt time.Time
	endScreen valueobjects.Point

	hoverID   valueobjects.NodeID
	hoverSide ConnectorSide
	hovering  bool
}
