package events

import (
	"time"

	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// Node events

// NodeAdded is raised when a new node is placed on the canvas
type NodeAdded struct {
	BaseEvent
	NodeID   valueobjects.NodeID   `json:"node_id"`
	NodeType valueobjects.NodeType `json:"node_type"`
}

// NewNodeAdded creates a NodeAdded event
func NewNodeAdded(nodeID valueobjects.NodeID, nodeType valueobjects.NodeType, timestamp time.Time) NodeAdded {
	return NodeAdded{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "canvas.node_added",
			Timestamp:   timestamp,
		},
		NodeID:   nodeID,
		NodeType: nodeType,
	}
}

// NodeMoved is raised when a node is moved to a new position
type NodeMoved struct {
	BaseEvent
	NodeID      valueobjects.NodeID `json:"node_id"`
	OldPosition valueobjects.Point  `json:"-"`
	NewPosition valueobjects.Point  `json:"-"`
}

// NewNodeMoved creates a NodeMoved event
func NewNodeMoved(nodeID valueobjects.NodeID, oldPos, newPos valueobjects.Point, timestamp time.Time) NodeMoved {
	return NodeMoved{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "canvas.node_moved",
			Timestamp:   timestamp,
		},
		NodeID:      nodeID,
		OldPosition: oldPos,
		NewPosition: newPos,
	}
}

// NodeUpdated is raised when node content or generation state changes
type NodeUpdated struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
	Field  string              `json:"field"`
}

// NewNodeUpdated creates a NodeUpdated event
func NewNodeUpdated(nodeID valueobjects.NodeID, field string, timestamp time.Time) NodeUpdated {
	return NodeUpdated{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "canvas.node_updated",
			Timestamp:   timestamp,
		},
		NodeID: nodeID,
		Field:  field,
	}
}

// NodeRemoved is raised when a node is deleted from the canvas
type NodeRemoved struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
}

// NewNodeRemoved creates a NodeRemoved event
func NewNodeRemoved(nodeID valueobjects.NodeID, timestamp time.Time) NodeRemoved {
	return NodeRemoved{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "canvas.node_removed",
			Timestamp:   timestamp,
		},
		NodeID: nodeID,
	}
}

// Edge events

// NodesConnected is raised when a parent link is added
type NodesConnected struct {
	BaseEvent
	ParentID valueobjects.NodeID `json:"parent_id"`
	ChildID  valueobjects.NodeID `json:"child_id"`
}

// NewNodesConnected creates a NodesConnected event
func NewNodesConnected(parentID, childID valueobjects.NodeID, timestamp time.Time) NodesConnected {
	return NodesConnected{
		BaseEvent: BaseEvent{
			AggregateID: childID.String(),
			EventType:   "canvas.nodes_connected",
			Timestamp:   timestamp,
		},
		ParentID: parentID,
		ChildID:  childID,
	}
}

// NodesDisconnected is raised when a parent link is removed
type NodesDisconnected struct {
	BaseEvent
	ParentID valueobjects.NodeID `json:"parent_id"`
	ChildID  valueobjects.NodeID `json:"child_id"`
}

// NewNodesDisconnected creates a NodesDisconnected event
func NewNodesDisconnected(parentID, childID valueobjects.NodeID, timestamp time.Time) NodesDisconnected {
	return NodesDisconnected{
		BaseEvent: BaseEvent{
			AggregateID: childID.String(),
			EventType:   "canvas.nodes_disconnected",
			Timestamp:   timestamp,
		},
		ParentID: parentID,
		ChildID:  childID,
	}
}

// Group events

// GroupFormed is raised when a multi-selection is grouped
type GroupFormed struct {
	BaseEvent
	GroupID valueobjects.GroupID  `json:"group_id"`
	NodeIDs []valueobjects.NodeID `json:"node_ids"`
}

// NewGroupFormed creates a GroupFormed event
func NewGroupFormed(groupID valueobjects.GroupID, nodeIDs []valueobjects.NodeID, timestamp time.Time) GroupFormed {
	return GroupFormed{
		BaseEvent: BaseEvent{
			AggregateID: groupID.String(),
			EventType:   "canvas.group_formed",
			Timestamp:   timestamp,
		},
		GroupID: groupID,
		NodeIDs: nodeIDs,
	}
}

// GroupDissolved is raised when a group is ungrouped or pruned after
// falling below two members
type GroupDissolved struct {
	BaseEvent
	GroupID valueobjects.GroupID `json:"group_id"`
}

// NewGroupDissolved creates a GroupDissolved event
func NewGroupDissolved(groupID valueobjects.GroupID, timestamp time.Time) GroupDissolved {
	return GroupDissolved{
		BaseEvent: BaseEvent{
			AggregateID: groupID.String(),
			EventType:   "canvas.group_dissolved",
			Timestamp:   timestamp,
		},
		GroupID: groupID,
	}
}
