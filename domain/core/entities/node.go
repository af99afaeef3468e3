package entities

import (
	"fmt"
	"time"

	"github.com/zach-sndr/twitcanva/domain/config"
	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
	"github.com/zach-sndr/twitcanva/domain/events"
	pkgerrors "github.com/zach-sndr/twitcanva/pkg/errors"
)

// GenerationStatus represents the generation lifecycle state of a node
type GenerationStatus string

const (
	StatusIdle    GenerationStatus = "idle"
	StatusLoading GenerationStatus = "loading"
	StatusSuccess GenerationStatus = "success"
	StatusError   GenerationStatus = "error"
)

// Node is the main entity representing one generation step or content
// unit on the canvas. This is a rich domain model with encapsulated
// business logic; all mutation goes through methods so the canvas
// aggregate observes consistent transitions.
type Node struct {
	id           valueobjects.NodeID
	nodeType     valueobjects.NodeType
	position     valueobjects.Point
	prompt       string
	model        string
	settings     map[string]string
	status       GenerationStatus
	resultURL    string
	errorMessage string
	parentIDs    []valueobjects.NodeID
	groupID      valueobjects.GroupID // weak back-reference; the group owns membership
	createdAt    time.Time
	updatedAt    time.Time

	// Domain events that occurred during this entity's lifetime
	events []events.DomainEvent
}

// NewNode creates a new node with business rule validation
func NewNode(nodeType valueobjects.NodeType, position valueobjects.Point) (*Node, error) {
	if !nodeType.IsValid() {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("invalid node type %q", nodeType))
	}

	now := time.Now()
	node := &Node{
		id:        valueobjects.NewNodeID(),
		nodeType:  nodeType,
		position:  position,
		settings:  make(map[string]string),
		status:    StatusIdle,
		parentIDs: []valueobjects.NodeID{},
		createdAt: now,
		updatedAt: now,
		events:    []events.DomainEvent{},
	}

	node.addEvent(events.NewNodeAdded(node.id, nodeType, now))

	return node, nil
}

// ReconstructNode recreates a node from persisted data with preserved
// identity and timestamps. No creation event is raised.
func ReconstructNode(
	id valueobjects.NodeID,
	nodeType valueobjects.NodeType,
	position valueobjects.Point,
	prompt string,
	status GenerationStatus,
	resultURL string,
	errorMessage string,
	parentIDs []valueobjects.NodeID,
	createdAt, updatedAt time.Time,
) (*Node, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node ID is required")
	}
	if !nodeType.IsValid() {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("invalid node type %q", nodeType))
	}

	// Deduplicate defensively: parentIDs is a set semantically even
	// though the order of first connection is preserved.
	parents := make([]valueobjects.NodeID, 0, len(parentIDs))
	for _, pid := range parentIDs {
		if pid.IsZero() || pid.Equals(id) {
			continue
		}
		dup := false
		for _, existing := range parents {
			if existing.Equals(pid) {
				dup = true
				break
			}
		}
		if !dup {
			parents = append(parents, pid)
		}
	}

	if status == "" {
		status = StatusIdle
	}

	return &Node{
		id:           id,
		nodeType:     nodeType,
		position:     position,
		prompt:       prompt,
		settings:     make(map[string]string),
		status:       status,
		resultURL:    resultURL,
		errorMessage: errorMessage,
		parentIDs:    parents,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
		events:       []events.DomainEvent{},
	}, nil
}

// ID returns the node's unique identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// Type returns the node's type
func (n *Node) Type() valueobjects.NodeType {
	return n.nodeType
}

// Position returns the node's canvas-space position (card top-left)
func (n *Node) Position() valueobjects.Point {
	return n.position
}

// Prompt returns the node's prompt text
func (n *Node) Prompt() string {
	return n.prompt
}

// Model returns the generation model chosen for this node
func (n *Node) Model() string {
	return n.model
}

// Settings returns a copy of the node's generation settings
func (n *Node) Settings() map[string]string {
	settings := make(map[string]string, len(n.settings))
	for k, v := range n.settings {
		settings[k] = v
	}
	return settings
}

// Status returns the node's generation status
func (n *Node) Status() GenerationStatus {
	return n.status
}

// ResultURL returns the generation result location, if any
func (n *Node) ResultURL() string {
	return n.resultURL
}

// ErrorMessage returns the last generation failure message, if any
func (n *Node) ErrorMessage() string {
	return n.errorMessage
}

// GroupID returns the group this node belongs to (zero when ungrouped)
func (n *Node) GroupID() valueobjects.GroupID {
	return n.groupID
}

// CreatedAt returns when the node was created
func (n *Node) CreatedAt() time.Time {
	return n.createdAt
}

// UpdatedAt returns when the node was last updated
func (n *Node) UpdatedAt() time.Time {
	return n.updatedAt
}

// ParentIDs returns the node's parent links in first-connection order
func (n *Node) ParentIDs() []valueobjects.NodeID {
	parents := make([]valueobjects.NodeID, len(n.parentIDs))
	copy(parents, n.parentIDs)
	return parents
}

// IsRoot reports whether the node consumes no inputs
func (n *Node) IsRoot() bool {
	return len(n.parentIDs) == 0
}

// HasParent reports whether the given node is already a parent
func (n *Node) HasParent(parentID valueobjects.NodeID) bool {
	for _, pid := range n.parentIDs {
		if pid.Equals(parentID) {
			return true
		}
	}
	return false
}

// Bounds returns the node's conservative bounding box using its type's
// nominal dimensions
func (n *Node) Bounds() valueobjects.Rect {
	w, h := n.nodeType.Size()
	return valueobjects.NewRectXYWH(n.position.X(), n.position.Y(), w, h)
}

// InputAnchor returns the canvas point of the left (input) connector
func (n *Node) InputAnchor() valueobjects.Point {
	b := n.Bounds()
	return valueobjects.MustPoint(b.MinX(), (b.MinY()+b.MaxY())/2)
}

// OutputAnchor returns the canvas point of the right (output) connector
func (n *Node) OutputAnchor() valueobjects.Point {
	b := n.Bounds()
	return valueobjects.MustPoint(b.MaxX(), (b.MinY()+b.MaxY())/2)
}

// MoveTo moves the node to a new position
func (n *Node) MoveTo(position valueobjects.Point) {
	if position.Equals(n.position) {
		return
	}

	oldPosition := n.position
	n.position = position
	n.updatedAt = time.Now()

	n.addEvent(events.NewNodeMoved(n.id, oldPosition, position, n.updatedAt))
}

// SetPrompt updates the node's prompt text
func (n *Node) SetPrompt(prompt string) {
	if prompt == n.prompt {
		return
	}
	n.prompt = prompt
	n.updatedAt = time.Now()
	n.addEvent(events.NewNodeUpdated(n.id, "prompt", n.updatedAt))
}

// ApplySettings sets the model and generation settings for this node
func (n *Node) ApplySettings(model string, settings map[string]string) {
	n.model = model
	n.settings = make(map[string]string, len(settings))
	for k, v := range settings {
		n.settings[k] = v
	}
	n.updatedAt = time.Now()
	n.addEvent(events.NewNodeUpdated(n.id, "settings", n.updatedAt))
}

// AddParent appends a parent link if absent. Self-references and
// duplicates are rejected; order of first connection is preserved.
func (n *Node) AddParent(parentID valueobjects.NodeID, cfg *config.DomainConfig) error {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if parentID.IsZero() {
		return pkgerrors.NewValidationError("parent ID is required")
	}
	if !cfg.AllowSelfConnections && n.id.Equals(parentID) {
		return pkgerrors.NewValidationError("cannot connect node to itself")
	}
	if !cfg.AllowDuplicateEdges && n.HasParent(parentID) {
		return pkgerrors.NewConflictError("connection already exists")
	}
	if len(n.parentIDs) >= cfg.MaxParentsPerNode {
		return pkgerrors.NewConflictError(fmt.Sprintf("maximum parents reached: %d", cfg.MaxParentsPerNode))
	}

	n.parentIDs = append(n.parentIDs, parentID)
	n.updatedAt = time.Now()

	n.addEvent(events.NewNodesConnected(parentID, n.id, n.updatedAt))

	return nil
}

// RemoveParent filters one parent link out
func (n *Node) RemoveParent(parentID valueobjects.NodeID) error {
	if !n.HasParent(parentID) {
		return pkgerrors.NewNotFoundError("connection")
	}

	parents := make([]valueobjects.NodeID, 0, len(n.parentIDs)-1)
	for _, pid := range n.parentIDs {
		if !pid.Equals(parentID) {
			parents = append(parents, pid)
		}
	}
	n.parentIDs = parents
	n.updatedAt = time.Now()

	n.addEvent(events.NewNodesDisconnected(parentID, n.id, n.updatedAt))

	return nil
}

// PruneParent silently drops a parent link if present. Used when the
// parent node was deleted; absence is not an error here.
func (n *Node) PruneParent(parentID valueobjects.NodeID) bool {
	if !n.HasParent(parentID) {
		return false
	}
	_ = n.RemoveParent(parentID)
	return true
}

// SetGroup records group membership. Only the canvas aggregate calls
// this; the group owns the authoritative member list.
func (n *Node) SetGroup(groupID valueobjects.GroupID) {
	n.groupID = groupID
	n.updatedAt = time.Now()
}

// ClearGroup removes the group back-reference
func (n *Node) ClearGroup() {
	n.groupID = valueobjects.GroupID{}
	n.updatedAt = time.Now()
}

// Generation lifecycle

// BeginGeneration marks the node as loading
func (n *Node) BeginGeneration() error {
	if n.status == StatusLoading {
		return pkgerrors.NewConflictError("generation already in progress")
	}
	n.status = StatusLoading
	n.errorMessage = ""
	n.updatedAt = time.Now()
	n.addEvent(events.NewNodeUpdated(n.id, "status", n.updatedAt))
	return nil
}

// CompleteGeneration records a successful generation result
func (n *Node) CompleteGeneration(resultURL string) {
	n.status = StatusSuccess
	n.resultURL = resultURL
	n.errorMessage = ""
	n.updatedAt = time.Now()
	n.addEvent(events.NewNodeUpdated(n.id, "status", n.updatedAt))
}

// CancelGeneration returns a loading node to idle. An earlier result
// URL stays on the node; nothing happens if no generation is running.
func (n *Node) CancelGeneration() {
	if n.status != StatusLoading {
		return
	}
	n.status = StatusIdle
	n.errorMessage = ""
	n.updatedAt = time.Now()
	n.addEvent(events.NewNodeUpdated(n.id, "status", n.updatedAt))
}

// FailGeneration records a generation failure scoped to this node only
func (n *Node) FailGeneration(message string) {
	n.status = StatusError
	n.errorMessage = message
	n.updatedAt = time.Now()
	n.addEvent(events.NewNodeUpdated(n.id, "status", n.updatedAt))
}

// Clone returns a deep copy of the node's state. Uncommitted events are
// not carried over; clones are detached snapshots.
func (n *Node) Clone() *Node {
	clone := &Node{
		id:           n.id,
		nodeType:     n.nodeType,
		position:     n.position,
		prompt:       n.prompt,
		model:        n.model,
		settings:     make(map[string]string, len(n.settings)),
		status:       n.status,
		resultURL:    n.resultURL,
		errorMessage: n.errorMessage,
		parentIDs:    make([]valueobjects.NodeID, len(n.parentIDs)),
		groupID:      n.groupID,
		createdAt:    n.createdAt,
		updatedAt:    n.updatedAt,
		events:       []events.DomainEvent{},
	}
	for k, v := range n.settings {
		clone.settings[k] = v
	}
	copy(clone.parentIDs, n.parentIDs)
	return clone
}

// CloneDetached returns a copy with a fresh identity and no parent or
// group linkage. Used by clipboard paste, which never reuses ids and
// never re-attaches to the original group.
func (n *Node) CloneDetached(offset valueobjects.Point) *Node {
	clone := n.Clone()
	clone.id = valueobjects.NewNodeID()
	clone.position = n.position.Translate(offset.X(), offset.Y())
	clone.parentIDs = []valueobjects.NodeID{}
	clone.groupID = valueobjects.GroupID{}
	now := time.Now()
	clone.createdAt = now
	clone.updatedAt = now
	clone.addEvent(events.NewNodeAdded(clone.id, clone.nodeType, now))
	return clone
}

// GetUncommittedEvents returns all uncommitted domain events
func (n *Node) GetUncommittedEvents() []events.DomainEvent {
	return n.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (n *Node) MarkEventsAsCommitted() {
	n.events = []events.DomainEvent{}
}

// addEvent adds a domain event to the uncommitted list
func (n *Node) addEvent(event events.DomainEvent) {
	n.events = append(n.events, event)
}
