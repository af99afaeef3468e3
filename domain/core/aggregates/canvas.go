package aggregates

import (
	"fmt"
	"time"

	"github.com/zach-sndr/twitcanva/domain/config"
	"github.com/zach-sndr/twitcanva/domain/core/entities"
	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
	"github.com/zach-sndr/twitcanva/domain/events"
	pkgerrors "github.com/zach-sndr/twitcanva/pkg/errors"
)

// Canvas is the aggregate root for the node graph: the single source of
// truth mutated by every interaction engine. It enforces the structural
// invariants (no dangling parents, no duplicate edges, no undersized
// groups) so observers always see consistent transitions.
type Canvas struct {
	title  string
	nodes  map[valueobjects.NodeID]*entities.Node
	order  []valueobjects.NodeID // insertion order, also z-order for hit-testing
	groups map[valueobjects.GroupID]*entities.NodeGroup
	cfg    *config.DomainConfig

	createdAt time.Time
	updatedAt time.Time

	events []events.DomainEvent
}

// Edge is a derived view of one parent->child relationship. Edges are
// not stored; they are read out of each child's parent links.
type Edge struct {
	ParentID valueobjects.NodeID
	ChildID  valueobjects.NodeID
}

// NewCanvas creates an empty canvas
func NewCanvas(title string, cfg *config.DomainConfig) *Canvas {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if title == "" {
		title = cfg.DefaultTitle
	}
	now := time.Now()
	return &Canvas{
		title:     title,
		nodes:     make(map[valueobjects.NodeID]*entities.Node),
		groups:    make(map[valueobjects.GroupID]*entities.NodeGroup),
		cfg:       cfg,
		createdAt: now,
		updatedAt: now,
		events:    []events.DomainEvent{},
	}
}

// ReconstructCanvas rebuilds a canvas from persisted nodes and groups.
// Parent links pointing at absent nodes are pruned and group membership
// is reconciled, so a malformed document still loads into a valid store.
func ReconstructCanvas(title string, nodes []*entities.Node, groups []*entities.NodeGroup, cfg *config.DomainConfig) *Canvas {
	c := NewCanvas(title, cfg)

	for _, node := range nodes {
		if node == nil {
			continue
		}
		if _, exists := c.nodes[node.ID()]; exists {
			continue
		}
		c.nodes[node.ID()] = node
		c.order = append(c.order, node.ID())
	}

	// Dangling-parent invariant: parentIDs never reference a node that
	// does not exist.
	for _, node := range c.nodes {
		for _, pid := range node.ParentIDs() {
			if _, exists := c.nodes[pid]; !exists {
				node.PruneParent(pid)
			}
		}
	}

	for _, group := range groups {
		if group == nil {
			continue
		}
		for _, nid := range group.NodeIDs() {
			if _, exists := c.nodes[nid]; !exists {
				group.RemoveMember(nid)
			}
		}
		if !group.IsValid() {
			continue
		}
		c.groups[group.ID()] = group
		for _, nid := range group.NodeIDs() {
			c.nodes[nid].SetGroup(group.ID())
		}
	}

	// Reconstruction is a baseline, not a mutation.
	c.MarkEventsAsCommitted()

	return c
}

// Title returns the workflow title
func (c *Canvas) Title() string {
	return c.title
}

// SetTitle renames the workflow
func (c *Canvas) SetTitle(title string) {
	if title == "" {
		title = c.cfg.DefaultTitle
	}
	c.title = title
	c.touch()
}

// Config returns the domain configuration the canvas runs under
func (c *Canvas) Config() *config.DomainConfig {
	return c.cfg
}

// CreatedAt returns when the canvas was created
func (c *Canvas) CreatedAt() time.Time {
	return c.createdAt
}

// UpdatedAt returns when the canvas last changed
func (c *Canvas) UpdatedAt() time.Time {
	return c.updatedAt
}

// Node retrieves a node by ID
func (c *Canvas) Node(id valueobjects.NodeID) (*entities.Node, error) {
	node, exists := c.nodes[id]
	if !exists {
		return nil, pkgerrors.NewNotFoundError("node")
	}
	return node, nil
}

// HasNode checks existence without an error
func (c *Canvas) HasNode(id valueobjects.NodeID) bool {
	_, exists := c.nodes[id]
	return exists
}

// Nodes returns all nodes in insertion order
func (c *Canvas) Nodes() []*entities.Node {
	nodes := make([]*entities.Node, 0, len(c.order))
	for _, id := range c.order {
		nodes = append(nodes, c.nodes[id])
	}
	return nodes
}

// NodeCount returns the number of nodes on the canvas
func (c *Canvas) NodeCount() int {
	return len(c.nodes)
}

// Groups returns all groups
func (c *Canvas) Groups() []*entities.NodeGroup {
	groups := make([]*entities.NodeGroup, 0, len(c.groups))
	for _, id := range c.order {
		// Preserve a stable order by first-member appearance.
		node := c.nodes[id]
		gid := node.GroupID()
		if gid.IsZero() {
			continue
		}
		if g, exists := c.groups[gid]; exists {
			already := false
			for _, seen := range groups {
				if seen.ID().Equals(gid) {
					already = true
					break
				}
			}
			if !already {
				groups = append(groups, g)
			}
		}
	}
	return groups
}

// Group retrieves a group by ID
func (c *Canvas) Group(id valueobjects.GroupID) (*entities.NodeGroup, error) {
	group, exists := c.groups[id]
	if !exists {
		return nil, pkgerrors.NewNotFoundError("group")
	}
	return group, nil
}

// Edges returns every derived parent->child edge in insertion order
func (c *Canvas) Edges() []Edge {
	var edges []Edge
	for _, id := range c.order {
		child := c.nodes[id]
		for _, pid := range child.ParentIDs() {
			edges = append(edges, Edge{ParentID: pid, ChildID: id})
		}
	}
	return edges
}

// ChildrenOf returns the ids of nodes that consume the given node
func (c *Canvas) ChildrenOf(parentID valueobjects.NodeID) []valueobjects.NodeID {
	var children []valueobjects.NodeID
	for _, id := range c.order {
		if c.nodes[id].HasParent(parentID) {
			children = append(children, id)
		}
	}
	return children
}

// AddNode places an externally built node (paste, duplicate, load) on
// the canvas
func (c *Canvas) AddNode(node *entities.Node) error {
	if node == nil {
		return pkgerrors.NewValidationError("node cannot be nil")
	}
	if _, exists := c.nodes[node.ID()]; exists {
		return pkgerrors.NewConflictError("node already exists on canvas")
	}
	if len(c.nodes) >= c.cfg.MaxNodesPerCanvas {
		return pkgerrors.NewConflictError(fmt.Sprintf("maximum nodes reached: %d", c.cfg.MaxNodesPerCanvas))
	}

	c.nodes[node.ID()] = node
	c.order = append(c.order, node.ID())
	c.touch()
	return nil
}

// CreateNode allocates a new node of the given type. When parentID is
// set the node is placed with a fixed gap to the right of that parent
// and linked to it; otherwise it sits with its card centered on the
// given canvas position.
func (c *Canvas) CreateNode(nodeType valueobjects.NodeType, position valueobjects.Point, parentID *valueobjects.NodeID) (*entities.Node, error) {
	w, h := nodeType.Size()

	var origin valueobjects.Point
	if parentID != nil {
		parent, err := c.Node(*parentID)
		if err != nil {
			return nil, err
		}
		pb := parent.Bounds()
		origin = valueobjects.MustPoint(pb.MaxX()+c.cfg.ChildPlacementGap, pb.MinY())
	} else {
		origin = position.Translate(-w/2, -h/2)
	}

	node, err := entities.NewNode(nodeType, origin)
	if err != nil {
		return nil, err
	}
	if err := c.AddNode(node); err != nil {
		return nil, err
	}

	if parentID != nil {
		if err := c.AddParent(node.ID(), *parentID); err != nil {
			// Roll the placement back so a rejected link never leaves a
			// half-created node behind.
			_ = c.DeleteNode(node.ID())
			return nil, err
		}
	}

	return node, nil
}

// MoveNode repositions a node. No-op if the id is absent.
func (c *Canvas) MoveNode(id valueobjects.NodeID, position valueobjects.Point) {
	node, exists := c.nodes[id]
	if !exists {
		return
	}
	node.MoveTo(position)
	c.touch()
}

// SetNodePrompt updates a node's prompt text. No-op if the id is absent.
func (c *Canvas) SetNodePrompt(id valueobjects.NodeID, prompt string) {
	node, exists := c.nodes[id]
	if !exists {
		return
	}
	node.SetPrompt(prompt)
	c.touch()
}

// AddParent appends a parent link to the child if absent. The edge
// direction is parent -> child. Cycles are rejected unless the domain
// configuration allows them.
func (c *Canvas) AddParent(childID, parentID valueobjects.NodeID) error {
	child, err := c.Node(childID)
	if err != nil {
		return err
	}
	if _, err := c.Node(parentID); err != nil {
		return err
	}

	if !c.cfg.AllowCycles && c.isAncestor(childID, parentID) {
		return pkgerrors.NewConflictError("connection would create a cycle")
	}

	if err := child.AddParent(parentID, c.cfg); err != nil {
		return err
	}
	c.touch()
	return nil
}

// RemoveParent filters one parent link out of the child. Removing a
// connection never deletes either node.
func (c *Canvas) RemoveParent(childID, parentID valueobjects.NodeID) error {
	child, err := c.Node(childID)
	if err != nil {
		return err
	}
	if err := child.RemoveParent(parentID); err != nil {
		return err
	}
	c.touch()
	return nil
}

// DeleteNode removes one node, pruning every reference to it
func (c *Canvas) DeleteNode(id valueobjects.NodeID) error {
	return c.DeleteNodes([]valueobjects.NodeID{id})
}

// DeleteNodes removes the given nodes. Any surviving node whose parent
// links reference a removed id has that reference pruned, and groups
// that fall below two members dissolve.
func (c *Canvas) DeleteNodes(ids []valueobjects.NodeID) error {
	removed := make(map[valueobjects.NodeID]bool, len(ids))
	for _, id := range ids {
		node, exists := c.nodes[id]
		if !exists {
			continue
		}
		removed[id] = true

		if gid := node.GroupID(); !gid.IsZero() {
			if group, ok := c.groups[gid]; ok {
				group.RemoveMember(id)
			}
		}

		delete(c.nodes, id)
		c.addEvent(events.NewNodeRemoved(id, time.Now()))
	}

	if len(removed) == 0 {
		return pkgerrors.NewNotFoundError("node")
	}

	order := make([]valueobjects.NodeID, 0, len(c.order)-len(removed))
	for _, id := range c.order {
		if !removed[id] {
			order = append(order, id)
		}
	}
	c.order = order

	for _, node := range c.nodes {
		for _, pid := range node.ParentIDs() {
			if removed[pid] {
				node.PruneParent(pid)
			}
		}
	}

	c.pruneInvalidGroups()
	c.touch()
	return nil
}

// GroupNodes forms a group over the given nodes. Every node must exist
// and be ungrouped.
func (c *Canvas) GroupNodes(ids []valueobjects.NodeID, label string) (*entities.NodeGroup, error) {
	for _, id := range ids {
		node, err := c.Node(id)
		if err != nil {
			return nil, err
		}
		if !node.GroupID().IsZero() {
			return nil, pkgerrors.NewConflictError("node already belongs to a group")
		}
	}

	group, err := entities.NewNodeGroup(label, ids)
	if err != nil {
		return nil, err
	}

	c.groups[group.ID()] = group
	for _, id := range ids {
		c.nodes[id].SetGroup(group.ID())
	}

	c.addEvent(events.NewGroupFormed(group.ID(), group.NodeIDs(), time.Now()))
	c.touch()
	return group, nil
}

// Ungroup dissolves a group, clearing every member's back-reference
func (c *Canvas) Ungroup(groupID valueobjects.GroupID) error {
	group, exists := c.groups[groupID]
	if !exists {
		return pkgerrors.NewNotFoundError("group")
	}

	for _, id := range group.NodeIDs() {
		if node, ok := c.nodes[id]; ok {
			node.ClearGroup()
		}
	}
	delete(c.groups, groupID)

	c.addEvent(events.NewGroupDissolved(groupID, time.Now()))
	c.touch()
	return nil
}

// RenameGroup changes a group's label
func (c *Canvas) RenameGroup(groupID valueobjects.GroupID, label string) error {
	group, exists := c.groups[groupID]
	if !exists {
		return pkgerrors.NewNotFoundError("group")
	}
	if err := group.Rename(label); err != nil {
		return err
	}
	c.touch()
	return nil
}

// GroupMembers returns every node that shares a group with the given
// node, including the node itself. A lone ungrouped node returns just
// itself; node drags use this for group cohesion.
func (c *Canvas) GroupMembers(id valueobjects.NodeID) []valueobjects.NodeID {
	node, exists := c.nodes[id]
	if !exists {
		return nil
	}
	gid := node.GroupID()
	if gid.IsZero() {
		return []valueobjects.NodeID{id}
	}
	group, exists := c.groups[gid]
	if !exists {
		return []valueobjects.NodeID{id}
	}
	return group.NodeIDs()
}

// Hit-testing

// NodeAt returns the topmost node whose bounding box contains the given
// canvas point, or nil. Later insertion wins, matching z-order.
func (c *Canvas) NodeAt(p valueobjects.Point) *entities.Node {
	for i := len(c.order) - 1; i >= 0; i-- {
		node := c.nodes[c.order[i]]
		if node.Bounds().Contains(p) {
			return node
		}
	}
	return nil
}

// NodesIntersecting returns every node whose bounding box overlaps the
// given canvas rectangle, in insertion order
func (c *Canvas) NodesIntersecting(r valueobjects.Rect) []*entities.Node {
	var out []*entities.Node
	for _, id := range c.order {
		node := c.nodes[id]
		if node.Bounds().Intersects(r) {
			out = append(out, node)
		}
	}
	return out
}

// Validate checks the structural invariants. Intended for tests and
// load-time auditing.
func (c *Canvas) Validate() error {
	for _, node := range c.nodes {
		for _, pid := range node.ParentIDs() {
			if _, exists := c.nodes[pid]; !exists {
				return fmt.Errorf("node %s has dangling parent %s", node.ID(), pid)
			}
		}
		if gid := node.GroupID(); !gid.IsZero() {
			group, exists := c.groups[gid]
			if !exists {
				return fmt.Errorf("node %s references missing group %s", node.ID(), gid)
			}
			if !group.Contains(node.ID()) {
				return fmt.Errorf("node %s not listed in group %s", node.ID(), gid)
			}
		}
	}
	for _, group := range c.groups {
		if !group.IsValid() {
			return fmt.Errorf("group %s has fewer than %d members", group.ID(), entities.MinGroupSize)
		}
		for _, nid := range group.NodeIDs() {
			node, exists := c.nodes[nid]
			if !exists {
				return fmt.Errorf("group %s references missing node %s", group.ID(), nid)
			}
			if !node.GroupID().Equals(group.ID()) {
				return fmt.Errorf("node %s back-reference disagrees with group %s", nid, group.ID())
			}
		}
	}
	if len(c.order) != len(c.nodes) {
		return fmt.Errorf("node order length %d disagrees with node count %d", len(c.order), len(c.nodes))
	}
	return nil
}

// GetUncommittedEvents returns all uncommitted domain events, including
// those raised on individual nodes
func (c *Canvas) GetUncommittedEvents() []events.DomainEvent {
	all := make([]events.DomainEvent, len(c.events))
	copy(all, c.events)
	for _, id := range c.order {
		all = append(all, c.nodes[id].GetUncommittedEvents()...)
	}
	return all
}

// MarkEventsAsCommitted clears all uncommitted events
func (c *Canvas) MarkEventsAsCommitted() {
	c.events = []events.DomainEvent{}
	for _, node := range c.nodes {
		node.MarkEventsAsCommitted()
	}
}

// Private helpers

func (c *Canvas) touch() {
	c.updatedAt = time.Now()
}

func (c *Canvas) addEvent(event events.DomainEvent) {
	c.events = append(c.events, event)
}

// isAncestor reports whether ancestorID is reachable from nodeID by
// walking parent links upward.
func (c *Canvas) isAncestor(ancestorID, nodeID valueobjects.NodeID) bool {
	visited := make(map[valueobjects.NodeID]bool)
	stack := []valueobjects.NodeID{nodeID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[current] {
			continue
		}
		visited[current] = true

		node, exists := c.nodes[current]
		if !exists {
			continue
		}
		for _, pid := range node.ParentIDs() {
			if pid.Equals(ancestorID) {
				return true
			}
			stack = append(stack, pid)
		}
	}
	return false
}

// pruneInvalidGroups dissolves every group left with fewer than two
// members.
func (c *Canvas) pruneInvalidGroups() {
	for gid, group := range c.groups {
		if group.IsValid() {
			continue
		}
		for _, nid := range group.NodeIDs() {
			if node, ok := c.nodes[nid]; ok {
				node.ClearGroup()
			}
		}
		delete(c.groups, gid)
		c.addEvent(events.NewGroupDissolved(gid, time.Now()))
	}
}
