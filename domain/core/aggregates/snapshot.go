package aggregates

import (
	"github.com/zach-sndr/twitcanva/domain/core/entities"
	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
)

// CanvasSnapshot is an immutable capture of the canvas nodes and groups
// at a point in time, used by the undo/redo history. Nodes are stored in
// insertion order so a restore reproduces z-order exactly.
type CanvasSnapshot struct {
	Title  string
	Nodes  []*entities.Node
	Groups []*entities.NodeGroup
}

// Snapshot deep-copies the current nodes and groups. The returned
// snapshot shares no mutable state with the live canvas.
func (c *Canvas) Snapshot() CanvasSnapshot {
	snap := CanvasSnapshot{
		Title:  c.title,
		Nodes:  make([]*entities.Node, 0, len(c.order)),
		Groups: make([]*entities.NodeGroup, 0, len(c.groups)),
	}
	for _, id := range c.order {
		snap.Nodes = append(snap.Nodes, c.nodes[id].Clone())
	}
	for _, group := range c.Groups() {
		snap.Groups = append(snap.Groups, group.Clone())
	}
	return snap
}

// Restore replaces the canvas contents wholesale with clones of the
// snapshot, so the snapshot stays reusable after further mutation.
func (c *Canvas) Restore(snap CanvasSnapshot) {
	c.nodes = make(map[valueobjects.NodeID]*entities.Node, len(snap.Nodes))
	c.order = make([]valueobjects.NodeID, 0, len(snap.Nodes))
	c.groups = make(map[valueobjects.GroupID]*entities.NodeGroup, len(snap.Groups))

	for _, node := range snap.Nodes {
		clone := node.Clone()
		c.nodes[clone.ID()] = clone
		c.order = append(c.order, clone.ID())
	}
	for _, group := range snap.Groups {
		clone := group.Clone()
		c.groups[clone.ID()] = clone
	}

	if snap.Title != "" {
		c.title = snap.Title
	}

	// A restore is a replacement, not a user mutation; observers must
	// not re-record it.
	c.MarkEventsAsCommitted()
	c.touch()
}

// Equal reports whether two snapshots capture the same state: every
// persisted node field (position, prompt, model, settings, generation
// state, parent links) and every group's full membership.
func (s CanvasSnapshot) Equal(other CanvasSnapshot) bool {
	if s.Title != other.Title || len(s.Nodes) != len(other.Nodes) || len(s.Groups) != len(other.Groups) {
		return false
	}
	for i, node := range s.Nodes {
		o := other.Nodes[i]
		if !node.ID().Equals(o.ID()) ||
			node.Type() != o.Type() ||
			!node.Position().Equals(o.Position()) ||
			node.Prompt() != o.Prompt() ||
			node.Model() != o.Model() ||
			node.Status() != o.Status() ||
			node.ResultURL() != o.ResultURL() ||
			node.ErrorMessage() != o.ErrorMessage() {
			return false
		}
		ns, os := node.Settings(), o.Settings()
		if len(ns) != len(os) {
			return false
		}
		for k, v := range ns {
			if os[k] != v {
				return false
			}
		}
		np, op := node.ParentIDs(), o.ParentIDs()
		if len(np) != len(op) {
			return false
		}
		for j := range np {
			if !np[j].Equals(op[j]) {
				return false
			}
		}
	}
	for i, group := range s.Groups {
		o := other.Groups[i]
		if !group.ID().Equals(o.ID()) || group.Label() != o.Label() {
			return false
		}
		gm, om := group.NodeIDs(), o.NodeIDs()
		if len(gm) != len(om) {
			return false
		}
		for j := range gm {
			if !gm[j].Equals(om[j]) {
				return false
			}
		}
	}
	return true
}
