package entities

import (
	"fmt"
	"time"

	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
	pkgerrors "github.com/zach-sndr/twitcanva/pkg/errors"
)

// NodeGroup is a named clustering of two or more nodes. The group owns
// the authoritative membership list; each member node carries a weak
// groupID back-reference kept consistent by the canvas aggregate.
type NodeGroup struct {
	id        valueobjects.GroupID
	label     string
	nodeIDs   []valueobjects.NodeID
	createdAt time.Time
	updatedAt time.Time
}

// MinGroupSize is the smallest valid group. Groups that fall below it
// after a deletion or ungroup must be dissolved, never left lingering.
const MinGroupSize = 2

// NewNodeGroup creates a group over the given members
func NewNodeGroup(label string, nodeIDs []valueobjects.NodeID) (*NodeGroup, error) {
	if len(nodeIDs) < MinGroupSize {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("a group needs at least %d nodes", MinGroupSize))
	}

	members := make([]valueobjects.NodeID, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		if id.IsZero() {
			return nil, pkgerrors.NewValidationError("group member ID cannot be empty")
		}
		for _, existing := range members {
			if existing.Equals(id) {
				return nil, pkgerrors.NewConflictError("duplicate node in group")
			}
		}
		members = append(members, id)
	}

	now := time.Now()
	group := &NodeGroup{
		id:        valueobjects.NewGroupID(),
		label:     label,
		nodeIDs:   members,
		createdAt: now,
		updatedAt: now,
	}
	if group.label == "" {
		group.label = defaultGroupLabel(group.id)
	}

	return group, nil
}

// ReconstructNodeGroup recreates a group from persisted data
func ReconstructNodeGroup(id valueobjects.GroupID, label string, nodeIDs []valueobjects.NodeID, createdAt, updatedAt time.Time) (*NodeGroup, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("group ID is required")
	}
	if len(nodeIDs) < MinGroupSize {
		return nil, pkgerrors.NewValidationError("a persisted group must have at least two members")
	}
	members := make([]valueobjects.NodeID, len(nodeIDs))
	copy(members, nodeIDs)

	if label == "" {
		label = defaultGroupLabel(id)
	}

	return &NodeGroup{
		id:        id,
		label:     label,
		nodeIDs:   members,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

// ID returns the group's unique identifier
func (g *NodeGroup) ID() valueobjects.GroupID {
	return g.id
}

// Label returns the user-visible group name
func (g *NodeGroup) Label() string {
	return g.label
}

// NodeIDs returns the ordered member list
func (g *NodeGroup) NodeIDs() []valueobjects.NodeID {
	ids := make([]valueobjects.NodeID, len(g.nodeIDs))
	copy(ids, g.nodeIDs)
	return ids
}

// Size returns the member count
func (g *NodeGroup) Size() int {
	return len(g.nodeIDs)
}

// CreatedAt returns when the group was formed
func (g *NodeGroup) CreatedAt() time.Time {
	return g.createdAt
}

// UpdatedAt returns when the group last changed
func (g *NodeGroup) UpdatedAt() time.Time {
	return g.updatedAt
}

// Contains reports whether the node is a member
func (g *NodeGroup) Contains(nodeID valueobjects.NodeID) bool {
	for _, id := range g.nodeIDs {
		if id.Equals(nodeID) {
			return true
		}
	}
	return false
}

// Rename changes the group's label
func (g *NodeGroup) Rename(label string) error {
	if label == "" {
		return pkgerrors.NewValidationError("group label cannot be empty")
	}
	g.label = label
	g.updatedAt = time.Now()
	return nil
}

// RemoveMember drops a node from the membership list. The caller must
// check IsValid afterwards and dissolve the group if it fell below the
// minimum size.
func (g *NodeGroup) RemoveMember(nodeID valueobjects.NodeID) bool {
	members := make([]valueobjects.NodeID, 0, len(g.nodeIDs))
	found := false
	for _, id := range g.nodeIDs {
		if id.Equals(nodeID) {
			found = true
			continue
		}
		members = append(members, id)
	}
	if found {
		g.nodeIDs = members
		g.updatedAt = time.Now()
	}
	return found
}

// IsValid reports whether the group still has enough members to exist
func (g *NodeGroup) IsValid() bool {
	return len(g.nodeIDs) >= MinGroupSize
}

// Clone returns a deep copy of the group
func (g *NodeGroup) Clone() *NodeGroup {
	clone := &NodeGroup{
		id:        g.id,
		label:     g.label,
		nodeIDs:   make([]valueobjects.NodeID, len(g.nodeIDs)),
		createdAt: g.createdAt,
		updatedAt: g.updatedAt,
	}
	copy(clone.nodeIDs, g.nodeIDs)
	return clone
}

func defaultGroupLabel(id valueobjects.GroupID) string {
	s := id.String()
	if len(s) > 8 {
		s = s[:8]
	}
	return "Group " + s
}
