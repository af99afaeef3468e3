// Package connection decides whether a directed parent->child edge
// between two node types is allowed. The rule table here is the single
// source of truth consulted by the connection drag engine before any
// edge commits; it is pure and has no pointer or canvas dependencies.
package connection

import (
	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
)

// IsValidConnection reports whether a parent of parentType may feed a
// child of childType. Rules are evaluated in order; the first matching
// rule wins.
func IsValidConnection(parentType, childType valueobjects.NodeType) bool {
	// Audio connections are unsupported in either direction.
	if parentType == valueobjects.NodeTypeAudio || childType == valueobjects.NodeTypeAudio {
		return false
	}

	// Text nodes accept no input.
	if childType == valueobjects.NodeTypeText {
		return false
	}

	switch parentType {
	case valueobjects.NodeTypeText:
		// Text prompts feed image or video generation only.
		return childType == valueobjects.NodeTypeImage || childType == valueobjects.NodeTypeVideo

	case valueobjects.NodeTypeVideo:
		// Video chains forward via its last frame; it cannot produce a still.
		return childType == valueobjects.NodeTypeVideo || childType == valueobjects.NodeTypeVideoEditor

	case valueobjects.NodeTypeImage:
		return childType == valueobjects.NodeTypeImage ||
			childType == valueobjects.NodeTypeVideo ||
			childType == valueobjects.NodeTypeImageEditor

	case valueobjects.NodeTypeImageEditor:
		return childType == valueobjects.NodeTypeImage ||
			childType == valueobjects.NodeTypeVideo ||
			childType == valueobjects.NodeTypeImageEditor

	case valueobjects.NodeTypeVideoEditor:
		return childType == valueobjects.NodeTypeVideo
	}

	// Default permissive for unlisted pairs (storyboard, camera angle,
	// local model nodes).
	return true
}

// ValidChildTypes returns every node type that may be created as a
// child of the given parent type. Used to seed the "add next node" menu
// after a connector click.
func ValidChildTypes(parentType valueobjects.NodeType) []valueobjects.NodeType {
	var out []valueobjects.NodeType
	for _, t := range valueobjects.AllNodeTypes {
		if IsValidConnection(parentType, t) {
			out = append(out, t)
		}
	}
	return out
}

// ValidParentTypes returns every node type that may feed the given
// child type.
func ValidParentTypes(childType valueobjects.NodeType) []valueobjects.NodeType {
	var out []valueobjects.NodeType
	for _, t := range valueobjects.AllNodeTypes {
		if IsValidConnection(t, childType) {
			out = append(out, t)
		}
	}
	return out
}
