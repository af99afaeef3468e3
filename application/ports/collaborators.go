// Package ports defines the boundary contracts between the canvas core
// and its collaborators. The core depends on these interfaces only;
// concrete implementations live in infrastructure or in the embedder.
package ports

import (
	"context"

	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
)

// DefaultsProvider supplies type-specific defaults (model and settings
// remembered from the last use of that type) applied when a node is
// created, and records new choices as they are made.
type DefaultsProvider interface {
	DefaultsFor(t valueobjects.NodeType) (model string, settings map[string]string)
	Remember(t valueobjects.NodeType, model string, settings map[string]string)
}

// GenerationRequest carries a node's resolved inputs to the provider:
// its prompt text plus the result URLs of its parents in first-connection
// order.
type GenerationRequest struct {
	NodeID        valueobjects.NodeID
	NodeType      valueobjects.NodeType
	Prompt        string
	Model         string
	Settings      map[string]string
	ParentResults []string
}

// Generator is the opaque asynchronous generation collaborator. It
// eventually returns a result URL or an error; timeout and retry policy
// are its concern, not the core's.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (resultURL string, err error)
}

// MenuChoice is what the context-menu collaborator reports back: either
// a node type to create, or the delete sentinel.
type MenuChoice struct {
	NodeType valueobjects.NodeType
	Delete   bool
}

// DeleteChoice is the sentinel choice requesting deletion of the menu's
// target node.
func DeleteChoice() MenuChoice {
	return MenuChoice{Delete: true}
}

// TypeChoice is a choice selecting a node type to create.
func TypeChoice(t valueobjects.NodeType) MenuChoice {
	return MenuChoice{NodeType: t}
}
