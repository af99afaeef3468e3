// Package services holds application services that react to graph
// changes on behalf of collaborators.
package services

import (
	"go.uber.org/zap"

	"github.com/zach-sndr/twitcanva/domain/core/aggregates"
	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
)

// PropagationToken is a one-shot permission to propagate a prompt along
// a newly created edge. It replaces a free-floating "is syncing" flag:
// the token travels with the call, is spent on first use, and cannot
// trigger reentrant propagation loops.
type PropagationToken struct {
	spent bool
}

// NewPropagationToken issues a fresh token
func NewPropagationToken() *PropagationToken {
	return &PropagationToken{}
}

// Spend consumes the token. Returns false if it was already spent.
func (t *PropagationToken) Spend() bool {
	if t == nil || t.spent {
		return false
	}
	t.spent = true
	return true
}

// PromptPropagator seeds a child's prompt from a Text parent when an
// edge is created, so a connected prompt node immediately drives its
// new child.
type PromptPropagator struct {
	logger *zap.Logger
}

// NewPromptPropagator creates a propagator
func NewPromptPropagator(logger *zap.Logger) *PromptPropagator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromptPropagator{logger: logger}
}

// OnConnected is called after a parent link commits. It writes the Text
// parent's prompt into the child when the child has none of its own.
// The token bounds the pass to a single hop.
func (p *PromptPropagator) OnConnected(canvas *aggregates.Canvas, parentID, childID valueobjects.NodeID, token *PropagationToken) {
	if !token.Spend() {
		return
	}

	parent, err := canvas.Node(parentID)
	if err != nil {
		return
	}
	if parent.Type() != valueobjects.NodeTypeText || parent.Prompt() == "" {
		return
	}

	child, err := canvas.Node(childID)
	if err != nil {
		return
	}
	if child.Prompt() != "" {
		return
	}

	canvas.SetNodePrompt(childID, parent.Prompt())
	p.logger.Debug("propagated prompt to child",
		zap.String("parentId", parentID.String()),
		zap.String("childId", childID.String()),
	)
}
