// Package history implements the bounded snapshot undo/redo stacks for
// the canvas. It stores settled graph states only; callers suppress
// pushes while a continuous gesture is in progress and push once after
// it ends.
package history

import (
	"github.com/zach-sndr/twitcanva/domain/core/aggregates"
)

// History holds a present state plus bounded-depth past and future
// stacks of canvas snapshots. Undo and redo each move exactly one step.
type History struct {
	present aggregates.CanvasSnapshot
	past    []aggregates.CanvasSnapshot
	future  []aggregates.CanvasSnapshot

	maxDepth int
}

// New creates a history rooted at the given baseline snapshot. A loaded
// workflow starts here with empty stacks.
func New(baseline aggregates.CanvasSnapshot, maxDepth int) *History {
	if maxDepth <= 0 {
		maxDepth = 50
	}
	return &History{
		present:  baseline,
		maxDepth: maxDepth,
	}
}

// Push records a settled graph state. Pushing starts a new timeline
// branch: the future stack is cleared, and the oldest past entry is
// evicted once the configured depth is exceeded. Pushing a state equal
// to the present is a no-op so observers re-reporting the same settle
// cannot churn the stack.
func (h *History) Push(snap aggregates.CanvasSnapshot) {
	if snap.Equal(h.present) {
		return
	}

	h.past = append(h.past, h.present)
	if len(h.past) > h.maxDepth {
		h.past = h.past[len(h.past)-h.maxDepth:]
	}
	h.present = snap
	h.future = nil
}

// Undo moves one step back. Returns the new present and true, or the
// unchanged present and false at the stack boundary.
func (h *History) Undo() (aggregates.CanvasSnapshot, bool) {
	if len(h.past) == 0 {
		return h.present, false
	}
	h.future = append(h.future, h.present)
	h.present = h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	return h.present, true
}

// Redo moves one step forward. Returns the new present and true, or the
// unchanged present and false at the stack boundary.
func (h *History) Redo() (aggregates.CanvasSnapshot, bool) {
	if len(h.future) == 0 {
		return h.present, false
	}
	h.past = append(h.past, h.present)
	h.present = h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	return h.present, true
}

// Present returns the current settled state
func (h *History) Present() aggregates.CanvasSnapshot {
	return h.present
}

// CanUndo reports whether an undo step is available
func (h *History) CanUndo() bool {
	return len(h.past) > 0
}

// CanRedo reports whether a redo step is available
func (h *History) CanRedo() bool {
	return len(h.future) > 0
}

// UndoDepth returns the number of past entries
func (h *History) UndoDepth() int {
	return len(h.past)
}

// RedoDepth returns the number of future entries
func (h *History) RedoDepth() int {
	return len(h.future)
}

// Reset discards both stacks and re-roots the history at the given
// baseline. Used after a workflow load, which replaces the store
// wholesale.
func (h *History) Reset(baseline aggregates.CanvasSnapshot) {
	h.present = baseline
	h.past = nil
	h.future = nil
}
