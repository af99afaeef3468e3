package workspace

import (
	"github.com/zach-sndr/twitcanva/domain/core/aggregates"
	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
	pkgerrors "github.com/zach-sndr/twitcanva/pkg/errors"
)

// ErrIllegalConnection is returned when the legality rules reject a
// parent/child pair. Gestures treat it as a silent no-op.
var ErrIllegalConnection = pkgerrors.NewValidationError("connection not allowed between these node types")

// selectionState is the transient selection: an insertion-ordered set
// of node ids and at most one selected connection. Node and connection
// selection are mutually exclusive delete targets.
type selectionState struct {
	nodeIDs    []valueobjects.NodeID
	connection *aggregates.Edge
}

func (s *selectionState) nodeList() []valueobjects.NodeID {
	ids := make([]valueobjects.NodeID, len(s.nodeIDs))
	copy(ids, s.nodeIDs)
	return ids
}

func (s *selectionState) contains(id valueobjects.NodeID) bool {
	for _, existing := range s.nodeIDs {
		if existing.Equals(id) {
			return true
		}
	}
	return false
}

func (s *selectionState) addNode(id valueobjects.NodeID) {
	if !s.contains(id) {
		s.nodeIDs = append(s.nodeIDs, id)
	}
	s.connection = nil
}

func (s *selectionState) removeNode(id valueobjects.NodeID) {
	for i, existing := range s.nodeIDs {
		if existing.Equals(id) {
			s.nodeIDs = append(s.nodeIDs[:i], s.nodeIDs[i+1:]...)
			return
		}
	}
}

func (s *selectionState) setNodes(ids []valueobjects.NodeID) {
	s.nodeIDs = nil
	for _, id := range ids {
		s.addNode(id)
	}
	s.connection = nil
}

func (s *selectionState) setConnection(edge aggregates.Edge) {
	s.nodeIDs = nil
	s.connection = &edge
}

func (s *selectionState) clearAll() {
	s.nodeIDs = nil
	s.connection = nil
}

// reconcile drops selected ids that no longer exist on the canvas,
// needed after undo/redo replaces the store.
func (s *selectionState) reconcile(canvas *aggregates.Canvas) {
	kept := s.nodeIDs[:0]
	for _, id := range s.nodeIDs {
		if canvas.HasNode(id) {
			kept = append(kept, id)
		}
	}
	s.nodeIDs = kept
	s.dropConnectionIfGone(canvas)
}

func (s *selectionState) dropConnectionIfGone(canvas *aggregates.Canvas) {
	if s.connection == nil {
		return
	}
	child, err := canvas.Node(s.connection.ChildID)
	if err != nil || !child.HasParent(s.connection.ParentID) {
		s.connection = nil
	}
}

// Selection API on Workspace

// SelectNode makes the node the sole selection, or adds it when
// additive is set. Selecting a node clears any selected connection.
func (w *Workspace) SelectNode(id valueobjects.NodeID, additive bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.canvas.HasNode(id) {
		return
	}
	if !additive {
		w.selection.nodeIDs = nil
	}
	w.selection.addNode(id)
}

// SelectNodes replaces the node selection
func (w *Workspace) SelectNodes(ids []valueobjects.NodeID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var kept []valueobjects.NodeID
	for _, id := range ids {
		if w.canvas.HasNode(id) {
			kept = append(kept, id)
		}
	}
	w.selection.setNodes(kept)
}

// SelectConnection selects one parent->child edge, clearing node
// selection
func (w *Workspace) SelectConnection(parentID, childID valueobjects.NodeID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	child, err := w.canvas.Node(childID)
	if err != nil {
		return err
	}
	if !child.HasParent(parentID) {
		return pkgerrors.NewNotFoundError("connection")
	}
	w.selection.setConnection(aggregates.Edge{ParentID: parentID, ChildID: childID})
	return nil
}

// ClearSelection drops node and connection selection
func (w *Workspace) ClearSelection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selection.clearAll()
}

// CancelSelection is the Escape action: identical to ClearSelection at
// this layer (an active box-select is cleared by its gesture).
func (w *Workspace) CancelSelection() {
	w.ClearSelection()
}

// SelectedNodes returns the selected node ids in insertion order
func (w *Workspace) SelectedNodes() []valueobjects.NodeID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selection.nodeList()
}

// SelectedConnection returns the selected edge, or nil
func (w *Workspace) SelectedConnection() *aggregates.Edge {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selection.connection == nil {
		return nil
	}
	edge := *w.selection.connection
	return &edge
}

// IsSelected reports whether the node is currently selected
func (w *Workspace) IsSelected(id valueobjects.NodeID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selection.contains(id)
}
