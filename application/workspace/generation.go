package workspace

import (
	"go.uber.org/zap"

	"github.com/zach-sndr/twitcanva/application/ports"
	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
)

// Generation state flows through the workspace so that status updates
// are observed like any other graph mutation. Completions are keyed by
// node id and idempotent: applying a stale completion after the node
// was deleted is a safe no-op.

// ResolveInputs walks a node's parent links in first-connection order
// and assembles the request handed to the generation collaborator.
func (w *Workspace) ResolveInputs(id valueobjects.NodeID) (ports.GenerationRequest, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	node, err := w.canvas.Node(id)
	if err != nil {
		return ports.GenerationRequest{}, err
	}

	req := ports.GenerationRequest{
		NodeID:   node.ID(),
		NodeType: node.Type(),
		Prompt:   node.Prompt(),
		Model:    node.Model(),
		Settings: node.Settings(),
	}
	for _, pid := range node.ParentIDs() {
		parent, err := w.canvas.Node(pid)
		if err != nil {
			continue
		}
		if url := parent.ResultURL(); url != "" {
			req.ParentResults = append(req.ParentResults, url)
		}
	}
	return req, nil
}

// BeginGeneration marks the node as loading before dispatch
func (w *Workspace) BeginGeneration(id valueobjects.NodeID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	node, err := w.canvas.Node(id)
	if err != nil {
		return err
	}
	if err := node.BeginGeneration(); err != nil {
		return err
	}
	w.observe()
	return nil
}

// ApplyGenerationSuccess records a terminal success for the node.
// Unknown ids are ignored: the node may have been deleted while the
// request was in flight.
func (w *Workspace) ApplyGenerationSuccess(id valueobjects.NodeID, resultURL string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	node, err := w.canvas.Node(id)
	if err != nil {
		w.logger.Debug("dropping stale generation result", zap.String("nodeId", id.String()))
		return
	}
	node.CompleteGeneration(resultURL)
	w.observe()
}

// ApplyGenerationCancel returns the node to idle after its task was
// cancelled, so it can be dispatched again
func (w *Workspace) ApplyGenerationCancel(id valueobjects.NodeID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	node, err := w.canvas.Node(id)
	if err != nil {
		return
	}
	node.CancelGeneration()
	w.observe()
}

// ApplyGenerationFailure records a terminal failure scoped to the node
func (w *Workspace) ApplyGenerationFailure(id valueobjects.NodeID, message string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	node, err := w.canvas.Node(id)
	if err != nil {
		w.logger.Debug("dropping stale generation failure", zap.String("nodeId", id.String()))
		return
	}
	node.FailGeneration(message)
	w.observe()
}
