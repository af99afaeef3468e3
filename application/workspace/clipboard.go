package workspace

import (
	"go.uber.org/zap"

	"github.com/zach-sndr/twitcanva/domain/core/entities"
	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
)

// Clipboard semantics: copy takes a detached snapshot of the selected
// nodes' data without group or parent linkage; paste re-materializes
// them with fresh ids and a position offset. Duplicate, by contrast,
// preserves parent links on the copies. The asymmetry is intentional
// product behavior.

// CopySelection snapshots the selected nodes onto the clipboard.
// Originals are never touched.
func (w *Workspace) CopySelection() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.clipboard = nil
	for _, id := range w.selection.nodeList() {
		node, err := w.canvas.Node(id)
		if err != nil {
			continue
		}
		clone := node.Clone()
		// Linkage is excluded from the copied data.
		for _, pid := range clone.ParentIDs() {
			clone.PruneParent(pid)
		}
		clone.ClearGroup()
		clone.MarkEventsAsCommitted()
		w.clipboard = append(w.clipboard, clone)
	}
	return len(w.clipboard)
}

// Paste materializes the clipboard contents with fresh ids, offset
// positions, and no parent or group attachments. The pasted nodes
// become the new selection. Pasting twice yields distinct ids.
func (w *Workspace) Paste() ([]*entities.Node, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.clipboard) == 0 {
		return nil, nil
	}

	offset := valueobjects.MustPoint(w.cfg.PasteOffset, w.cfg.PasteOffset)
	var pasted []*entities.Node
	for _, source := range w.clipboard {
		node := source.CloneDetached(offset)
		if err := w.canvas.AddNode(node); err != nil {
			return pasted, err
		}
		pasted = append(pasted, node)
	}

	ids := make([]valueobjects.NodeID, len(pasted))
	for i, node := range pasted {
		ids[i] = node.ID()
	}
	w.selection.setNodes(ids)

	w.logger.Debug("pasted nodes", zap.Int("count", len(pasted)))
	w.observe()
	return pasted, nil
}

// DuplicateSelection copies the selected nodes in place with fresh ids
// and offset positions, preserving each copy's parent links (so the
// duplicates consume the same inputs as the originals). Group
// membership is not carried over.
func (w *Workspace) DuplicateSelection() ([]*entities.Node, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	selected := w.selection.nodeList()
	if len(selected) == 0 {
		return nil, nil
	}

	offset := valueobjects.MustPoint(w.cfg.PasteOffset, w.cfg.PasteOffset)
	var duplicates []*entities.Node
	for _, id := range selected {
		source, err := w.canvas.Node(id)
		if err != nil {
			continue
		}
		parents := source.ParentIDs()
		node := source.CloneDetached(offset)
		for _, pid := range parents {
			// Re-attach to the original parents; they still exist.
			if err := node.AddParent(pid, w.cfg); err != nil {
				continue
			}
		}
		if err := w.canvas.AddNode(node); err != nil {
			return duplicates, err
		}
		duplicates = append(duplicates, node)
	}

	ids := make([]valueobjects.NodeID, len(duplicates))
	for i, node := range duplicates {
		ids[i] = node.ID()
	}
	w.selection.setNodes(ids)

	w.logger.Debug("duplicated nodes", zap.Int("count", len(duplicates)))
	w.observe()
	return duplicates, nil
}

// ClipboardSize reports how many nodes are on the clipboard
func (w *Workspace) ClipboardSize() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.clipboard)
}
