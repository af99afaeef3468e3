package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zach-sndr/twitcanva/domain/config"
	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
)

func TestNewNode(t *testing.T) {
	node, err := NewNode(valueobjects.NodeTypeText, valueobjects.MustPoint(10, 20))
	require.NoError(t, err)

	assert.False(t, node.ID().IsZero())
	assert.Equal(t, valueobjects.NodeTypeText, node.Type())
	assert.Equal(t, StatusIdle, node.Status())
	assert.True(t, node.IsRoot())
	assert.Len(t, node.GetUncommittedEvents(), 1)

	_, err = NewNode(valueobjects.NodeType("hologram"), valueobjects.MustPoint(0, 0))
	assert.Error(t, err)
}

func TestNodeBoundsAndAnchors(t *testing.T) {
	node, err := NewNode(valueobjects.NodeTypeImage, valueobjects.MustPoint(100, 200))
	require.NoError(t, err)

	b := node.Bounds()
	assert.Equal(t, 100.0, b.MinX())
	assert.Equal(t, 200.0, b.MinY())
	assert.Equal(t, 440.0, b.MaxX())
	assert.Equal(t, 500.0, b.MaxY())

	in := node.InputAnchor()
	assert.Equal(t, 100.0, in.X())
	assert.Equal(t, 350.0, in.Y())

	out := node.OutputAnchor()
	assert.Equal(t, 440.0, out.X())
	assert.Equal(t, 350.0, out.Y())
}

func TestNodeAddParent(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	node, err := NewNode(valueobjects.NodeTypeVideo, valueobjects.MustPoint(0, 0))
	require.NoError(t, err)

	first := valueobjects.NewNodeID()
	second := valueobjects.NewNodeID()

	require.NoError(t, node.AddParent(first, cfg))
	require.NoError(t, node.AddParent(second, cfg))
	assert.Equal(t, []valueobjects.NodeID{first, second}, node.ParentIDs())

	// Self-connection rejected.
	err = node.AddParent(node.ID(), cfg)
	assert.Error(t, err)

	// Duplicate edge rejected; order unchanged.
	err = node.AddParent(first, cfg)
	assert.Error(t, err)
	assert.Equal(t, []valueobjects.NodeID{first, second}, node.ParentIDs())
}

func TestNodeRemoveParent(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	node, err := NewNode(valueobjects.NodeTypeVideo, valueobjects.MustPoint(0, 0))
	require.NoError(t, err)

	parent := valueobjects.NewNodeID()
	require.NoError(t, node.AddParent(parent, cfg))
	require.NoError(t, node.RemoveParent(parent))
	assert.True(t, node.IsRoot())

	assert.Error(t, node.RemoveParent(parent))
	assert.False(t, node.PruneParent(parent))
}

func TestNodeGenerationLifecycle(t *testing.T) {
	node, err := NewNode(valueobjects.NodeTypeImage, valueobjects.MustPoint(0, 0))
	require.NoError(t, err)

	require.NoError(t, node.BeginGeneration())
	assert.Equal(t, StatusLoading, node.Status())

	// Re-dispatch while loading is a conflict.
	assert.Error(t, node.BeginGeneration())

	node.CompleteGeneration("https://cdn.example/img.png")
	assert.Equal(t, StatusSuccess, node.Status())
	assert.Equal(t, "https://cdn.example/img.png", node.ResultURL())
	assert.Empty(t, node.ErrorMessage())

	require.NoError(t, node.BeginGeneration())
	node.FailGeneration("provider timeout")
	assert.Equal(t, StatusError, node.Status())
	assert.Equal(t, "provider timeout", node.ErrorMessage())
	// Prior result survives a later failure.
	assert.Equal(t, "https://cdn.example/img.png", node.ResultURL())
}

func TestNodeClone(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	node, err := NewNode(valueobjects.NodeTypeImage, valueobjects.MustPoint(5, 5))
	require.NoError(t, err)
	node.SetPrompt("a red fox")
	node.ApplySettings("flux-pro", map[string]string{"steps": "30"})
	require.NoError(t, node.AddParent(valueobjects.NewNodeID(), cfg))

	clone := node.Clone()
	assert.True(t, clone.ID().Equals(node.ID()))
	assert.Equal(t, node.Prompt(), clone.Prompt())
	assert.Equal(t, node.Model(), clone.Model())
	assert.Equal(t, node.ParentIDs(), clone.ParentIDs())
	assert.Empty(t, clone.GetUncommittedEvents())

	// Mutating the clone must not leak into the original.
	clone.SetPrompt("changed")
	assert.Equal(t, "a red fox", node.Prompt())
}

func TestNodeCloneDetached(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	node, err := NewNode(valueobjects.NodeTypeVideo, valueobjects.MustPoint(100, 100))
	require.NoError(t, err)
	node.SetPrompt("dolly zoom")
	require.NoError(t, node.AddParent(valueobjects.NewNodeID(), cfg))

	detached := node.CloneDetached(valueobjects.MustPoint(40, 40))
	assert.False(t, detached.ID().Equals(node.ID()))
	assert.Equal(t, 140.0, detached.Position().X())
	assert.Equal(t, 140.0, detached.Position().Y())
	assert.True(t, detached.IsRoot())
	assert.True(t, detached.GroupID().IsZero())
	assert.Equal(t, "dolly zoom", detached.Prompt())
}

func TestReconstructNodeSanitizesParents(t *testing.T) {
	id := valueobjects.NewNodeID()
	parent := valueobjects.NewNodeID()

	node, err := ReconstructNode(
		id,
		valueobjects.NodeTypeImage,
		valueobjects.MustPoint(0, 0),
		"", "", "", "",
		[]valueobjects.NodeID{parent, parent, id, {}},
		time.Now(), time.Now(),
	)
	require.NoError(t, err)

	assert.Equal(t, []valueobjects.NodeID{parent}, node.ParentIDs())
	assert.Equal(t, StatusIdle, node.Status())
}
