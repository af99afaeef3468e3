package workflow

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zach-sndr/twitcanva/domain/core/aggregates"
	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
)

func buildCanvas(t *testing.T) *aggregates.Canvas {
	t.Helper()
	canvas := aggregates.NewCanvas("Fox Reel", nil)

	text, err := canvas.CreateNode(valueobjects.NodeTypeText, valueobjects.MustPoint(200, 200), nil)
	require.NoError(t, err)
	canvas.SetNodePrompt(text.ID(), "a red fox in snow")

	textID := text.ID()
	image, err := canvas.CreateNode(valueobjects.NodeTypeImage, valueobjects.MustPoint(700, 200), &textID)
	require.NoError(t, err)
	image.ApplySettings("flux-pro", map[string]string{"aspect": "16:9"})
	image.CompleteGeneration("https://cdn/fox.png")

	a, err := canvas.CreateNode(valueobjects.NodeTypeVideo, valueobjects.MustPoint(200, 800), nil)
	require.NoError(t, err)
	b, err := canvas.CreateNode(valueobjects.NodeTypeVideo, valueobjects.MustPoint(700, 800), nil)
	require.NoError(t, err)
	_, err = canvas.GroupNodes([]valueobjects.NodeID{a.ID(), b.ID()}, "b-roll")
	require.NoError(t, err)

	return canvas
}

func TestCaptureMaterializeRoundTrip(t *testing.T) {
	canvas := buildCanvas(t)
	viewport := valueobjects.ReconstructViewport(-120, 40, 1.5, nil)

	doc := Capture(canvas, viewport)
	require.Len(t, doc.Nodes, 4)
	require.Len(t, doc.Groups, 1)
	assert.Equal(t, "Fox Reel", doc.Title)

	// Through JSON, the way the stores persist it.
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	var decoded Document
	require.NoError(t, json.Unmarshal(data, &decoded))

	loaded, vp, err := decoded.Materialize(nil)
	require.NoError(t, err)
	assert.Equal(t, "Fox Reel", loaded.Title())
	assert.Equal(t, 4, loaded.NodeCount())
	assert.Len(t, loaded.Groups(), 1)
	assert.Equal(t, "b-roll", loaded.Groups()[0].Label())
	assert.Equal(t, -120.0, vp.X())
	assert.Equal(t, 40.0, vp.Y())
	assert.Equal(t, 1.5, vp.Zoom())

	// The parent link and the generated state survive.
	edges := loaded.Edges()
	require.Len(t, edges, 1)
	child, err := loaded.Node(edges[0].ChildID)
	require.NoError(t, err)
	assert.Equal(t, valueobjects.NodeTypeImage, child.Type())
	assert.Equal(t, "flux-pro", child.Model())
	assert.Equal(t, "16:9", child.Settings()["aspect"])
	assert.Equal(t, "https://cdn/fox.png", child.ResultURL())

	parent, err := loaded.Node(edges[0].ParentID)
	require.NoError(t, err)
	assert.Equal(t, "a red fox in snow", parent.Prompt())
}

func TestMaterializeSkipsInvalidRecords(t *testing.T) {
	good := uuid.NewString()
	doc := &Document{
		Title: "partly broken",
		Nodes: []NodeRecord{
			{ID: good, Type: "image", X: 10, Y: 20},
			{ID: "not-a-uuid", Type: "image"},
			{ID: uuid.NewString(), Type: "hologram"},
		},
	}

	canvas, _, err := doc.Materialize(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, canvas.NodeCount())
	assert.Equal(t, good, canvas.Nodes()[0].ID().String())
}

func TestMaterializePrunesDanglingParentAndSmallGroup(t *testing.T) {
	a := uuid.NewString()
	b := uuid.NewString()
	doc := &Document{
		Nodes: []NodeRecord{
			{ID: a, Type: "image"},
			{ID: b, Type: "video", ParentIDs: []string{a, uuid.NewString()}},
		},
		Groups: []GroupRecord{
			{ID: uuid.NewString(), Label: "lonely", NodeIDs: []string{a}},
		},
	}

	canvas, _, err := doc.Materialize(nil)
	require.NoError(t, err)
	require.NoError(t, canvas.Validate())

	id, err := valueobjects.NewNodeIDFromString(b)
	require.NoError(t, err)
	node, err := canvas.Node(id)
	require.NoError(t, err)
	require.Len(t, node.ParentIDs(), 1)
	assert.Equal(t, a, node.ParentIDs()[0].String())
	assert.Empty(t, canvas.Groups())
}

func TestMaterializeDefaultsZeroZoom(t *testing.T) {
	doc := &Document{Viewport: ViewportRecord{X: 5, Y: 5}}
	_, vp, err := doc.Materialize(nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, vp.Zoom())
}

func TestMaterializeEmptyDocument(t *testing.T) {
	doc := &Document{}
	canvas, vp, err := doc.Materialize(nil)
	require.NoError(t, err)
	assert.Zero(t, canvas.NodeCount())
	assert.Equal(t, 1.0, vp.Zoom())
}
