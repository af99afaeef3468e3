package gestures

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zach-sndr/twitcanva/application/ports"
	"github.com/zach-sndr/twitcanva/application/workspace"
	"github.com/zach-sndr/twitcanva/domain/core/entities"
	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
)

func newTestController(t *testing.T) (*Controller, *workspace.Workspace) {
	t.Helper()
	ws := workspace.New(nil, nil, nil, nil)
	return NewController(ws, nil, nil), ws
}

// addNodeAt places a node with its card top-left at the given canvas
// position, bypassing the centered-placement math.
func addNodeAt(t *testing.T, ws *workspace.Workspace, nodeType valueobjects.NodeType, x, y float64) *entities.Node {
	t.Helper()
	w, h := nodeType.Size()
	node, err := ws.CreateNode(nodeType, valueobjects.MustPoint(x+w/2, y+h/2), nil)
	require.NoError(t, err)
	return node
}

func TestBoxSelectScenario(t *testing.T) {
	c, ws := newTestController(t)

	inside := addNodeAt(t, ws, valueobjects.NodeTypeImage, 150, 150)
	addNodeAt(t, ws, valueobjects.NodeTypeImage, 1000, 1000)

	// Primary press on empty background starts a box-select.
	c.PointerDown(valueobjects.MustPoint(100, 100), ButtonPrimary)
	assert.Equal(t, KindBoxSelecting, c.ActiveGesture())

	c.PointerMove(valueobjects.MustPoint(300, 300))
	rect, ok := c.BoxRect()
	require.True(t, ok)
	assert.Equal(t, 200.0, rect.Width())

	menu := c.PointerUp(valueobjects.MustPoint(300, 300))
	assert.Nil(t, menu)
	assert.Equal(t, KindNone, c.ActiveGesture())

	assert.Equal(t, []valueobjects.NodeID{inside.ID()}, ws.SelectedNodes())
}

func TestBoxSelectNormalizesDragDirection(t *testing.T) {
	c, ws := newTestController(t)
	inside := addNodeAt(t, ws, valueobjects.NodeTypeImage, 150, 150)

	// Drag up-left: end corner above and left of the start.
	c.PointerDown(valueobjects.MustPoint(300, 300), ButtonPrimary)
	c.PointerMove(valueobjects.MustPoint(100, 100))
	c.PointerUp(valueobjects.MustPoint(100, 100))

	assert.Equal(t, []valueobjects.NodeID{inside.ID()}, ws.SelectedNodes())
}

func TestBoxSelectClearsPriorSelection(t *testing.T) {
	c, ws := newTestController(t)
	far := addNodeAt(t, ws, valueobjects.NodeTypeImage, 1000, 1000)
	ws.SelectNode(far.ID(), false)

	c.PointerDown(valueobjects.MustPoint(10, 10), ButtonPrimary)
	c.PointerMove(valueobjects.MustPoint(20, 20))
	c.PointerUp(valueobjects.MustPoint(20, 20))

	assert.Empty(t, ws.SelectedNodes())
}

func TestMutualExclusion(t *testing.T) {
	c, _ := newTestController(t)

	c.PointerDown(valueobjects.MustPoint(10, 10), ButtonPrimary)
	require.Equal(t, KindBoxSelecting, c.ActiveGesture())

	// A second pointer-down while a gesture owns the pointer is ignored.
	c.PointerDown(valueobjects.MustPoint(500, 500), ButtonSecondary)
	assert.Equal(t, KindBoxSelecting, c.ActiveGesture())

	c.PointerUp(valueobjects.MustPoint(10, 10))
	assert.Equal(t, KindNone, c.ActiveGesture())
}

func TestPanGesture(t *testing.T) {
	c, ws := newTestController(t)
	kept := addNodeAt(t, ws, valueobjects.NodeTypeImage, 1000, 1000)
	ws.SelectNode(kept.ID(), false)

	// Non-primary press on background pans.
	c.PointerDown(valueobjects.MustPoint(200, 200), ButtonSecondary)
	require.Equal(t, KindPanning, c.ActiveGesture())

	c.PointerMove(valueobjects.MustPoint(260, 230))
	c.PointerUp(valueobjects.MustPoint(260, 230))

	v := ws.Viewport()
	assert.Equal(t, 60.0, v.X())
	assert.Equal(t, 30.0, v.Y())

	// Panning preserves node selection.
	assert.Equal(t, []valueobjects.NodeID{kept.ID()}, ws.SelectedNodes())
}

func TestNodeDragMovesSelectionRigidly(t *testing.T) {
	c, ws := newTestController(t)

	a := addNodeAt(t, ws, valueobjects.NodeTypeImage, 0, 0)
	b := addNodeAt(t, ws, valueobjects.NodeTypeImage, 500, 0)
	ws.SelectNodes([]valueobjects.NodeID{a.ID(), b.ID()})

	// Press inside a's body, away from its connector anchors.
	c.PointerDown(valueobjects.MustPoint(100, 100), ButtonPrimary)
	require.Equal(t, KindDraggingNode, c.ActiveGesture())

	c.PointerMove(valueobjects.MustPoint(150, 130))
	c.PointerUp(valueobjects.MustPoint(150, 130))

	an, err := ws.Canvas().Node(a.ID())
	require.NoError(t, err)
	bn, err := ws.Canvas().Node(b.ID())
	require.NoError(t, err)

	assert.Equal(t, 50.0, an.Position().X())
	assert.Equal(t, 30.0, an.Position().Y())
	assert.Equal(t, 550.0, bn.Position().X())
	assert.Equal(t, 30.0, bn.Position().Y())

	// The whole drag is one history entry.
	require.True(t, ws.Undo())
	an, err = ws.Canvas().Node(a.ID())
	require.NoError(t, err)
	assert.Equal(t, 0.0, an.Position().X())
}

func TestNodeDragOnUnselectedNodeSelectsIt(t *testing.T) {
	c, ws := newTestController(t)

	a := addNodeAt(t, ws, valueobjects.NodeTypeImage, 0, 0)
	other := addNodeAt(t, ws, valueobjects.NodeTypeImage, 1000, 1000)
	ws.SelectNode(other.ID(), false)

	c.PointerDown(valueobjects.MustPoint(100, 100), ButtonPrimary)
	c.PointerUp(valueobjects.MustPoint(100, 100))

	assert.Equal(t, []valueobjects.NodeID{a.ID()}, ws.SelectedNodes())
	on, err := ws.Canvas().Node(other.ID())
	require.NoError(t, err)
	assert.Equal(t, 1000.0, on.Position().X(), "unselected nodes must not move")
}

func TestNodeDragCarriesGroupMembers(t *testing.T) {
	c, ws := newTestController(t)

	a := addNodeAt(t, ws, valueobjects.NodeTypeImage, 0, 0)
	b := addNodeAt(t, ws, valueobjects.NodeTypeImage, 500, 0)
	ws.SelectNodes([]valueobjects.NodeID{a.ID(), b.ID()})
	_, err := ws.GroupSelection("")
	require.NoError(t, err)

	// Drag only a; b rides along through the group.
	ws.SelectNode(a.ID(), false)
	c.PointerDown(valueobjects.MustPoint(100, 100), ButtonPrimary)
	c.PointerMove(valueobjects.MustPoint(140, 100))
	c.PointerUp(valueobjects.MustPoint(140, 100))

	bn, err := ws.Canvas().Node(b.ID())
	require.NoError(t, err)
	assert.Equal(t, 540.0, bn.Position().X())
}

func TestConnectionDragCommitsTextToImage(t *testing.T) {
	c, ws := newTestController(t)

	text := addNodeAt(t, ws, valueobjects.NodeTypeText, 0, 0)
	image := addNodeAt(t, ws, valueobjects.NodeTypeImage, 600, 0)

	// Grab the text node's output connector (right edge midpoint).
	c.PointerDown(valueobjects.MustPoint(340, 130), ButtonPrimary)
	require.Equal(t, KindDraggingConnection, c.ActiveGesture())

	// Release over the image node's input (left) half.
	c.PointerMove(valueobjects.MustPoint(650, 150))
	hoverID, hoverSide, ok := c.HoverTarget()
	require.True(t, ok)
	assert.True(t, hoverID.Equals(image.ID()))
	assert.Equal(t, SideInput, hoverSide)

	menu := c.PointerUp(valueobjects.MustPoint(650, 150))
	assert.Nil(t, menu)

	in, err := ws.Canvas().Node(image.ID())
	require.NoError(t, err)
	assert.True(t, in.HasParent(text.ID()))
}

func TestConnectionDragReleaseOnOutputHalfReverses(t *testing.T) {
	c, ws := newTestController(t)

	video := addNodeAt(t, ws, valueobjects.NodeTypeVideo, 600, 0)
	editor := addNodeAt(t, ws, valueobjects.NodeTypeVideoEditor, 0, 0)

	// Grab the editor's input connector and release on the video node's
	// output half: the video feeds the editor.
	c.PointerDown(valueobjects.MustPoint(0, 150), ButtonPrimary)
	require.Equal(t, KindDraggingConnection, c.ActiveGesture())

	c.PointerMove(valueobjects.MustPoint(900, 150))
	c.PointerUp(valueobjects.MustPoint(900, 150))

	en, err := ws.Canvas().Node(editor.ID())
	require.NoError(t, err)
	assert.True(t, en.HasParent(video.ID()))
}

func TestConnectionDragIllegalPairIsSilentNoOp(t *testing.T) {
	c, ws := newTestController(t)

	video := addNodeAt(t, ws, valueobjects.NodeTypeVideo, 0, 0)
	image := addNodeAt(t, ws, valueobjects.NodeTypeImage, 600, 0)

	c.PointerDown(valueobjects.MustPoint(340, 150), ButtonPrimary)
	require.Equal(t, KindDraggingConnection, c.ActiveGesture())

	menu := c.PointerUp(valueobjects.MustPoint(650, 150))
	assert.Nil(t, menu)

	in, err := ws.Canvas().Node(image.ID())
	require.NoError(t, err)
	assert.False(t, in.HasParent(video.ID()))
	assert.Empty(t, ws.Canvas().Edges())
}

func TestConnectorClickOpensMenu(t *testing.T) {
	c, ws := newTestController(t)
	text := addNodeAt(t, ws, valueobjects.NodeTypeText, 0, 0)

	base := time.Now()
	c.now = func() time.Time { return base }

	c.PointerDown(valueobjects.MustPoint(340, 130), ButtonPrimary)
	require.Equal(t, KindDraggingConnection, c.ActiveGesture())

	// Release 100ms later with nothing hovered: a click.
	c.now = func() time.Time { return base.Add(100 * time.Millisecond) }
	menu := c.PointerUp(valueobjects.MustPoint(342, 131))

	require.NotNil(t, menu)
	assert.True(t, menu.SourceID.Equals(text.ID()))
	assert.Equal(t, SideOutput, menu.Side)
}

func TestSlowReleaseOverEmptyCanvasDoesNothing(t *testing.T) {
	c, ws := newTestController(t)
	addNodeAt(t, ws, valueobjects.NodeTypeText, 0, 0)

	base := time.Now()
	c.now = func() time.Time { return base }

	c.PointerDown(valueobjects.MustPoint(340, 130), ButtonPrimary)

	c.now = func() time.Time { return base.Add(500 * time.Millisecond) }
	menu := c.PointerUp(valueobjects.MustPoint(800, 700))

	assert.Nil(t, menu)
	assert.Empty(t, ws.Canvas().Edges())
}

func TestEscapeCancelsBoxSelectAndSelection(t *testing.T) {
	c, ws := newTestController(t)
	node := addNodeAt(t, ws, valueobjects.NodeTypeImage, 0, 0)
	ws.SelectNode(node.ID(), false)

	c.PointerDown(valueobjects.MustPoint(1500, 1500), ButtonPrimary)
	require.Equal(t, KindBoxSelecting, c.ActiveGesture())

	c.Escape()
	assert.Equal(t, KindNone, c.ActiveGesture())
	assert.Empty(t, ws.SelectedNodes())
}

func TestZoomInterleavesWithGestures(t *testing.T) {
	c, ws := newTestController(t)

	c.PointerDown(valueobjects.MustPoint(10, 10), ButtonPrimary)
	c.Zoom(valueobjects.MustPoint(0, 0), 1.5)
	assert.Equal(t, KindBoxSelecting, c.ActiveGesture(), "zoom is not a gesture")
	assert.Equal(t, 1.5, ws.Viewport().Zoom())
	c.PointerUp(valueobjects.MustPoint(10, 10))
}

func TestCreateFromMenuOutputSide(t *testing.T) {
	c, ws := newTestController(t)
	text := addNodeAt(t, ws, valueobjects.NodeTypeText, 0, 0)

	req := NodeMenuRequest{SourceID: text.ID(), Side: SideOutput}
	require.NoError(t, c.CreateFromMenu(req, ports.TypeChoice(valueobjects.NodeTypeImage)))

	children := ws.Canvas().ChildrenOf(text.ID())
	require.Len(t, children, 1)
	child, err := ws.Canvas().Node(children[0])
	require.NoError(t, err)
	assert.Equal(t, valueobjects.NodeTypeImage, child.Type())
	assert.Greater(t, child.Position().X(), text.Bounds().MaxX())
}

func TestCreateFromMenuInputSide(t *testing.T) {
	c, ws := newTestController(t)
	image := addNodeAt(t, ws, valueobjects.NodeTypeImage, 600, 0)

	req := NodeMenuRequest{SourceID: image.ID(), Side: SideInput}
	require.NoError(t, c.CreateFromMenu(req, ports.TypeChoice(valueobjects.NodeTypeText)))

	in, err := ws.Canvas().Node(image.ID())
	require.NoError(t, err)
	parents := in.ParentIDs()
	require.Len(t, parents, 1)

	parent, err := ws.Canvas().Node(parents[0])
	require.NoError(t, err)
	assert.Equal(t, valueobjects.NodeTypeText, parent.Type())
	assert.Less(t, parent.Position().X(), in.Position().X())
}

func TestCreateFromMenuInputSideIllegalParentRollsBack(t *testing.T) {
	c, ws := newTestController(t)
	text := addNodeAt(t, ws, valueobjects.NodeTypeText, 600, 0)

	// Nothing may feed a text node; the orphan must not survive.
	req := NodeMenuRequest{SourceID: text.ID(), Side: SideInput}
	err := c.CreateFromMenu(req, ports.TypeChoice(valueobjects.NodeTypeImage))
	assert.Error(t, err)
	assert.Equal(t, 1, ws.Canvas().NodeCount())
}

func TestCreateFromMenuDelete(t *testing.T) {
	c, ws := newTestController(t)
	node := addNodeAt(t, ws, valueobjects.NodeTypeImage, 0, 0)

	req := NodeMenuRequest{SourceID: node.ID(), Side: SideOutput}
	require.NoError(t, c.CreateFromMenu(req, ports.DeleteChoice()))
	assert.Equal(t, 0, ws.Canvas().NodeCount())
}
