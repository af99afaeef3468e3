package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zach-sndr/twitcanva/domain/core/aggregates"
	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
)

func TestPropagationTokenSingleUse(t *testing.T) {
	token := NewPropagationToken()
	assert.True(t, token.Spend())
	assert.False(t, token.Spend())

	var nilToken *PropagationToken
	assert.False(t, nilToken.Spend())
}

func TestOnConnectedSeedsEmptyChildPrompt(t *testing.T) {
	canvas := aggregates.NewCanvas("", nil)
	text, err := canvas.CreateNode(valueobjects.NodeTypeText, valueobjects.MustPoint(0, 0), nil)
	require.NoError(t, err)
	canvas.SetNodePrompt(text.ID(), "a lighthouse at dusk")
	image, err := canvas.CreateNode(valueobjects.NodeTypeImage, valueobjects.MustPoint(600, 0), nil)
	require.NoError(t, err)

	p := NewPromptPropagator(nil)
	p.OnConnected(canvas, text.ID(), image.ID(), NewPropagationToken())

	got, err := canvas.Node(image.ID())
	require.NoError(t, err)
	assert.Equal(t, "a lighthouse at dusk", got.Prompt())
}

func TestOnConnectedPreservesChildPrompt(t *testing.T) {
	canvas := aggregates.NewCanvas("", nil)
	text, err := canvas.CreateNode(valueobjects.NodeTypeText, valueobjects.MustPoint(0, 0), nil)
	require.NoError(t, err)
	canvas.SetNodePrompt(text.ID(), "parent prompt")
	image, err := canvas.CreateNode(valueobjects.NodeTypeImage, valueobjects.MustPoint(600, 0), nil)
	require.NoError(t, err)
	canvas.SetNodePrompt(image.ID(), "child's own prompt")

	p := NewPromptPropagator(nil)
	p.OnConnected(canvas, text.ID(), image.ID(), NewPropagationToken())

	got, err := canvas.Node(image.ID())
	require.NoError(t, err)
	assert.Equal(t, "child's own prompt", got.Prompt())
}

func TestOnConnectedIgnoresNonTextParent(t *testing.T) {
	canvas := aggregates.NewCanvas("", nil)
	img, err := canvas.CreateNode(valueobjects.NodeTypeImage, valueobjects.MustPoint(0, 0), nil)
	require.NoError(t, err)
	canvas.SetNodePrompt(img.ID(), "image prompt")
	video, err := canvas.CreateNode(valueobjects.NodeTypeVideo, valueobjects.MustPoint(600, 0), nil)
	require.NoError(t, err)

	p := NewPromptPropagator(nil)
	p.OnConnected(canvas, img.ID(), video.ID(), NewPropagationToken())

	got, err := canvas.Node(video.ID())
	require.NoError(t, err)
	assert.Empty(t, got.Prompt())
}

func TestOnConnectedSpentTokenIsNoOp(t *testing.T) {
	canvas := aggregates.NewCanvas("", nil)
	text, err := canvas.CreateNode(valueobjects.NodeTypeText, valueobjects.MustPoint(0, 0), nil)
	require.NoError(t, err)
	canvas.SetNodePrompt(text.ID(), "prompt")
	image, err := canvas.CreateNode(valueobjects.NodeTypeImage, valueobjects.MustPoint(600, 0), nil)
	require.NoError(t, err)

	token := NewPropagationToken()
	require.True(t, token.Spend())

	p := NewPromptPropagator(nil)
	p.OnConnected(canvas, text.ID(), image.ID(), token)

	got, err := canvas.Node(image.ID())
	require.NoError(t, err)
	assert.Empty(t, got.Prompt())
}
