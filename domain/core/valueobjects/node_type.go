package valueobjects

import "fmt"

// NodeType is the closed enumeration of node kinds that can live on the
// canvas. Adding a type here forces every switch over NodeType to be
// revisited (AllNodeTypes is the exhaustiveness anchor for tests).
type NodeType string

const (
	NodeTypeText            NodeType = "text"
	NodeTypeImage           NodeType = "image"
	NodeTypeVideo           NodeType = "video"
	NodeTypeAudio           NodeType = "audio"
	NodeTypeImageEditor     NodeType = "image_editor"
	NodeTypeVideoEditor     NodeType = "video_editor"
	NodeTypeStoryboard      NodeType = "storyboard"
	NodeTypeCameraAngle     NodeType = "camera_angle"
	NodeTypeLocalImageModel NodeType = "local_image_model"
	NodeTypeLocalVideoModel NodeType = "local_video_model"
)

// AllNodeTypes lists every valid NodeType.
var AllNodeTypes = []NodeType{
	NodeTypeText,
	NodeTypeImage,
	NodeTypeVideo,
	NodeTypeAudio,
	NodeTypeImageEditor,
	NodeTypeVideoEditor,
	NodeTypeStoryboard,
	NodeTypeCameraAngle,
	NodeTypeLocalImageModel,
	NodeTypeLocalVideoModel,
}

// ParseNodeType converts a string into a NodeType with validation
func ParseNodeType(s string) (NodeType, error) {
	for _, t := range AllNodeTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown node type %q", s)
}

// IsValid reports whether the type is a member of the closed enumeration
func (t NodeType) IsValid() bool {
	_, err := ParseNodeType(string(t))
	return err == nil
}

// String returns the string representation
func (t NodeType) String() string {
	return string(t)
}

// Size returns the nominal card dimensions used for hit-testing and
// layout. Rendered size may vary with content; the graph model only
// needs a conservative bounding box.
func (t NodeType) Size() (width, height float64) {
	switch t {
	case NodeTypeText:
		return 340, 260
	case NodeTypeStoryboard:
		return 640, 420
	case NodeTypeImage, NodeTypeVideo, NodeTypeAudio,
		NodeTypeImageEditor, NodeTypeVideoEditor,
		NodeTypeCameraAngle, NodeTypeLocalImageModel, NodeTypeLocalVideoModel:
		return 340, 300
	default:
		return 340, 300
	}
}

// GeneratesMedia reports whether the node type produces a media result
// when generation runs (as opposed to pure text or editor surfaces).
func (t NodeType) GeneratesMedia() bool {
	switch t {
	case NodeTypeImage, NodeTypeVideo, NodeTypeAudio,
		NodeTypeStoryboard, NodeTypeLocalImageModel, NodeTypeLocalVideoModel:
		return true
	default:
		return false
	}
}
