// Package workflow implements the persistence collaborator: the
// workflow document codec plus file and SQLite backed stores. The core
// replaces its store wholesale on load; selection and history reset to
// a fresh baseline there, not here.
package workflow

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/zach-sndr/twitcanva/domain/config"
	"github.com/zach-sndr/twitcanva/domain/core/aggregates"
	"github.com/zach-sndr/twitcanva/domain/core/entities"
	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
	pkgerrors "github.com/zach-sndr/twitcanva/pkg/errors"
)

var validate = validator.New()

// Document is the persisted form of a workflow: the tuple
// {nodes, groups, viewport, title}.
type Document struct {
	Title    string         `json:"title"`
	Nodes    []NodeRecord   `json:"nodes"`
	Groups   []GroupRecord  `json:"groups"`
	Viewport ViewportRecord `json:"viewport"`
	SavedAt  time.Time      `json:"saved_at,omitempty"`
}

// NodeRecord is one node's persisted data.
type NodeRecord struct {
	ID           string            `json:"id" validate:"required,uuid4"`
	Type         string            `json:"type" validate:"required"`
	X            float64           `json:"x"`
	Y            float64           `json:"y"`
	Prompt       string            `json:"prompt,omitempty"`
	Model        string            `json:"model,omitempty"`
	Settings     map[string]string `json:"settings,omitempty"`
	Status       string            `json:"status,omitempty"`
	ResultURL    string            `json:"result_url,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	ParentIDs    []string          `json:"parent_ids,omitempty"`
	CreatedAt    time.Time         `json:"created_at,omitempty"`
	UpdatedAt    time.Time         `json:"updated_at,omitempty"`
}

// GroupRecord is one group's persisted data.
type GroupRecord struct {
	ID      string   `json:"id" validate:"required"`
	Label   string   `json:"label"`
	NodeIDs []string `json:"node_ids" validate:"min=2"`
}

// ViewportRecord is the persisted pan/zoom state.
type ViewportRecord struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// Capture serializes the live canvas and viewport into a document
func Capture(canvas *aggregates.Canvas, viewport valueobjects.Viewport) *Document {
	doc := &Document{
		Title: canvas.Title(),
		Viewport: ViewportRecord{
			X:    viewport.X(),
			Y:    viewport.Y(),
			Zoom: viewport.Zoom(),
		},
		SavedAt: time.Now(),
	}

	for _, node := range canvas.Nodes() {
		rec := NodeRecord{
			ID:           node.ID().String(),
			Type:         node.Type().String(),
			X:            node.Position().X(),
			Y:            node.Position().Y(),
			Prompt:       node.Prompt(),
			Model:        node.Model(),
			Settings:     node.Settings(),
			Status:       string(node.Status()),
			ResultURL:    node.ResultURL(),
			ErrorMessage: node.ErrorMessage(),
			CreatedAt:    node.CreatedAt(),
			UpdatedAt:    node.UpdatedAt(),
		}
		for _, pid := range node.ParentIDs() {
			rec.ParentIDs = append(rec.ParentIDs, pid.String())
		}
		doc.Nodes = append(doc.Nodes, rec)
	}

	for _, group := range canvas.Groups() {
		rec := GroupRecord{
			ID:    group.ID().String(),
			Label: group.Label(),
		}
		for _, nid := range group.NodeIDs() {
			rec.NodeIDs = append(rec.NodeIDs, nid.String())
		}
		doc.Groups = append(doc.Groups, rec)
	}

	return doc
}

// Materialize rebuilds a canvas and viewport from the document. Absent
// nodes/groups load as empty; records that fail validation are skipped
// rather than failing the whole load, and structural invariants
// (dangling parents, undersized groups) are reconciled by the
// aggregate.
func (d *Document) Materialize(cfg *config.DomainConfig) (*aggregates.Canvas, valueobjects.Viewport, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	var nodes []*entities.Node
	for _, rec := range d.Nodes {
		node, err := rec.toEntity()
		if err != nil {
			continue
		}
		nodes = append(nodes, node)
	}

	var groups []*entities.NodeGroup
	for _, rec := range d.Groups {
		group, err := rec.toEntity()
		if err != nil {
			continue
		}
		groups = append(groups, group)
	}

	canvas := aggregates.ReconstructCanvas(d.Title, nodes, groups, cfg)
	if err := canvas.Validate(); err != nil {
		return nil, valueobjects.Viewport{}, pkgerrors.NewInternalError("loaded workflow failed validation").WithCause(err)
	}

	zoom := d.Viewport.Zoom
	if zoom == 0 {
		zoom = 1
	}
	viewport := valueobjects.ReconstructViewport(d.Viewport.X, d.Viewport.Y, zoom, cfg)

	return canvas, viewport, nil
}

func (r NodeRecord) toEntity() (*entities.Node, error) {
	if err := validate.Struct(r); err != nil {
		return nil, pkgerrors.NewValidationError("invalid node record").WithCause(err)
	}

	id, err := valueobjects.NewNodeIDFromString(r.ID)
	if err != nil {
		return nil, err
	}
	nodeType, err := valueobjects.ParseNodeType(r.Type)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	position, err := valueobjects.NewPoint(r.X, r.Y)
	if err != nil {
		return nil, err
	}

	var parents []valueobjects.NodeID
	for _, pid := range r.ParentIDs {
		parent, err := valueobjects.NewNodeIDFromString(pid)
		if err != nil {
			continue
		}
		parents = append(parents, parent)
	}

	node, err := entities.ReconstructNode(
		id,
		nodeType,
		position,
		r.Prompt,
		entities.GenerationStatus(r.Status),
		r.ResultURL,
		r.ErrorMessage,
		parents,
		r.CreatedAt,
		r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if r.Model != "" || len(r.Settings) > 0 {
		node.ApplySettings(r.Model, r.Settings)
	}
	return node, nil
}

func (r GroupRecord) toEntity() (*entities.NodeGroup, error) {
	if err := validate.Struct(r); err != nil {
		return nil, pkgerrors.NewValidationError("invalid group record").WithCause(err)
	}

	id, err := valueobjects.NewGroupIDFromString(r.ID)
	if err != nil {
		return nil, err
	}

	var members []valueobjects.NodeID
	for _, nid := range r.NodeIDs {
		member, err := valueobjects.NewNodeIDFromString(nid)
		if err != nil {
			continue
		}
		members = append(members, member)
	}

	return entities.ReconstructNodeGroup(id, r.Label, members, time.Now(), time.Now())
}
