package model

import (
	"time"
)

// -----------------------------------------------------------------------------
// Scene Types
// -----------------------------------------------------------------------------

// Vec3 is a point or Euler triple in scene space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// TransformMode is the gizmo mode the editing client was in.
type TransformMode string

const (
	ModeTranslate TransformMode = "translate"
	ModeRotate    TransformMode = "rotate"
	ModeScale     TransformMode = "scale"
)

// Valid reports whether m is one of the known transform modes.
func (m TransformMode) Valid() bool {
	switch m {
	case ModeTranslate, ModeRotate, ModeScale:
		return true
	}
	return false
}

// TransformState is the single authoritative pose of the loaded model.
// Writes replace the whole value; there is no history and no merge.
type TransformState struct {
	Position Vec3          `json:"position"`
	Rotation Vec3          `json:"rotation"`
	Scale    Vec3          `json:"scale"`
	Mode     TransformMode `json:"mode"`
}

// DefaultTransformState returns the pose of a freshly created project.
func DefaultTransformState() TransformState {
	return TransformState{
		Scale: Vec3{X: 1, Y: 1, Z: 1},
		Mode:  ModeTranslate,
	}
}

// Annotation is a text note pinned to a point on the model.
type Annotation struct {
	ID         string    `json:"id"`
	Position   Vec3      `json:"position"`
	Text       string    `json:"text"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ItemID implements ListItem.
func (a Annotation) ItemID() string { return a.ID }

// ChatMessage is one entry of a project's chat log.
type ChatMessage struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Timestamp  time.Time `json:"timestamp"`
}

// ItemID implements ListItem.
func (m ChatMessage) ItemID() string { return m.ID }

// -----------------------------------------------------------------------------
// Project Document
// -----------------------------------------------------------------------------

// DefaultStatus is assigned to projects created without a status.
const DefaultStatus = "active"

// Project is the persisted scene document.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	OwnerID     string `json:"ownerId,omitempty"`
	UserID      string `json:"userId,omitempty"`
	Status      string `json:"status"`

	// ModelPath is the key of the uploaded model in asset storage (nil = none).
	ModelPath *string `json:"modelPath"`

	TransformState TransformState `json:"modelState"`
	Annotations    []Annotation   `json:"annotations"`
	Chat           []ChatMessage  `json:"chat"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProjectPatch is a partial update. Nil fields are left untouched; non-nil
// fields replace the stored value wholesale.
type ProjectPatch struct {
	Name        *string `json:"name,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	OwnerID     *string `json:"ownerId,omitempty"`
	UserID      *string `json:"userId,omitempty"`
	Status      *string `json:"status,omitempty"`
	ModelPath   *string `json:"modelPath,omitempty"`

	TransformState *TransformState `json:"modelState,omitempty"`
	Annotations    *[]Annotation   `json:"annotations,omitempty"`
}

// Empty reports whether the patch would change nothing.
func (p ProjectPatch) Empty() bool {
	return p.Name == nil && p.Title == nil && p.Description == nil &&
		p.OwnerID == nil && p.UserID == nil && p.Status == nil &&
		p.ModelPath == nil && p.TransformState == nil && p.Annotations == nil
}

// Apply writes the non-nil fields of p onto proj.
func (p ProjectPatch) Apply(proj *Project) {
	if p.Name != nil {
		proj.Name = *p.Name
	}
	if p.Title != nil {
		proj.Title = *p.Title
	}
	if p.Description != nil {
		proj.Description = *p.Description
	}
	if p.OwnerID != nil {
		proj.OwnerID = *p.OwnerID
	}
	if p.UserID != nil {
		proj.UserID = *p.UserID
	}
	if p.Status != nil {
		proj.Status = *p.Status
	}
	if p.ModelPath != nil {
		path := *p.ModelPath
		proj.ModelPath = &path
	}
	if p.TransformState != nil {
		proj.TransformState = *p.TransformState
	}
	if p.Annotations != nil {
		proj.Annotations = append([]Annotation(nil), (*p.Annotations)...)
	}
}

// -----------------------------------------------------------------------------
// List Operations
// -----------------------------------------------------------------------------

// ListField names an append-only list inside a Project.
type ListField string

const (
	FieldAnnotations ListField = "annotations"
	FieldChat        ListField = "chat"
)

// Valid reports whether f names a known list.
func (f ListField) Valid() bool {
	return f == FieldAnnotations || f == FieldChat
}

// ListItem is an element of a Project list, addressable by ID.
type ListItem interface {
	ItemID() string
}

// ListQuery filters and paginates project listings.
type ListQuery struct {
	Page     int    // 1-based
	Limit    int    // 0 = no limit
	SortBy   string // one of SortableFields
	SortDesc bool
	Search   string // case-insensitive match on name or description
	Status   string
	UserID   string
}

// SortableFields are the accepted ListQuery.SortBy values.
var SortableFields = map[string]bool{
	"createdAt": true,
	"updatedAt": true,
	"name":      true,
	"status":    true,
}

// Offset returns the number of rows to skip for the query's page.
func (q ListQuery) Offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}
