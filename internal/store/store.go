package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/SurakshaKumari/gt-3D-backend/internal/model"
)

var (
	// ErrNotFound is returned when no project has the requested ID.
	ErrNotFound = errors.New("project not found")

	// ErrUnavailable wraps backend failures (connection loss, timeouts).
	ErrUnavailable = errors.New("store unavailable")

	// ErrInvalidField is returned for a list operation on an unknown field.
	ErrInvalidField = errors.New("invalid list field")
)

// Gateway is the subset of Store used by the mutation path.
type Gateway interface {
	// Get returns the project with the given ID.
	Get(ctx context.Context, id string) (*model.Project, error)

	// Update applies patch and returns the updated project.
	Update(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error)

	// AppendToList appends item to the named list.
	AppendToList(ctx context.Context, id string, field model.ListField, item model.ListItem) error

	// ClearList empties the named list.
	ClearList(ctx context.Context, id string, field model.ListField) error

	// RemoveFromList deletes every item whose ItemID equals itemID. Removing
	// an ID that is not present succeeds.
	RemoveFromList(ctx context.Context, id string, field model.ListField, itemID string) error
}

// Store is the full project persistence interface.
type Store interface {
	Gateway

	// Create inserts p, assigning ID, defaults and timestamps as needed.
	Create(ctx context.Context, p *model.Project) (*model.Project, error)

	// Delete removes the project and returns it as it was.
	Delete(ctx context.Context, id string) (*model.Project, error)

	// List returns one page of matching projects and the total match count.
	List(ctx context.Context, q model.ListQuery) ([]model.Project, int, error)

	// Ping checks backend health.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close()
}

func checkField(field model.ListField) error {
	if !field.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidField, field)
	}
	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

// prepareNew fills server-side defaults on a project about to be created.
func prepareNew(p *model.Project, newID func() string) {
	if p.ID == "" {
		p.ID = newID()
	}
	if p.Status == "" {
		p.Status = model.DefaultStatus
	}
	if p.TransformState == (model.TransformState{}) {
		p.TransformState = model.DefaultTransformState()
	}
	if p.TransformState.Mode == "" {
		p.TransformState.Mode = model.ModeTranslate
	}
	if p.Annotations == nil {
		p.Annotations = []model.Annotation{}
	}
	if p.Chat == nil {
		p.Chat = []model.ChatMessage{}
	}
}
