package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/SurakshaKumari/gt-3D-backend/internal/model"
)

// Memory is an in-process Store. All methods return copies; callers may
// mutate results freely.
type Memory struct {
	mu       sync.RWMutex
	projects map[string]*model.Project
	now      func() time.Time
}

// NewMemory creates an empty memory store.
func NewMemory() *Memory {
	return &Memory{
		projects: make(map[string]*model.Project),
		now:      time.Now,
	}
}

// SetClock replaces the time source. Used by tests.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

// Create implements Store.
func (m *Memory) Create(ctx context.Context, p *model.Project) (*model.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("create project", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cp := cloneProject(p)
	prepareNew(cp, uuid.NewString)
	if _, exists := m.projects[cp.ID]; exists {
		return nil, fmt.Errorf("create project: id %q already exists", cp.ID)
	}
	now := m.now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	m.projects[cp.ID] = cp
	return cloneProject(cp), nil
}

// Get implements Gateway.
func (m *Memory) Get(ctx context.Context, id string) (*model.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("get project", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneProject(p), nil
}

// Update implements Gateway.
func (m *Memory) Update(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("update project", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(p)
	p.UpdatedAt = m.now().UTC()
	return cloneProject(p), nil
}

// Delete implements Store.
func (m *Memory) Delete(ctx context.Context, id string) (*model.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("delete project", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.projects, id)
	return p, nil
}

// AppendToList implements Gateway.
func (m *Memory) AppendToList(ctx context.Context, id string, field model.ListField, item model.ListItem) error {
	if err := checkField(field); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return unavailable("append to list", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[id]
	if !ok {
		return ErrNotFound
	}

	switch field {
	case model.FieldAnnotations:
		a, ok := item.(model.Annotation)
		if !ok {
			return fmt.Errorf("append to %s: unexpected item type %T", field, item)
		}
		p.Annotations = append(p.Annotations, a)
	case model.FieldChat:
		msg, ok := item.(model.ChatMessage)
		if !ok {
			return fmt.Errorf("append to %s: unexpected item type %T", field, item)
		}
		p.Chat = append(p.Chat, msg)
	}
	p.UpdatedAt = m.now().UTC()
	return nil
}

// ClearList implements Gateway.
func (m *Memory) ClearList(ctx context.Context, id string, field model.ListField) error {
	if err := checkField(field); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return unavailable("clear list", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[id]
	if !ok {
		return ErrNotFound
	}

	switch field {
	case model.FieldAnnotations:
		p.Annotations = []model.Annotation{}
	case model.FieldChat:
		p.Chat = []model.ChatMessage{}
	}
	p.UpdatedAt = m.now().UTC()
	return nil
}

// RemoveFromList implements Gateway.
func (m *Memory) RemoveFromList(ctx context.Context, id string, field model.ListField, itemID string) error {
	if err := checkField(field); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return unavailable("remove from list", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[id]
	if !ok {
		return ErrNotFound
	}

	switch field {
	case model.FieldAnnotations:
		p.Annotations = removeByID(p.Annotations, itemID)
	case model.FieldChat:
		p.Chat = removeByID(p.Chat, itemID)
	}
	p.UpdatedAt = m.now().UTC()
	return nil
}

// List implements Store.
func (m *Memory) List(ctx context.Context, q model.ListQuery) ([]model.Project, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, unavailable("list projects", err)
	}

	m.mu.RLock()
	matched := make([]model.Project, 0, len(m.projects))
	match := newMatcher(q)
	for _, p := range m.projects {
		if match(p) {
			matched = append(matched, *cloneProject(p))
		}
	}
	m.mu.RUnlock()

	sortProjects(matched, q.SortBy, q.SortDesc)

	total := len(matched)
	start := q.Offset()
	if start > total {
		start = total
	}
	end := total
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}
	return matched[start:end], total, nil
}

// Ping implements Store.
func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close implements Store.
func (m *Memory) Close() {}

// newMatcher builds a filter for q. Search folds case with x/text so that
// matching agrees with Postgres ILIKE for non-ASCII names.
func newMatcher(q model.ListQuery) func(*model.Project) bool {
	fold := cases.Fold()
	needle := fold.String(q.Search)
	return func(p *model.Project) bool {
		if q.Status != "" && p.Status != q.Status {
			return false
		}
		if q.UserID != "" && p.UserID != q.UserID {
			return false
		}
		if needle != "" &&
			!strings.Contains(fold.String(p.Name), needle) &&
			!strings.Contains(fold.String(p.Description), needle) {
			return false
		}
		return true
	}
}

func sortProjects(ps []model.Project, sortBy string, desc bool) {
	less := func(a, b *model.Project) bool { return a.CreatedAt.Before(b.CreatedAt) }
	switch sortBy {
	case "updatedAt":
		less = func(a, b *model.Project) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	case "name":
		less = func(a, b *model.Project) bool { return a.Name < b.Name }
	case "status":
		less = func(a, b *model.Project) bool { return a.Status < b.Status }
	}
	sort.SliceStable(ps, func(i, j int) bool {
		if desc {
			return less(&ps[j], &ps[i])
		}
		return less(&ps[i], &ps[j])
	})
}

func removeByID[T model.ListItem](items []T, id string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if it.ItemID() != id {
			out = append(out, it)
		}
	}
	return out
}

func cloneProject(p *model.Project) *model.Project {
	cp := *p
	if p.ModelPath != nil {
		path := *p.ModelPath
		cp.ModelPath = &path
	}
	if p.Annotations != nil {
		cp.Annotations = append([]model.Annotation{}, p.Annotations...)
	}
	if p.Chat != nil {
		cp.Chat = append([]model.ChatMessage{}, p.Chat...)
	}
	return &cp
}
