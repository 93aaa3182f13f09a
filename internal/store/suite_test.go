package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SurakshaKumari/gt-3D-backend/internal/model"
)

// runStoreSuite exercises the behavior every Store implementation must share.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("create applies defaults", func(t *testing.T) {
		s := newStore(t)
		p, err := s.Create(context.Background(), &model.Project{Name: "bracket"})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if p.ID == "" {
			t.Error("ID not assigned")
		}
		if p.Status != model.DefaultStatus {
			t.Errorf("Status = %q, want %q", p.Status, model.DefaultStatus)
		}
		if p.TransformState != model.DefaultTransformState() {
			t.Errorf("TransformState = %+v, want default", p.TransformState)
		}
		if p.Annotations == nil || p.Chat == nil {
			t.Error("lists should be empty, not nil")
		}
		if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
			t.Error("timestamps not set")
		}
	})

	t.Run("get missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(context.Background(), "nope")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Get error = %v, want ErrNotFound", err)
		}
	})

	t.Run("update replaces transform wholesale", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		p := mustCreate(t, s, "gear")

		ts := model.TransformState{
			Position: model.Vec3{X: 1, Y: 2, Z: 3},
			Rotation: model.Vec3{Y: 1.5},
			Scale:    model.Vec3{X: 2, Y: 2, Z: 2},
			Mode:     model.ModeRotate,
		}
		updated, err := s.Update(ctx, p.ID, model.ProjectPatch{TransformState: &ts})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if updated.TransformState != ts {
			t.Errorf("TransformState = %+v, want %+v", updated.TransformState, ts)
		}
		if updated.Name != "gear" {
			t.Errorf("Name = %q, untouched field changed", updated.Name)
		}
		if updated.UpdatedAt.Before(p.UpdatedAt) {
			t.Error("UpdatedAt went backwards")
		}

		if _, err := s.Update(ctx, "nope", model.ProjectPatch{TransformState: &ts}); !errors.Is(err, ErrNotFound) {
			t.Errorf("Update missing error = %v, want ErrNotFound", err)
		}
	})

	t.Run("append, remove and clear chat", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		p := mustCreate(t, s, "chatty")

		for _, id := range []string{"m1", "m2", "m3"} {
			msg := model.ChatMessage{ID: id, Text: "hi " + id, AuthorID: "u1", AuthorName: "Ann", Timestamp: time.Now().UTC()}
			if err := s.AppendToList(ctx, p.ID, model.FieldChat, msg); err != nil {
				t.Fatalf("AppendToList failed: %v", err)
			}
		}

		if err := s.RemoveFromList(ctx, p.ID, model.FieldChat, "m2"); err != nil {
			t.Fatalf("RemoveFromList failed: %v", err)
		}
		if err := s.RemoveFromList(ctx, p.ID, model.FieldChat, "absent"); err != nil {
			t.Fatalf("RemoveFromList of absent id failed: %v", err)
		}

		got, err := s.Get(ctx, p.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if len(got.Chat) != 2 || got.Chat[0].ID != "m1" || got.Chat[1].ID != "m3" {
			t.Fatalf("Chat = %+v, want [m1 m3]", got.Chat)
		}

		if err := s.ClearList(ctx, p.ID, model.FieldChat); err != nil {
			t.Fatalf("ClearList failed: %v", err)
		}
		got, _ = s.Get(ctx, p.ID)
		if len(got.Chat) != 0 {
			t.Errorf("Chat len = %d after clear, want 0", len(got.Chat))
		}
	})

	t.Run("list ops on missing project", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		a := model.Annotation{ID: "a1", Text: "x"}
		if err := s.AppendToList(ctx, "nope", model.FieldAnnotations, a); !errors.Is(err, ErrNotFound) {
			t.Errorf("AppendToList error = %v, want ErrNotFound", err)
		}
		if err := s.ClearList(ctx, "nope", model.FieldChat); !errors.Is(err, ErrNotFound) {
			t.Errorf("ClearList error = %v, want ErrNotFound", err)
		}
		if err := s.RemoveFromList(ctx, "nope", model.FieldChat, "m1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("RemoveFromList error = %v, want ErrNotFound", err)
		}
	})

	t.Run("invalid field", func(t *testing.T) {
		s := newStore(t)
		p := mustCreate(t, s, "f")
		err := s.ClearList(context.Background(), p.ID, model.ListField("members"))
		if !errors.Is(err, ErrInvalidField) {
			t.Errorf("ClearList error = %v, want ErrInvalidField", err)
		}
	})

	t.Run("concurrent appends are not lost", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		p := mustCreate(t, s, "busy")

		const writers = 20
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				a := model.Annotation{ID: string(rune('a' + i)), Text: "note"}
				if err := s.AppendToList(ctx, p.ID, model.FieldAnnotations, a); err != nil {
					t.Errorf("AppendToList failed: %v", err)
				}
			}(i)
		}
		wg.Wait()

		got, err := s.Get(ctx, p.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if len(got.Annotations) != writers {
			t.Errorf("Annotations len = %d, want %d", len(got.Annotations), writers)
		}
	})

	t.Run("list filters and paginates", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for _, p := range []struct{ name, desc, status, user string }{
			{"Alpha Bracket", "steel part", "active", "u1"},
			{"beta gear", "BRACKET mount", "active", "u2"},
			{"gamma", "plastic", "archived", "u1"},
			{"delta", "", "active", "u1"},
		} {
			_, err := s.Create(ctx, &model.Project{Name: p.name, Description: p.desc, Status: p.status, UserID: p.user})
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
		}

		got, total, err := s.List(ctx, model.ListQuery{Search: "bracket", SortBy: "name"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if total != 2 || len(got) != 2 {
			t.Fatalf("search total = %d len = %d, want 2", total, len(got))
		}
		if got[0].Name != "Alpha Bracket" {
			t.Errorf("first = %q, want Alpha Bracket", got[0].Name)
		}

		got, total, err = s.List(ctx, model.ListQuery{Status: "active", UserID: "u1", SortBy: "name", SortDesc: true})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if total != 2 || got[0].Name != "delta" {
			t.Errorf("filtered = %d first %q, want 2 first delta", total, got[0].Name)
		}

		got, total, err = s.List(ctx, model.ListQuery{Page: 2, Limit: 3, SortBy: "name"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if total != 4 || len(got) != 1 {
			t.Errorf("page 2 total = %d len = %d, want 4 and 1", total, len(got))
		}
	})

	t.Run("delete returns the removed project", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		p := mustCreate(t, s, "gone")
		path := "model-x.stl"
		if _, err := s.Update(ctx, p.ID, model.ProjectPatch{ModelPath: &path}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		deleted, err := s.Delete(ctx, p.ID)
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if deleted.ModelPath == nil || *deleted.ModelPath != path {
			t.Errorf("ModelPath = %v, want %q", deleted.ModelPath, path)
		}
		if _, err := s.Get(ctx, p.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get after delete error = %v, want ErrNotFound", err)
		}
		if _, err := s.Delete(ctx, p.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("second Delete error = %v, want ErrNotFound", err)
		}
	})
}

func mustCreate(t *testing.T, s Store, name string) *model.Project {
	t.Helper()
	p, err := s.Create(context.Background(), &model.Project{Name: name})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return p
}
