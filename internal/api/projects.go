package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/SurakshaKumari/gt-3D-backend/internal/model"
	"github.com/SurakshaKumari/gt-3D-backend/internal/reconcile"
)

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, total, err := h.store.List(r.Context(), model.ListQuery{})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Count: &total, Data: nonNil(projects)})
}

func (h *Handler) filterProjects(w http.ResponseWriter, r *http.Request) {
	q, err := ParseListQuery(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	projects, total, err := h.store.List(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    nonNil(projects),
		Pagination: &Pagination{
			Page:  q.Page,
			Limit: q.Limit,
			Total: total,
			Pages: PageCount(total, q.Limit),
		},
	})
}

func (h *Handler) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ok(w, p)
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	var p model.Project
	if err := decodeJSON(r, &p); err != nil {
		h.fail(w, r, err)
		return
	}
	if strings.TrimSpace(p.Name) == "" {
		h.fail(w, r, badRequest("name is required"))
		return
	}

	// Server-owned fields.
	p.ID = ""
	p.ModelPath = nil
	p.Chat = nil

	created, err := h.store.Create(r.Context(), &p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Success: true, Data: created})
}

func (h *Handler) updateProject(w http.ResponseWriter, r *http.Request) {
	var patch model.ProjectPatch
	if err := decodeJSON(r, &patch); err != nil {
		h.fail(w, r, err)
		return
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		h.fail(w, r, badRequest("name cannot be empty"))
		return
	}
	if patch.TransformState != nil {
		state, err := reconcile.NormalizeTransform(*patch.TransformState)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		patch.TransformState = &state
	}
	// Model files are only attached through the upload endpoint.
	patch.ModelPath = nil

	id := chi.URLParam(r, "id")
	var (
		p   *model.Project
		err error
	)
	if patch.Empty() {
		p, err = h.store.Get(r.Context(), id)
	} else {
		p, err = h.store.Update(r.Context(), id, patch)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if patch.TransformState != nil {
		h.publishTransform(r.Context(), p)
	}
	ok(w, p)
}

func (h *Handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.store.Delete(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if p.ModelPath != nil {
		if err := h.assets.Delete(r.Context(), *p.ModelPath); err != nil {
			h.logger.Warn("failed to delete model file",
				"project_id", id,
				"model", *p.ModelPath,
				"error", err,
			)
		}
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Project deleted successfully"})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
