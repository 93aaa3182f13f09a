package api

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/SurakshaKumari/gt-3D-backend/internal/assets"
	"github.com/SurakshaKumari/gt-3D-backend/internal/model"
	"github.com/SurakshaKumari/gt-3D-backend/internal/reconcile"
)

// modelField is the multipart form field carrying the model file.
const modelField = "model"

// multipartMemory is held in memory before spilling the upload to disk.
const multipartMemory = 32 << 20

func (h *Handler) uploadModel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	if h.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes+multipartMemory)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, r, assets.ErrTooLarge)
			return
		}
		h.fail(w, r, badRequest("No file uploaded"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(modelField)
	if err != nil {
		h.fail(w, r, badRequest("No file uploaded"))
		return
	}
	defer file.Close()

	if !isSTL(header.Filename, header.Header.Get("Content-Type")) {
		h.fail(w, r, badRequest("Only STL files are allowed"))
		return
	}

	existing, err := h.store.Get(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	name := assets.ModelName(id, h.now())
	if err := h.assets.Put(ctx, name, file); err != nil {
		h.fail(w, r, err)
		return
	}

	if _, err := h.store.Update(ctx, id, model.ProjectPatch{ModelPath: &name}); err != nil {
		if delErr := h.assets.Delete(ctx, name); delErr != nil {
			h.logger.Warn("failed to remove orphaned model", "model", name, "error", delErr)
		}
		h.fail(w, r, err)
		return
	}

	if existing.ModelPath != nil && *existing.ModelPath != name {
		if err := h.assets.Delete(ctx, *existing.ModelPath); err != nil && !errors.Is(err, assets.ErrNotFound) {
			h.logger.Warn("failed to delete replaced model",
				"project_id", id,
				"model", *existing.ModelPath,
				"error", err,
			)
		}
	}

	h.logger.Info("model uploaded", "project_id", id, "model", name, "size", header.Size)
	ok(w, ModelUploaded{
		ModelURL: "/api/projects/" + id + "/model",
		Filename: name,
	})
}

func isSTL(filename, contentType string) bool {
	return contentType == "application/octet-stream" ||
		strings.EqualFold(path.Ext(filename), ".stl")
}

func (h *Handler) downloadModel(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if p.ModelPath == nil {
		h.fail(w, r, notFound("Model not found"))
		return
	}

	rc, err := h.assets.Open(r.Context(), *p.ModelPath)
	if err != nil {
		if errors.Is(err, assets.ErrNotFound) {
			err = notFound("Model file not found")
		}
		h.fail(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("model download interrupted", "model", *p.ModelPath, "error", err)
	}
}

func (h *Handler) addAnnotation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req annotationRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.reconciler.AddAnnotation(r.Context(), id, req.input(), "")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.publish(r.Context(), id, res)

	p, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ok(w, p)
}

func (h *Handler) replaceScene(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req sceneRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.ModelState != nil {
		state, err := reconcile.NormalizeTransform(*req.ModelState)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		req.ModelState = &state
	}

	patch := model.ProjectPatch{
		TransformState: req.ModelState,
		Annotations:    req.Annotations,
	}

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

	if req.ModelState != nil {
		h.publishTransform(r.Context(), p)
	}
	ok(w, p)
}
