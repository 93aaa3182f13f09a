package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SurakshaKumari/gt-3D-backend/internal/reconcile"
)

func (h *Handler) getChat(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ok(w, nonNil(p.Chat))
}

func (h *Handler) postChat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Text == "" || req.UserID == "" {
		h.fail(w, r, badRequest("Text and userId are required"))
		return
	}

	res, err := h.reconciler.PostChat(r.Context(), id, reconcile.ChatInput{
		Text:       req.Text,
		AuthorID:   req.UserID,
		AuthorName: req.UserName,
	}, "")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.publish(r.Context(), id, res)
	ok(w, res.Data)
}

func (h *Handler) clearChat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := h.reconciler.ClearChat(r.Context(), id, "")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.publish(r.Context(), id, res)
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Chat cleared successfully"})
}

func (h *Handler) deleteChatMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := h.reconciler.DeleteChat(r.Context(), id, chi.URLParam(r, "messageId"), "")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.publish(r.Context(), id, res)
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Message deleted successfully"})
}
