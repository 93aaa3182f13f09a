package api

import (
	"github.com/SurakshaKumari/gt-3D-backend/internal/model"
	"github.com/SurakshaKumari/gt-3D-backend/internal/reconcile"
)

// Response is the envelope of every REST response.
type Response struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Count      *int        `json:"count,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Pagination describes one page of a filtered listing.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ModelUploaded is returned by POST /{id}/model.
type ModelUploaded struct {
	ModelURL string `json:"modelUrl"`
	Filename string `json:"filename"`
}

// Health is returned by GET /healthz.
type Health struct {
	Status       string `json:"status"`
	Instance     string `json:"instance"`
	Rooms        int    `json:"rooms"`
	Memberships  int    `json:"memberships"`
	Participants int    `json:"participants"`
}

// sceneRequest is the body of PUT /{id}/scene.
type sceneRequest struct {
	ModelState  *model.TransformState `json:"modelState"`
	Annotations *[]model.Annotation   `json:"annotations"`
}

// annotationRequest is the body of POST /{id}/annotation. userId and
// userName are accepted as aliases for the author fields.
type annotationRequest struct {
	reconcile.AnnotationInput
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

func (a annotationRequest) input() reconcile.AnnotationInput {
	in := a.AnnotationInput
	if in.AuthorID == "" {
		in.AuthorID = a.UserID
	}
	if in.AuthorName == "" {
		in.AuthorName = a.UserName
	}
	return in
}

// chatRequest is the body of POST /{id}/chat.
type chatRequest struct {
	Text     string `json:"text"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}
