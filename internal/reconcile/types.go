package reconcile

import (
	"time"

	"github.com/SurakshaKumari/gt-3D-backend/internal/model"
)

// Kind identifies an inbound mutation.
type Kind string

const (
	KindTransformUpdate Kind = "transformUpdate"
	KindAnnotationAdd   Kind = "annotationAdd"
	KindChatPost        Kind = "chatPost"
	KindChatClear       Kind = "chatClear"
	KindChatDelete      Kind = "chatDelete"
)

// Outbound event names.
const (
	EventTransformUpdated = "transformUpdated"
	EventAnnotationAdded  = "annotationAdded"
	EventChatPosted       = "chatPosted"
	EventChatCleared      = "chatCleared"
	EventChatDeleted      = "chatDeleted"
)

// DefaultAuthorName is used for chat messages posted without a name.
const DefaultAuthorName = "Anonymous"

// Result is the broadcast instruction for a persisted mutation.
type Result struct {
	Event string // Outbound event name
	Data  any    // Canonical payload, as persisted

	// ExcludeOriginator is true when the originator already has the change
	// locally and must not receive its own echo.
	ExcludeOriginator bool
}

// Exclude returns the participant ID to leave out of fanout, or "".
func (r Result) Exclude(originatorID string) string {
	if r.ExcludeOriginator {
		return originatorID
	}
	return ""
}

// TransformInput is an inbound transform. Pointer fields distinguish a
// missing vector from a zero one.
type TransformInput struct {
	Position *model.Vec3         `json:"position"`
	Rotation *model.Vec3         `json:"rotation"`
	Scale    *model.Vec3         `json:"scale"`
	Mode     model.TransformMode `json:"mode"`
}

// AnnotationInput is an inbound annotation. ID and CreatedAt are assigned by
// the server when absent.
type AnnotationInput struct {
	ID         string      `json:"id"`
	Position   *model.Vec3 `json:"position"`
	Text       string      `json:"text"`
	AuthorID   string      `json:"authorId"`
	AuthorName string      `json:"authorName"`
	CreatedAt  *time.Time  `json:"createdAt"`
}

// ChatInput is an inbound chat message. Any client-sent ID or timestamp is
// ignored.
type ChatInput struct {
	Text       string `json:"text"`
	AuthorID   string `json:"authorId"`
	AuthorName string `json:"authorName"`
}

// ChatCleared is the payload of a chatCleared broadcast.
type ChatCleared struct {
	ProjectID string `json:"projectId"`
}

// ChatDeleted is the payload of a chatDeleted broadcast.
type ChatDeleted struct {
	ProjectID string `json:"projectId"`
	MessageID string `json:"messageId"`
}
