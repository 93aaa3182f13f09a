package session

import (
	"errors"
	"time"

	"github.com/SurakshaKumari/gt-3D-backend/internal/reconcile"
)

// ErrShuttingDown is reported to clients connecting during shutdown.
var ErrShuttingDown = errors.New("gateway shutting down")

// Inbound event names.
const (
	EventJoinRoom        = "joinRoom"
	EventLeaveRoom       = "leaveRoom"
	EventTransformUpdate = string(reconcile.KindTransformUpdate)
	EventAnnotationAdd   = string(reconcile.KindAnnotationAdd)
	EventChatPost        = string(reconcile.KindChatPost)
	EventChatClear       = string(reconcile.KindChatClear)
	EventChatDelete      = string(reconcile.KindChatDelete)
)

// Outbound event names owned by the gateway.
const (
	EventRoomJoined = "roomJoined"
	EventRoomLeft   = "roomLeft"
	EventError      = "error"
)

// DefaultDisplayName is used until a client announces a name.
const DefaultDisplayName = "Anonymous"

// Config configures the Gateway.
type Config struct {
	PingInterval    time.Duration // How often the server pings
	PongTimeout     time.Duration // Read deadline, extended by every pong or frame
	WriteTimeout    time.Duration // Write deadline per frame
	OutboxSize      int           // Initial outbox capacity (grows as needed)
	WriteBatch      int           // Frames written per drain before checking for close; <= 0 means all
	MaxMessageBytes int64         // Inbound frame size limit
	AllowedOrigins  []string      // Empty = allow all
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PingInterval:    25 * time.Second,
		PongTimeout:     60 * time.Second,
		WriteTimeout:    10 * time.Second,
		OutboxSize:      256,
		WriteBatch:      64,
		MaxMessageBytes: 1 << 20,
	}
}

// Stats contains runtime statistics.
type Stats struct {
	Connections     int
	PendingFrames   int           // Frames queued across live connections
	OutboxResizes   int           // Outbox grow events across live connections
	OldestConnAge   time.Duration // Age of the longest-lived connection
	FramesReceived  int64
	FramesRouted    int64
	ParseErrors     int64
	UnknownEvents   int64
	MutationsFailed int64
}

// ErrorPayload is the data of an error frame, sent to the originator only.
type ErrorPayload struct {
	Event     string `json:"event"`
	ProjectID string `json:"projectId,omitempty"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Ref       string `json:"ref,omitempty"`
}

// Member describes one participant in a roomJoined reply.
type Member struct {
	Participant string `json:"participant"`
	DisplayName string `json:"displayName"`
}

// RoomJoined is the reply to a joinRoom, sent to the joiner only.
type RoomJoined struct {
	ProjectID    string   `json:"projectId"`
	Participant  string   `json:"participant"`
	Participants []Member `json:"participants"`
}

// RoomLeft is the reply to a leaveRoom, sent to the leaver only.
type RoomLeft struct {
	ProjectID string `json:"projectId"`
}

// Inbound payloads.
type (
	joinPayload struct {
		ProjectID   string `json:"projectId"`
		DisplayName string `json:"displayName"`
	}

	transformPayload struct {
		ProjectID      string                   `json:"projectId"`
		TransformState reconcile.TransformInput `json:"transformState"`
	}

	annotationPayload struct {
		ProjectID  string                    `json:"projectId"`
		Annotation reconcile.AnnotationInput `json:"annotation"`
	}

	chatPostPayload struct {
		ProjectID string `json:"projectId"`
		reconcile.ChatInput
	}

	chatDeletePayload struct {
		ProjectID string `json:"projectId"`
		MessageID string `json:"messageId"`
	}
)
