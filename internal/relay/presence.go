package relay

import (
	"context"
	"log/slog"

	"github.com/SurakshaKumari/gt-3D-backend/internal/room"
)

// Presence event names.
const (
	EventPresenceJoined = "presenceJoined"
	EventPresenceLeft   = "presenceLeft"
)

// PresenceEvent is the payload of presence notices.
type PresenceEvent struct {
	ProjectID   string `json:"projectId"`
	Participant string `json:"participant"`
	DisplayName string `json:"displayName"`
}

// Presence announces joins and leaves to the other members of a room.
type Presence struct {
	fanout *Fanout
	logger *slog.Logger
}

// NewPresence creates a Presence notifier on top of f.
func NewPresence(f *Fanout, logger *slog.Logger) *Presence {
	if logger == nil {
		logger = slog.Default()
	}
	return &Presence{fanout: f, logger: logger}
}

// AnnounceJoin tells the other members of projectID that p joined.
func (n *Presence) AnnounceJoin(ctx context.Context, projectID string, p room.Participant) {
	n.announce(ctx, EventPresenceJoined, projectID, p)
}

// AnnounceLeave tells the remaining members of projectID that p left.
func (n *Presence) AnnounceLeave(ctx context.Context, projectID string, p room.Participant) {
	n.announce(ctx, EventPresenceLeft, projectID, p)
}

func (n *Presence) announce(ctx context.Context, event, projectID string, p room.Participant) {
	_, err := n.fanout.Publish(ctx, projectID, event, PresenceEvent{
		ProjectID:   projectID,
		Participant: p.ID(),
		DisplayName: p.DisplayName(),
	}, p.ID())
	if err != nil {
		n.logger.Warn("presence announce failed",
			"event", event,
			"project_id", projectID,
			"error", err,
		)
	}
}
