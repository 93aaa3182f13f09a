package room

import (
	"log/slog"
)

// registryImpl implements the Registry interface.
type registryImpl struct {
	logger *slog.Logger
	state  *registryState
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &registryImpl{
		logger: logger,
		state:  newState(),
	}
}

// Join implements Registry.
func (r *registryImpl) Join(projectID string, p Participant) bool {
	added := r.state.join(projectID, p)
	if added {
		r.logger.Debug("participant joined room",
			"project_id", projectID,
			"participant", p.ID(),
		)
	}
	return added
}

// Leave implements Registry.
func (r *registryImpl) Leave(p Participant) []string {
	left := r.state.leaveAll(p.ID())
	if len(left) > 0 {
		r.logger.Debug("participant left all rooms",
			"participant", p.ID(),
			"rooms", len(left),
		)
	}
	return left
}

// LeaveRoom implements Registry.
func (r *registryImpl) LeaveRoom(projectID string, p Participant) bool {
	removed := r.state.leaveRoom(projectID, p.ID())
	if removed {
		r.logger.Debug("participant left room",
			"project_id", projectID,
			"participant", p.ID(),
		)
	}
	return removed
}

// Members implements Registry.
func (r *registryImpl) Members(projectID string, exclude ...string) []Participant {
	return r.state.members(projectID, exclude)
}

// RoomsOf implements Registry.
func (r *registryImpl) RoomsOf(participantID string) []string {
	return r.state.roomsOf(participantID)
}

// Stats implements Registry.
func (r *registryImpl) Stats() Stats {
	return r.state.stats()
}
