package room

// Participant is a connected client handle.
type Participant interface {
	// ID is a server-assigned identifier, unique per connection.
	ID() string

	// DisplayName is the last name the client announced.
	DisplayName() string

	// Send enqueues an encoded frame. It returns false if the participant
	// can no longer accept frames.
	Send(frame []byte) bool
}

// Registry maps project IDs to their connected participants.
type Registry interface {
	// Join adds p to the room for projectID, creating the room if needed.
	// Returns false if p was already a member.
	Join(projectID string, p Participant) bool

	// Leave removes p from every room and returns the project IDs it left,
	// in join order.
	Leave(p Participant) []string

	// LeaveRoom removes p from one room. Returns false if p was not a member.
	LeaveRoom(projectID string, p Participant) bool

	// Members returns a snapshot of the room in join order, omitting any
	// participant whose ID is in exclude.
	Members(projectID string, exclude ...string) []Participant

	// RoomsOf returns the project IDs p has joined, in join order.
	RoomsOf(participantID string) []string

	// Stats returns a point-in-time snapshot of registry counters.
	Stats() Stats
}

// Stats is a registry snapshot.
type Stats struct {
	Rooms        int    // Rooms with at least one member
	Memberships  int    // Sum of room sizes
	Participants int    // Distinct participants in any room
	Joins        uint64 // Successful joins since start
	Leaves       uint64 // Memberships removed since start
}
