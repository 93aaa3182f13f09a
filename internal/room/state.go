package room

import (
	"sort"
	"sync"
)

type member struct {
	p   Participant
	seq uint64
}

// registryState holds the thread-safe membership tables.
type registryState struct {
	mu sync.RWMutex

	// Members per project, keyed by participant ID.
	rooms map[string]map[string]member

	// Joined project IDs per participant, valued by join sequence.
	byParticipant map[string]map[string]uint64

	seq    uint64
	joins  uint64
	leaves uint64
}

func newState() *registryState {
	return &registryState{
		rooms:         make(map[string]map[string]member),
		byParticipant: make(map[string]map[string]uint64),
	}
}

// join adds p to projectID (write-locked).
func (s *registryState) join(projectID string, p Participant) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := p.ID()
	room, ok := s.rooms[projectID]
	if !ok {
		room = make(map[string]member)
		s.rooms[projectID] = room
	}
	if _, exists := room[id]; exists {
		return false
	}

	s.seq++
	room[id] = member{p: p, seq: s.seq}

	joined, ok := s.byParticipant[id]
	if !ok {
		joined = make(map[string]uint64)
		s.byParticipant[id] = joined
	}
	joined[projectID] = s.seq
	s.joins++
	return true
}

// leaveRoom removes one membership (write-locked).
func (s *registryState) leaveRoom(projectID, participantID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.leaveRoomLocked(projectID, participantID)
}

// leaveRoomLocked removes one membership (caller must hold write lock).
func (s *registryState) leaveRoomLocked(projectID, participantID string) bool {
	room, ok := s.rooms[projectID]
	if !ok {
		return false
	}
	if _, ok := room[participantID]; !ok {
		return false
	}

	delete(room, participantID)
	if len(room) == 0 {
		delete(s.rooms, projectID)
	}

	if joined, ok := s.byParticipant[participantID]; ok {
		delete(joined, projectID)
		if len(joined) == 0 {
			delete(s.byParticipant, participantID)
		}
	}
	s.leaves++
	return true
}

// leaveAll removes every membership of a participant (write-locked).
func (s *registryState) leaveAll(participantID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	left := sortedBySeq(s.byParticipant[participantID])
	for _, projectID := range left {
		s.leaveRoomLocked(projectID, participantID)
	}
	return left
}

// members returns a join-ordered copy of a room (read-locked).
func (s *registryState) members(projectID string, exclude []string) []Participant {
	s.mu.RLock()
	room := s.rooms[projectID]
	list := make([]member, 0, len(room))
	for id, m := range room {
		if excluded(id, exclude) {
			continue
		}
		list = append(list, m)
	}
	s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].seq < list[j].seq })

	result := make([]Participant, len(list))
	for i, m := range list {
		result[i] = m.p
	}
	return result
}

// roomsOf returns a participant's rooms in join order (read-locked).
func (s *registryState) roomsOf(participantID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedBySeq(s.byParticipant[participantID])
}

// stats returns counters (read-locked).
func (s *registryState) stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Rooms:        len(s.rooms),
		Participants: len(s.byParticipant),
		Joins:        s.joins,
		Leaves:       s.leaves,
	}
	for _, room := range s.rooms {
		st.Memberships += len(room)
	}
	return st
}

func sortedBySeq(joined map[string]uint64) []string {
	ids := make([]string, 0, len(joined))
	for id := range joined {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return joined[ids[i]] < joined[ids[j]] })
	return ids
}

func excluded(id string, exclude []string) bool {
	for _, e := range exclude {
		if e != "" && e == id {
			return true
		}
	}
	return false
}
