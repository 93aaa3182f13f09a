package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SurakshaKumari/gt-3D-backend/internal/bus"
	"github.com/SurakshaKumari/gt-3D-backend/internal/room"
)

type testParticipant struct {
	id     string
	name   string
	closed bool

	mu     sync.Mutex
	frames []Frame
}

func (p *testParticipant) ID() string          { return p.id }
func (p *testParticipant) DisplayName() string { return p.name }

func (p *testParticipant) Send(frame []byte) bool {
	if p.closed {
		return false
	}
	var f Frame
	if err := json.Unmarshal(frame, &f); err != nil {
		panic(err)
	}
	p.mu.Lock()
	p.frames = append(p.frames, f)
	p.mu.Unlock()
	return true
}

func (p *testParticipant) received() []Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Frame(nil), p.frames...)
}

func (p *testParticipant) events() []string {
	var out []string
	for _, f := range p.received() {
		out = append(out, f.Event)
	}
	return out
}

func join(r room.Registry, projectID string, ids ...string) []*testParticipant {
	out := make([]*testParticipant, len(ids))
	for i, id := range ids {
		p := &testParticipant{id: id, name: "name-" + id}
		r.Join(projectID, p)
		out[i] = p
	}
	return out
}

func TestEncode(t *testing.T) {
	frame, err := Encode("chatPosted", map[string]string{"id": "m1"}, "r1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"chatPosted","data":{"id":"m1"},"ref":"r1"}`, string(frame))

	_, err = Encode("bad", make(chan int), "")
	assert.Error(t, err)
}

func TestPublishExcludesOriginator(t *testing.T) {
	reg := room.NewRegistry(nil)
	f := NewFanout(reg, nil, "node-a", nil, nil)
	ps := join(reg, "p1", "a", "b", "c")

	n, err := f.Publish(context.Background(), "p1", "transformUpdated", map[string]int{"x": 1}, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Empty(t, ps[0].received())
	assert.Equal(t, []string{"transformUpdated"}, ps[1].events())
	assert.Equal(t, []string{"transformUpdated"}, ps[2].events())
}

func TestPublishNoExclusion(t *testing.T) {
	reg := room.NewRegistry(nil)
	f := NewFanout(reg, nil, "node-a", nil, nil)
	ps := join(reg, "p1", "a", "b")

	n, err := f.Publish(context.Background(), "p1", "chatPosted", nil, "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, ps[0].received(), 1)
}

func TestPublishRoomIsolation(t *testing.T) {
	reg := room.NewRegistry(nil)
	f := NewFanout(reg, nil, "node-a", nil, nil)
	p1 := join(reg, "p1", "a")
	p2 := join(reg, "p2", "b")

	_, err := f.Publish(context.Background(), "p1", "chatPosted", nil, "")
	require.NoError(t, err)

	assert.Len(t, p1[0].received(), 1)
	assert.Empty(t, p2[0].received())
}

func TestPublishSkipsClosedParticipants(t *testing.T) {
	reg := room.NewRegistry(nil)
	f := NewFanout(reg, nil, "node-a", nil, nil)
	ps := join(reg, "p1", "a", "b")
	ps[1].closed = true

	n, err := f.Publish(context.Background(), "p1", "chatPosted", nil, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestConcurrentPublishersSameOrderForAllMembers(t *testing.T) {
	reg := room.NewRegistry(nil)
	f := NewFanout(reg, nil, "node-a", nil, nil)
	ps := join(reg, "p1", "a", "b", "c")

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				_, _ = f.Publish(context.Background(), "p1", fmt.Sprintf("e-%d-%d", w, i), nil, "")
			}
		}(w)
	}
	wg.Wait()

	want := ps[0].events()
	require.Len(t, want, 100)
	assert.Equal(t, want, ps[1].events())
	assert.Equal(t, want, ps[2].events())
}

func TestBusBridgesInstances(t *testing.T) {
	shared := bus.NewLocal()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	regA, regB := room.NewRegistry(nil), room.NewRegistry(nil)
	fa := NewFanout(regA, shared, "node-a", nil, nil)
	fb := NewFanout(regB, shared, "node-b", nil, nil)
	go fa.Run(ctx)
	go fb.Run(ctx)
	require.Eventually(t, func() bool { return shared.Subscribers() == 2 }, time.Second, time.Millisecond)

	onA := join(regA, "p1", "a1", "a2")
	onB := join(regB, "p1", "b1")

	n, err := fa.Publish(ctx, "p1", "annotationAdded", map[string]string{"id": "n1"}, "a1")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "local delivery count")

	assert.Empty(t, onA[0].received(), "originator excluded")
	assert.Len(t, onA[1].received(), 1, "own bus echo must be dropped")
	require.Len(t, onB[0].received(), 1)
	assert.Equal(t, "annotationAdded", onB[0].received()[0].Event)
}

func TestRunWithoutBus(t *testing.T) {
	f := NewFanout(room.NewRegistry(nil), nil, "node-a", nil, nil)
	assert.NoError(t, f.Run(context.Background()))
}

func TestPresence(t *testing.T) {
	reg := room.NewRegistry(nil)
	f := NewFanout(reg, nil, "node-a", nil, nil)
	presence := NewPresence(f, nil)
	ps := join(reg, "p1", "a", "b")

	presence.AnnounceJoin(context.Background(), "p1", ps[1])
	assert.Equal(t, []string{EventPresenceJoined}, ps[0].events())
	assert.Empty(t, ps[1].received(), "joiner does not hear itself")

	var ev PresenceEvent
	require.NoError(t, json.Unmarshal(ps[0].received()[0].Data, &ev))
	assert.Equal(t, PresenceEvent{ProjectID: "p1", Participant: "b", DisplayName: "name-b"}, ev)

	reg.LeaveRoom("p1", ps[1])
	presence.AnnounceLeave(context.Background(), "p1", ps[1])
	assert.Equal(t, []string{EventPresenceJoined, EventPresenceLeft}, ps[0].events())
}
