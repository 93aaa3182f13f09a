package relay

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/SurakshaKumari/gt-3D-backend/internal/bus"
	"github.com/SurakshaKumari/gt-3D-backend/internal/metrics"
	"github.com/SurakshaKumari/gt-3D-backend/internal/room"
)

// roomLockStripes is the number of per-room enqueue locks. Rooms that hash
// to the same stripe share a lock, which only costs concurrency.
const roomLockStripes = 64

// Fanout delivers frames to room members, locally and across the bus.
type Fanout struct {
	registry   room.Registry
	bus        bus.Bus
	instanceID string
	logger     *slog.Logger
	metrics    *metrics.Metrics

	locks [roomLockStripes]sync.Mutex
}

// NewFanout creates a Fanout. b and m may be nil.
func NewFanout(registry room.Registry, b bus.Bus, instanceID string, logger *slog.Logger, m *metrics.Metrics) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}

	return &Fanout{
		registry:   registry,
		bus:        b,
		instanceID: instanceID,
		logger:     logger,
		metrics:    m,
	}
}

// Publish encodes event and delivers it to every member of projectID except
// exclude (a participant ID, or "" for none). It returns the number of local
// members that accepted the frame.
func (f *Fanout) Publish(ctx context.Context, projectID, event string, data any, exclude string) (int, error) {
	frame, err := Encode(event, data, "")
	if err != nil {
		return 0, err
	}
	return f.PublishFrame(ctx, projectID, frame, exclude), nil
}

// PublishFrame delivers an already encoded frame.
func (f *Fanout) PublishFrame(ctx context.Context, projectID string, frame []byte, exclude string) int {
	delivered := f.deliver(projectID, frame, exclude, "local")

	if f.bus != nil {
		err := f.bus.Publish(ctx, bus.Message{
			Origin:    f.instanceID,
			ProjectID: projectID,
			Exclude:   exclude,
			Frame:     frame,
		})
		if err != nil {
			f.metrics.BusError()
			if !errors.Is(err, bus.ErrClosed) {
				f.logger.Warn("bus publish failed",
					"project_id", projectID,
					"error", err,
				)
			}
		} else {
			f.metrics.BusFrame("out")
		}
	}

	return delivered
}

// Run forwards frames from other instances to local members until ctx is
// cancelled. It returns immediately when no bus is configured.
func (f *Fanout) Run(ctx context.Context) error {
	if f.bus == nil {
		return nil
	}
	return f.bus.Subscribe(ctx, f.handleRemote)
}

func (f *Fanout) handleRemote(msg bus.Message) {
	if msg.Origin == f.instanceID {
		return
	}
	f.metrics.BusFrame("in")
	f.deliver(msg.ProjectID, msg.Frame, msg.Exclude, "bus")
}

// deliver enqueues frame on every local member under the room's lock.
func (f *Fanout) deliver(projectID string, frame []byte, exclude, origin string) int {
	lock := f.roomLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	members := f.registry.Members(projectID, exclude)
	delivered, dropped := 0, 0
	for _, p := range members {
		if p.Send(frame) {
			delivered++
		} else {
			dropped++
		}
	}

	f.metrics.FanoutDelivered(origin, delivered)
	f.metrics.FanoutDropped(dropped)
	return delivered
}

func (f *Fanout) roomLock(projectID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(projectID))
	return &f.locks[h.Sum32()%roomLockStripes]
}
