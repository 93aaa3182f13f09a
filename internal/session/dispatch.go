package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/SurakshaKumari/gt-3D-backend/internal/metrics"
	"github.com/SurakshaKumari/gt-3D-backend/internal/reconcile"
	"github.com/SurakshaKumari/gt-3D-backend/internal/relay"
)

// handlerFunc handles one inbound event. It returns the project the event
// targeted, for error reporting, and any failure.
type handlerFunc func(ctx context.Context, c *conn, f relay.Frame) (string, error)

// dispatcher parses inbound frames and routes them by event name.
type dispatcher struct {
	handlers map[string]handlerFunc
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu            sync.RWMutex
	received      int64
	routed        int64
	parseErrors   int64
	unknownEvents int64
	failed        int64
}

func newDispatcher(logger *slog.Logger, m *metrics.Metrics) *dispatcher {
	return &dispatcher{
		handlers: make(map[string]handlerFunc),
		logger:   logger,
		metrics:  m,
	}
}

func (d *dispatcher) handle(event string, h handlerFunc) {
	d.handlers[event] = h
}

// route parses and routes a single frame. Failures are reported to the
// originating connection only.
func (d *dispatcher) route(ctx context.Context, c *conn, data []byte) {
	d.count(&d.received)

	var f relay.Frame
	if err := json.Unmarshal(data, &f); err != nil || f.Event == "" {
		d.count(&d.parseErrors)
		d.metrics.WSEvent("malformed")
		c.logger.Debug("malformed frame", "error", err)
		sendError(c, f.Event, "", &reconcile.ValidationError{Field: "frame", Reason: "is not a valid event envelope"}, f.Ref)
		return
	}

	h, ok := d.handlers[f.Event]
	if !ok {
		d.count(&d.unknownEvents)
		d.metrics.WSEvent("unknown")
		sendError(c, f.Event, "", &reconcile.ValidationError{Field: "event", Reason: "is not supported"}, f.Ref)
		return
	}

	d.metrics.WSEvent(f.Event)
	projectID, err := h(ctx, c, f)
	if err != nil {
		d.count(&d.failed)
		sendError(c, f.Event, projectID, err, f.Ref)
		return
	}
	d.count(&d.routed)
}

func (d *dispatcher) count(n *int64) {
	d.mu.Lock()
	*n++
	d.mu.Unlock()
}

func (d *dispatcher) stats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Stats{
		FramesReceived:  d.received,
		FramesRouted:    d.routed,
		ParseErrors:     d.parseErrors,
		UnknownEvents:   d.unknownEvents,
		MutationsFailed: d.failed,
	}
}

// decode unmarshals a payload, reporting malformed JSON as a validation
// failure.
func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return &reconcile.ValidationError{Field: "data", Reason: "is required"}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &reconcile.ValidationError{Field: "data", Reason: "is malformed"}
	}
	return nil
}

// decodeTarget accepts either a bare project ID string or an object with a
// projectId field (and optionally displayName).
func decodeTarget(data json.RawMessage) (joinPayload, error) {
	var p joinPayload
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &p.ProjectID); err != nil {
			return p, &reconcile.ValidationError{Field: "data", Reason: "is malformed"}
		}
	} else if err := decode(data, &p); err != nil {
		return p, err
	}
	if p.ProjectID == "" {
		return p, &reconcile.ValidationError{Field: "projectId", Reason: "is required"}
	}
	return p, nil
}

// sendError queues an error frame for c.
func sendError(c *conn, event, projectID string, err error, ref string) {
	frame, encErr := relay.Encode(EventError, ErrorPayload{
		Event:     event,
		ProjectID: projectID,
		Code:      reconcile.Code(err),
		Message:   err.Error(),
		Ref:       ref,
	}, ref)
	if encErr != nil {
		c.logger.Error("encode error frame", "error", encErr)
		return
	}
	c.Send(frame)
}

// sendEvent queues a reply frame for c.
func sendEvent(c *conn, event string, data any, ref string) error {
	frame, err := relay.Encode(event, data, ref)
	if err != nil {
		return err
	}
	c.Send(frame)
	return nil
}
