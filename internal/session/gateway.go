package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/SurakshaKumari/gt-3D-backend/internal/metrics"
	"github.com/SurakshaKumari/gt-3D-backend/internal/reconcile"
	"github.com/SurakshaKumari/gt-3D-backend/internal/relay"
	"github.com/SurakshaKumari/gt-3D-backend/internal/room"
)

// Gateway accepts websocket connections and binds their events to the
// room registry, the reconciler and fanout.
type Gateway struct {
	cfg        Config
	logger     *slog.Logger
	metrics    *metrics.Metrics
	registry   room.Registry
	reconciler *reconcile.Reconciler
	fanout     *relay.Fanout
	presence   *relay.Presence
	upgrader   websocket.Upgrader
	dispatch   *dispatcher

	mu      sync.Mutex
	conns   map[string]*conn
	wg      sync.WaitGroup
	closing atomic.Bool
}

// NewGateway creates a Gateway. m may be nil.
func NewGateway(cfg Config, registry room.Registry, rec *reconcile.Reconciler, fanout *relay.Fanout, presence *relay.Presence, logger *slog.Logger, m *metrics.Metrics) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}

	g := &Gateway{
		cfg:        cfg,
		logger:     logger,
		metrics:    m,
		registry:   registry,
		reconciler: rec,
		fanout:     fanout,
		presence:   presence,
		dispatch:   newDispatcher(logger, m),
		conns:      make(map[string]*conn),
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     g.checkOrigin,
	}

	g.dispatch.handle(EventJoinRoom, g.handleJoin)
	g.dispatch.handle(EventLeaveRoom, g.handleLeave)
	g.dispatch.handle(EventTransformUpdate, g.handleTransform)
	g.dispatch.handle(EventAnnotationAdd, g.handleAnnotation)
	g.dispatch.handle(EventChatPost, g.handleChatPost)
	g.dispatch.handle(EventChatClear, g.handleChatClear)
	g.dispatch.handle(EventChatDelete, g.handleChatDelete)

	return g
}

func (g *Gateway) checkOrigin(r *http.Request) bool {
	if len(g.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range g.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// ServeHTTP upgrades the request and serves the connection until it closes.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if g.closing.Load() {
		http.Error(w, ErrShuttingDown.Error(), http.StatusServiceUnavailable)
		return
	}

	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := newConn(uuid.NewString(), ws, g.cfg, g.logger)
	if !g.track(c) {
		c.close(websocket.CloseGoingAway, ErrShuttingDown.Error())
		return
	}
	defer g.wg.Done()

	g.metrics.ConnectionOpened()
	c.logger.Debug("connection opened", "remote", r.RemoteAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go c.writeLoop()
	err = c.readLoop(func(data []byte) {
		g.dispatch.route(ctx, c, data)
	})
	g.disconnect(ctx, c, err)
}

func (g *Gateway) track(c *conn) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closing.Load() {
		return false
	}
	g.conns[c.id] = c
	g.wg.Add(1)
	return true
}

// disconnect releases every room c was in and tells each one. It runs once
// per connection, after the read loop has returned.
func (g *Gateway) disconnect(ctx context.Context, c *conn, cause error) {
	c.close(websocket.CloseNormalClosure, "")

	for _, projectID := range g.registry.Leave(c) {
		g.presence.AnnounceLeave(ctx, projectID, c)
	}
	g.updateRoomGauges()

	g.mu.Lock()
	delete(g.conns, c.id)
	g.mu.Unlock()

	g.metrics.ConnectionClosed()

	ob := c.outbox.Stats()
	attrs := []any{
		"duration", c.Age(),
		"frames_queued", ob.TotalQueued,
		"frames_sent", ob.TotalDrained,
		"outbox_capacity", ob.Capacity,
	}
	if cause != nil && !websocket.IsCloseError(cause, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !errors.Is(cause, websocket.ErrCloseSent) {
		attrs = append(attrs, "error", cause)
	}
	c.logger.Debug("connection closed", attrs...)
}

// Shutdown closes every connection and waits for their rooms to be
// released, or for ctx to expire.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	g.closing.Store(true)
	conns := make([]*conn, 0, len(g.conns))
	for _, c := range g.conns {
		conns = append(conns, c)
	}
	g.mu.Unlock()

	g.logger.Info("closing websocket connections", "count", len(conns))
	for _, c := range conns {
		c.close(websocket.CloseGoingAway, "server shutting down")
	}

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns runtime statistics.
func (g *Gateway) Stats() Stats {
	s := g.dispatch.stats()
	g.mu.Lock()
	defer g.mu.Unlock()

	s.Connections = len(g.conns)
	for _, c := range g.conns {
		ob := c.outbox.Stats()
		s.PendingFrames += ob.Pending
		s.OutboxResizes += ob.ResizeCount
		if age := c.Age(); age > s.OldestConnAge {
			s.OldestConnAge = age
		}
	}
	return s
}

func (g *Gateway) updateRoomGauges() {
	st := g.registry.Stats()
	g.metrics.SetRooms(st.Rooms, st.Memberships)
}

func (g *Gateway) handleJoin(ctx context.Context, c *conn, f relay.Frame) (string, error) {
	p, err := decodeTarget(f.Data)
	if err != nil {
		return p.ProjectID, err
	}
	c.setDisplayName(p.DisplayName)

	added := g.registry.Join(p.ProjectID, c)
	g.updateRoomGauges()

	members := g.registry.Members(p.ProjectID)
	reply := RoomJoined{
		ProjectID:    p.ProjectID,
		Participant:  c.id,
		Participants: make([]Member, 0, len(members)),
	}
	for _, m := range members {
		reply.Participants = append(reply.Participants, Member{
			Participant: m.ID(),
			DisplayName: m.DisplayName(),
		})
	}
	if err := sendEvent(c, EventRoomJoined, reply, f.Ref); err != nil {
		return p.ProjectID, err
	}

	if added {
		g.presence.AnnounceJoin(ctx, p.ProjectID, c)
		c.logger.Debug("joined room", "project_id", p.ProjectID)
	}
	return p.ProjectID, nil
}

func (g *Gateway) handleLeave(ctx context.Context, c *conn, f relay.Frame) (string, error) {
	p, err := decodeTarget(f.Data)
	if err != nil {
		return p.ProjectID, err
	}

	left := g.registry.LeaveRoom(p.ProjectID, c)
	g.updateRoomGauges()

	if err := sendEvent(c, EventRoomLeft, RoomLeft{ProjectID: p.ProjectID}, f.Ref); err != nil {
		return p.ProjectID, err
	}
	if left {
		g.presence.AnnounceLeave(ctx, p.ProjectID, c)
		c.logger.Debug("left room", "project_id", p.ProjectID)
	}
	return p.ProjectID, nil
}

func (g *Gateway) handleTransform(ctx context.Context, c *conn, f relay.Frame) (string, error) {
	var p transformPayload
	if err := decode(f.Data, &p); err != nil {
		return "", err
	}
	res, err := g.reconciler.TransformUpdate(ctx, p.ProjectID, p.TransformState, c.id)
	return p.ProjectID, g.publish(ctx, c, p.ProjectID, res, err)
}

func (g *Gateway) handleAnnotation(ctx context.Context, c *conn, f relay.Frame) (string, error) {
	var p annotationPayload
	if err := decode(f.Data, &p); err != nil {
		return "", err
	}
	res, err := g.reconciler.AddAnnotation(ctx, p.ProjectID, p.Annotation, c.id)
	return p.ProjectID, g.publish(ctx, c, p.ProjectID, res, err)
}

func (g *Gateway) handleChatPost(ctx context.Context, c *conn, f relay.Frame) (string, error) {
	var p chatPostPayload
	if err := decode(f.Data, &p); err != nil {
		return "", err
	}
	res, err := g.reconciler.PostChat(ctx, p.ProjectID, p.ChatInput, c.id)
	return p.ProjectID, g.publish(ctx, c, p.ProjectID, res, err)
}

func (g *Gateway) handleChatClear(ctx context.Context, c *conn, f relay.Frame) (string, error) {
	p, err := decodeTarget(f.Data)
	if err != nil {
		return p.ProjectID, err
	}
	res, err := g.reconciler.ClearChat(ctx, p.ProjectID, c.id)
	return p.ProjectID, g.publish(ctx, c, p.ProjectID, res, err)
}

func (g *Gateway) handleChatDelete(ctx context.Context, c *conn, f relay.Frame) (string, error) {
	var p chatDeletePayload
	if err := decode(f.Data, &p); err != nil {
		return "", err
	}
	res, err := g.reconciler.DeleteChat(ctx, p.ProjectID, p.MessageID, c.id)
	return p.ProjectID, g.publish(ctx, c, p.ProjectID, res, err)
}

// publish fans out a persisted mutation. Nothing is sent when err is set.
func (g *Gateway) publish(ctx context.Context, c *conn, projectID string, res reconcile.Result, err error) error {
	if err != nil {
		return err
	}
	if _, err := g.fanout.Publish(ctx, projectID, res.Event, res.Data, res.Exclude(c.id)); err != nil {
		c.logger.Error("publish failed", "project_id", projectID, "event", res.Event, "error", err)
		return err
	}
	return nil
}
